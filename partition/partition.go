package partition

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ludyw21/autokeys/model"
)

const drumChannel = 9

// Split assigns every note an instrument role and groups the result
// into sections. Loose mode widens the drum detection beyond channel
// 10 using names and percussive programs.
func Split(notes []model.Note, loose bool) []model.PartSection {
	if len(notes) == 0 {
		return []model.PartSection{{
			Name: "empty",
			Meta: map[string]string{"status": "invalid_input"},
		}}
	}

	buckets := map[string][]model.Note{}
	for _, n := range notes {
		role := classify(n, loose)
		if role == "" {
			continue
		}
		n.Role = role
		buckets[role] = append(buckets[role], n)
	}

	var sections []model.PartSection
	for _, role := range []string{model.RoleDrums, model.RoleBass, model.RoleGuitar, model.RoleKeys} {
		group := buckets[role]
		if len(group) == 0 && role != model.RoleDrums {
			continue
		}
		sections = append(sections, model.PartSection{
			Name:  role,
			Notes: group,
			Meta:  map[string]string{"status": "ok"},
		})
	}
	return sections
}

func classify(n model.Note, loose bool) string {
	if isDrum(n, loose) {
		return model.RoleDrums
	}
	name := strings.ToLower(n.InstrumentName)
	prog := int(n.Program)

	switch {
	case prog >= 32 && prog <= 39,
		strings.Contains(name, "bass"),
		prog < 0 && n.Pitch >= 28 && n.Pitch <= 60:
		return model.RoleBass
	case prog >= 24 && prog <= 31,
		strings.Contains(name, "guitar"),
		prog < 0 && n.Pitch >= 40 && n.Pitch <= 83:
		return model.RoleGuitar
	case prog >= 0 && prog <= 7,
		strings.Contains(name, "piano"),
		strings.Contains(name, "epiano"),
		strings.Contains(name, "keyboard"),
		strings.Contains(name, "keys"),
		n.Pitch >= 21 && n.Pitch <= 96:
		return model.RoleKeys
	}
	return ""
}

func isDrum(n model.Note, loose bool) bool {
	if n.Channel == drumChannel {
		return true
	}
	if !loose {
		return false
	}
	name := strings.ToLower(n.InstrumentName)
	if strings.Contains(name, "drum") || strings.Contains(name, "percussion") {
		return true
	}
	return n.Program >= 112 && n.Program <= 115
}

// ByChannel groups notes by (channel, program, name) for reporting.
func ByChannel(notes []model.Note) []model.PartSection {
	type groupKey struct {
		channel uint8
		program int16
		name    string
	}
	groups := map[groupKey][]model.Note{}
	var order []groupKey
	for _, n := range notes {
		k := groupKey{n.Channel, n.Program, n.InstrumentName}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], n)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].channel != order[j].channel {
			return order[i].channel < order[j].channel
		}
		return order[i].program < order[j].program
	})

	sections := make([]model.PartSection, 0, len(order))
	for _, k := range order {
		sections = append(sections, model.PartSection{
			Name:  fmt.Sprintf("ch%02d", k.channel),
			Notes: groups[k],
			Meta: map[string]string{
				"channel": fmt.Sprintf("%d", k.channel),
				"program": fmt.Sprintf("%d", k.program),
				"name":    k.name,
			},
		})
	}
	return sections
}
