package partition

import (
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/ludyw21/autokeys/keymap"
	"github.com/ludyw21/autokeys/midi"
	"github.com/ludyw21/autokeys/model"
)

// Hit is one drum strike resolved to a named kit piece.
type Hit struct {
	Start    float64
	End      float64
	Drum     string
	Velocity uint8
}

// Hits left open get this duration; drum strikes are percussive.
const hitCloseAfter = 0.12

var gmPercussion = map[uint8]string{
	35: model.DrumKick, 36: model.DrumKick,
	38: model.DrumSnare, 40: model.DrumSnare,
	42: model.DrumHihatClose, 44: model.DrumHihatClose,
	46: model.DrumHihatOpen,
	41: model.DrumFloorTom, 43: model.DrumFloorTom,
	45: model.DrumTom2, 47: model.DrumTom2,
	48: model.DrumTom1, 50: model.DrumTom1,
	49: model.DrumCrashHigh, 57: model.DrumCrashHigh,
	51: model.DrumRide, 53: model.DrumRide, 59: model.DrumRide,
	52: model.DrumCrashMid, 55: model.DrumCrashMid,
}

// DrumId names the kit piece for a GM percussion pitch. Pitches
// outside the GM map fall back by register.
func DrumId(pitch uint8) string {
	if id, ok := gmPercussion[pitch]; ok {
		return id
	}
	switch {
	case pitch <= 37:
		return model.DrumKick
	case pitch <= 41:
		return model.DrumSnare
	case pitch <= 46:
		return model.DrumHihatClose
	case pitch <= 50:
		return model.DrumTom1
	default:
		return model.DrumCrashMid
	}
}

// ParseDrums extracts drum hits from an SMF, accepting channel 10 and,
// for percussion-only files, anything in the GM percussion range.
func ParseDrums(s *smf.SMF) []Hit {
	notes := midi.ExtractNotes(s)
	var hits []Hit
	for _, n := range notes {
		if n.Channel != drumChannel && (n.Pitch < 35 || n.Pitch > 81) {
			continue
		}
		end := n.End
		if max := n.Start + hitCloseAfter; end > max {
			end = max
		}
		hits = append(hits, Hit{
			Start:    n.Start,
			End:      end,
			Drum:     DrumId(n.Pitch),
			Velocity: n.Velocity,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Start < hits[j].Start })
	return hits
}

// HitEvents turns drum hits into key events on the drums layout.
func HitEvents(hits []Hit, layout keymap.Mapping) []model.KeyEvent {
	var events []model.KeyEvent
	for _, h := range hits {
		key, ok := layout[h.Drum]
		if !ok {
			continue
		}
		events = append(events,
			model.KeyEvent{Time: h.Start, Action: model.Press, Key: key, Pitch: -1},
			model.KeyEvent{Time: h.End, Action: model.Release, Key: key, Pitch: -1},
		)
	}
	model.SortEvents(events)
	return events
}
