package preprocess

import (
	"fmt"
	"math"
	"sort"

	"github.com/ludyw21/autokeys/model"
	"github.com/ludyw21/autokeys/util"
)

var blackPcs = map[int]bool{1: true, 3: true, 6: true, 8: true, 10: true}

func isWhite(pitch int) bool {
	return !blackPcs[((pitch%12)+12)%12]
}

// TransposeBlackKeys moves black-key pitches onto white keys so the
// narrow key grid loses less detail. Strategies: "down" steps downward
// to the next white key, "nearest" picks the closer one preferring the
// lower on ties.
func TransposeBlackKeys(notes []model.Note, strategy string) ([]model.Note, error) {
	if strategy != "down" && strategy != "nearest" {
		return nil, fmt.Errorf("unknown black transpose strategy %q", strategy)
	}
	out := make([]model.Note, len(notes))
	copy(out, notes)
	for i := range out {
		p := int(out[i].Pitch)
		if isWhite(p) {
			continue
		}
		if strategy == "down" {
			for p > 0 && !isWhite(p) {
				p--
			}
		} else {
			lower, upper := p, p
			for lower > 0 && !isWhite(lower) {
				lower--
			}
			for upper < 127 && !isWhite(upper) {
				upper++
			}
			if p-lower <= upper-p {
				p = lower
			} else {
				p = upper
			}
		}
		out[i].Pitch = uint8(p)
	}
	return out, nil
}

// Quantize snaps event times to a fixed grid.
func Quantize(events []model.KeyEvent, grid float64) []model.KeyEvent {
	if grid <= 0 {
		return events
	}
	out := make([]model.KeyEvent, len(events))
	copy(out, events)
	for i := range out {
		out[i].Time = math.Round(out[i].Time/grid) * grid
	}
	model.SortEvents(out)
	return out
}

type interval struct {
	start float64
	end   float64
	pitch int16
}

// UnionAndTap collapses overlapping holds of the same physical key into
// one union interval and, when retriggering is allowed, re-articulates
// swallowed onsets with a short release/press tap. Running it on its
// own output changes nothing.
func UnionAndTap(events []model.KeyEvent, opts model.Options) []model.KeyEvent {
	eps := opts.EpsilonMs / 1000
	tapGap := opts.TapGapMs / 1000
	retrigGap := opts.RetriggerMinGapMs / 1000

	byKey := make(map[string][]interval)
	open := make(map[string][]interval)
	for _, e := range events {
		if e.Action == model.Press {
			open[e.Key] = append(open[e.Key], interval{start: e.Time, pitch: e.Pitch})
			continue
		}
		pending := open[e.Key]
		if len(pending) == 0 {
			continue
		}
		iv := pending[0]
		open[e.Key] = pending[1:]
		iv.end = e.Time
		byKey[e.Key] = append(byKey[e.Key], iv)
	}
	// unterminated holds run to the end of the timeline
	maxT := model.MaxTime(events)
	for key, pending := range open {
		for _, iv := range pending {
			iv.end = maxT
			if iv.end < iv.start {
				iv.end = iv.start
			}
			byKey[key] = append(byKey[key], iv)
		}
	}
	keys := util.GetKeys(byKey)
	sort.Strings(keys)

	var out []model.KeyEvent
	for _, key := range keys {
		ivs := byKey[key]
		sort.Slice(ivs, func(i, j int) bool { return ivs[i].start < ivs[j].start })

		var unions []interval
		for _, iv := range ivs {
			if len(unions) > 0 && iv.start-unions[len(unions)-1].end <= eps {
				if iv.end > unions[len(unions)-1].end {
					unions[len(unions)-1].end = iv.end
				}
				continue
			}
			unions = append(unions, iv)
		}
		for _, u := range unions {
			out = append(out,
				model.KeyEvent{Time: u.start, Action: model.Press, Key: key, Pitch: u.pitch},
				model.KeyEvent{Time: u.end, Action: model.Release, Key: key, Pitch: u.pitch},
			)
		}

		if !opts.AllowRetrigger {
			continue
		}
		lastTap := math.Inf(-1)
		for _, iv := range ivs {
			u, ok := unionContaining(unions, iv.start, eps)
			if !ok || math.Abs(iv.start-u.start) <= eps {
				continue
			}
			if iv.start-lastTap < retrigGap {
				continue
			}
			if iv.start+tapGap > u.end-1e-6 {
				continue
			}
			out = append(out,
				model.KeyEvent{Time: iv.start, Action: model.Release, Key: key, Pitch: iv.pitch},
				model.KeyEvent{Time: iv.start + tapGap, Action: model.Press, Key: key, Pitch: iv.pitch},
			)
			lastTap = iv.start
		}
	}

	model.SortEvents(out)
	return Dedup(out)
}

func unionContaining(unions []interval, t, eps float64) (interval, bool) {
	for _, u := range unions {
		if t >= u.start-eps && t <= u.end+eps {
			return u, true
		}
	}
	return interval{}, false
}

// Dedup removes events identical in time (to the microsecond), key and
// action.
func Dedup(events []model.KeyEvent) []model.KeyEvent {
	type sig struct {
		bucket int64
		key    string
		action model.Action
	}
	seen := make(map[sig]bool, len(events))
	out := make([]model.KeyEvent, 0, len(events))
	for _, e := range events {
		s := sig{int64(math.Round(e.Time * 1e6)), e.Key, e.Action}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, e)
	}
	return out
}

const clusterWindow = 0.050

// NormalizeClusters reshapes bursts of presses that land within 50ms
// of each other. "merge" aligns them on the first onset, "arpeggio"
// spreads them evenly across the window, "original" leaves them alone.
func NormalizeClusters(events []model.KeyEvent, mode string) []model.KeyEvent {
	if mode == "" || mode == "original" {
		return events
	}
	out := make([]model.KeyEvent, len(events))
	copy(out, events)
	model.SortEvents(out)

	// pair each press with its release so a retimed onset drags its
	// release along and never crosses it
	releaseOf := make(map[int]int, len(out)/2)
	openByKey := make(map[string][]int)
	for i, e := range out {
		if e.Action == model.Press {
			openByKey[e.Key] = append(openByKey[e.Key], i)
			continue
		}
		pending := openByKey[e.Key]
		if len(pending) == 0 {
			continue
		}
		releaseOf[pending[0]] = i
		openByKey[e.Key] = pending[1:]
	}

	var cluster []int
	flush := func() {
		if len(cluster) < 2 {
			cluster = cluster[:0]
			return
		}
		base := out[cluster[0]].Time
		step := clusterWindow / float64(len(cluster))
		for i, idx := range cluster {
			t := base
			if mode != "merge" { // arpeggio
				t = base + float64(i)*step
			}
			delta := t - out[idx].Time
			out[idx].Time = t
			if ri, ok := releaseOf[idx]; ok {
				out[ri].Time += delta
			}
		}
		cluster = cluster[:0]
	}
	for i := range out {
		if out[i].Action != model.Press {
			continue
		}
		if len(cluster) > 0 && out[i].Time-out[cluster[0]].Time > clusterWindow {
			flush()
		}
		cluster = append(cluster, i)
	}
	flush()

	model.SortEvents(out)
	return out
}

// FilterShortNotes drops notes shorter than the threshold.
func FilterShortNotes(notes []model.Note, minDur float64) []model.Note {
	if minDur <= 0 {
		return notes
	}
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if n.Duration() >= minDur {
			out = append(out, n)
		}
	}
	return out
}

// WhiteKeyRate reports the fraction of notes already on white keys.
func WhiteKeyRate(notes []model.Note) float64 {
	if len(notes) == 0 {
		return 1
	}
	white := 0
	for _, n := range notes {
		if isWhite(int(n.Pitch)) {
			white++
		}
	}
	return float64(white) / float64(len(notes))
}

// BestTranspose searches shifts of up to six semitones either way for
// the one that puts the most notes on white keys. Ties prefer the
// smaller shift.
func BestTranspose(notes []model.Note) int {
	bestShift, bestRate := 0, WhiteKeyRate(notes)
	for abs := 1; abs <= 6; abs++ {
		for _, shift := range [2]int{-abs, abs} {
			white := 0
			for _, n := range notes {
				if isWhite(int(n.Pitch) + shift) {
					white++
				}
			}
			rate := float64(white) / float64(len(notes))
			if rate > bestRate {
				bestShift, bestRate = shift, rate
			}
		}
	}
	return bestShift
}

// Transpose shifts every pitch by the given number of semitones,
// clamping to the MIDI range.
func Transpose(notes []model.Note, semitones int) []model.Note {
	if semitones == 0 {
		return notes
	}
	out := make([]model.Note, len(notes))
	copy(out, notes)
	for i := range out {
		p := int(out[i].Pitch) + semitones
		if p < 0 {
			p = 0
		}
		if p > 127 {
			p = 127
		}
		out[i].Pitch = uint8(p)
	}
	return out
}
