package chord

import (
	"fmt"
	"math"
	"sort"

	"github.com/ludyw21/autokeys/keymap"
	"github.com/ludyw21/autokeys/model"
)

// Mode controls which chords are candidates during detection.
type Mode uint8

const (
	// Triad detects only the six triads.
	Triad Mode = iota
	// Triad7 adds the dominant seventh.
	Triad7
	// Greedy is Triad7 but refuses weak matches.
	Greedy
)

func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "triad":
		return Triad, nil
	case "triad7":
		return Triad7, nil
	case "greedy":
		return Greedy, nil
	}
	return Triad, fmt.Errorf("unknown chord mode %q", name)
}

type pattern struct {
	name string
	pcs  []int
}

// Detection priority: the seventh wins ties against its triad subset.
var vocabulary = []pattern{
	{"G7", []int{7, 11, 2, 5}},
	{"C", []int{0, 4, 7}},
	{"Dm", []int{2, 5, 9}},
	{"Em", []int{4, 7, 11}},
	{"F", []int{5, 9, 0}},
	{"G", []int{7, 11, 2}},
	{"Am", []int{9, 0, 4}},
}

const (
	onsetDebounce = 0.030
	boundaryEps   = 1e-6
)

// Detect matches the active pitch-class set against the vocabulary.
// Returns ("", 0) when nothing matches well enough for the mode.
func Detect(active map[int]bool, mode Mode) (string, float64) {
	bestInter := 0
	var best pattern
	for _, p := range vocabulary {
		if mode == Triad && p.name == "G7" {
			continue
		}
		inter := 0
		for _, pc := range p.pcs {
			if active[pc] {
				inter++
			}
		}
		if inter > bestInter {
			bestInter = inter
			best = p
		}
	}
	minInter := 1
	if mode == Greedy {
		minInter = 2
	}
	if bestInter < minInter {
		return "", 0
	}
	conf := float64(bestInter)/float64(len(best.pcs)) + 0.1*float64(bestInter)
	if conf > 1 {
		conf = 1
	}
	return best.name, conf
}

type pcEvent struct {
	time  float64
	isOff bool
	pc    int
}

// Segments slices the timeline at debounced note onsets and labels
// each slice with the best chord for the pitch classes sounding at its
// start. Unlabeled slices are omitted.
func Segments(notes []model.Note, mode Mode, minSustain float64) []model.ChordSegment {
	if len(notes) == 0 {
		return nil
	}

	onsets := onsetTimes(notes)
	end := model.MaxEnd(notes)

	events := make([]pcEvent, 0, len(notes)*2)
	for _, n := range notes {
		pc := int(n.Pitch) % 12
		events = append(events, pcEvent{n.Start, false, pc})
		events = append(events, pcEvent{n.End, true, pc})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].time != events[j].time {
			return events[i].time < events[j].time
		}
		return events[i].isOff && !events[j].isOff
	})

	var segments []model.ChordSegment
	counts := make(map[int]int)
	evtIdx := 0
	for i, start := range onsets {
		for evtIdx < len(events) && events[evtIdx].time <= start+boundaryEps {
			e := events[evtIdx]
			if e.isOff {
				if counts[e.pc] > 0 {
					counts[e.pc]--
				}
			} else {
				counts[e.pc]++
			}
			evtIdx++
		}
		segEnd := end
		if i+1 < len(onsets) {
			segEnd = onsets[i+1]
		}
		if segEnd <= start {
			continue
		}
		active := make(map[int]bool)
		for pc, c := range counts {
			if c > 0 {
				active[pc] = true
			}
		}
		name, conf := Detect(active, mode)
		if name == "" {
			continue
		}
		segments = append(segments, model.ChordSegment{
			Start:      start,
			End:        segEnd,
			Name:       name,
			Confidence: conf,
		})
	}

	segments = mergeAdjacent(segments)
	segments = absorbShort(segments, minSustain)
	return segments
}

func onsetTimes(notes []model.Note) []float64 {
	starts := make([]float64, 0, len(notes))
	for _, n := range notes {
		starts = append(starts, n.Start)
	}
	sort.Float64s(starts)
	var onsets []float64
	for _, s := range starts {
		if len(onsets) == 0 || s-onsets[len(onsets)-1] >= onsetDebounce {
			onsets = append(onsets, s)
		}
	}
	return onsets
}

func mergeAdjacent(segments []model.ChordSegment) []model.ChordSegment {
	var out []model.ChordSegment
	for _, seg := range segments {
		if len(out) > 0 {
			cur := &out[len(out)-1]
			if cur.Name == seg.Name && math.Abs(seg.Start-cur.End) < boundaryEps {
				cur.End = seg.End
				if seg.Confidence > cur.Confidence {
					cur.Confidence = seg.Confidence
				}
				continue
			}
		}
		out = append(out, seg)
	}
	return out
}

// absorbShort folds segments shorter than minSustain into an identical
// following segment so accompaniment keys are not hammered.
func absorbShort(segments []model.ChordSegment, minSustain float64) []model.ChordSegment {
	if minSustain <= 0 {
		return segments
	}
	var out []model.ChordSegment
	for i := 0; i < len(segments); i++ {
		seg := segments[i]
		if seg.End-seg.Start < minSustain && i+1 < len(segments) &&
			segments[i+1].Name == seg.Name {
			segments[i+1].Start = seg.Start
			if seg.Confidence > segments[i+1].Confidence {
				segments[i+1].Confidence = seg.Confidence
			}
			continue
		}
		out = append(out, seg)
	}
	return out
}

// Events turns chord segments into press/release pairs on the chord
// layout. Every press is held at least minSustain.
func Events(segments []model.ChordSegment, layout keymap.Mapping, minSustain float64) []model.KeyEvent {
	var events []model.KeyEvent
	for _, seg := range segments {
		key, ok := layout[seg.Name]
		if !ok {
			continue
		}
		release := seg.End
		if min := seg.Start + minSustain; release < min {
			release = min
		}
		events = append(events,
			model.KeyEvent{Time: seg.Start, Action: model.Press, Key: key, Pitch: -1},
			model.KeyEvent{Time: release, Action: model.Release, Key: key, Pitch: -1},
		)
	}
	model.SortEvents(events)
	return events
}

type span struct {
	start float64
	end   float64
}

// ReplaceMelody drops melody press/release pairs that begin while two
// or more accompaniment keys are sounding, letting the chords carry
// those passages alone.
func ReplaceMelody(melody, accomp []model.KeyEvent) []model.KeyEvent {
	spans := accompSpans(accomp)
	if len(spans) == 0 {
		return melody
	}

	drop := make([]bool, len(melody))
	openIdx := make(map[string][]int)
	for i, e := range melody {
		if e.Action == model.Press {
			openIdx[e.Key] = append(openIdx[e.Key], i)
			if activeChordKeys(spans, e.Time) >= 2 {
				drop[i] = true
			}
			continue
		}
		stack := openIdx[e.Key]
		if len(stack) == 0 {
			continue
		}
		pressIdx := stack[0]
		openIdx[e.Key] = stack[1:]
		drop[i] = drop[pressIdx]
	}

	out := make([]model.KeyEvent, 0, len(melody))
	for i, e := range melody {
		if !drop[i] {
			out = append(out, e)
		}
	}
	return out
}

func accompSpans(accomp []model.KeyEvent) map[string][]span {
	spans := make(map[string][]span)
	open := make(map[string][]float64)
	for _, e := range accomp {
		if e.Action == model.Press {
			open[e.Key] = append(open[e.Key], e.Time)
			continue
		}
		starts := open[e.Key]
		if len(starts) == 0 {
			continue
		}
		spans[e.Key] = append(spans[e.Key], span{starts[0], e.Time})
		open[e.Key] = starts[1:]
	}
	return spans
}

func activeChordKeys(spans map[string][]span, t float64) int {
	n := 0
	for _, list := range spans {
		for _, s := range list {
			if t >= s.start-boundaryEps && t < s.end-boundaryEps {
				n++
				break
			}
		}
	}
	return n
}
