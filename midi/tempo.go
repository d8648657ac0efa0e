package midi

import (
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

const defaultUsPerBeat = 500000

// TempoChange records a set_tempo event with its precomputed absolute
// position in seconds.
type TempoChange struct {
	Tick       int64
	UsPerBeat  float64
	CumSeconds float64
}

// TempoMap converts absolute ticks to seconds. For metric division it
// walks the accumulated tempo changes; for SMPTE division the file has
// a fixed seconds-per-tick and tempo events are ignored.
type TempoMap struct {
	changes      []TempoChange
	ticksPerBeat float64
	secsPerTick  float64 // nonzero only for SMPTE division
}

// NewTempoMap scans all tracks for set_tempo events and builds the
// cumulative table. The map always starts at tick 0 with 500000 us per
// beat (120 BPM) per the SMF default.
func NewTempoMap(s *smf.SMF) *TempoMap {
	tm := &TempoMap{
		changes: []TempoChange{{Tick: 0, UsPerBeat: defaultUsPerBeat}},
	}

	switch div := s.TimeFormat.(type) {
	case smf.MetricTicks:
		tm.ticksPerBeat = float64(div)
	case smf.TimeCode:
		fps := float64(div.FramesPerSecond)
		tpf := float64(div.SubFrames)
		if fps == 0 {
			fps = 30
		}
		if tpf == 0 {
			tpf = 80
		}
		tm.secsPerTick = 1 / (fps * tpf)
		return tm
	default:
		tm.ticksPerBeat = 480
	}

	type rawTempo struct {
		tick int64
		us   float64
	}
	var raws []rawTempo
	for _, track := range s.Tracks {
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			var bpm float64
			if event.Message.GetMetaTempo(&bpm) && bpm > 0 {
				raws = append(raws, rawTempo{absTicks, 60e6 / bpm})
			}
		}
	}
	sort.SliceStable(raws, func(i, j int) bool { return raws[i].tick < raws[j].tick })

	for _, r := range raws {
		last := &tm.changes[len(tm.changes)-1]
		if r.tick == last.Tick {
			last.UsPerBeat = r.us
			continue
		}
		if r.us == last.UsPerBeat {
			continue
		}
		cum := last.CumSeconds +
			float64(r.tick-last.Tick)*(last.UsPerBeat/1e6)/tm.ticksPerBeat
		tm.changes = append(tm.changes, TempoChange{r.tick, r.us, cum})
	}
	return tm
}

// TickToSeconds converts an absolute tick to absolute seconds.
func (tm *TempoMap) TickToSeconds(tick int64) float64 {
	if tm.secsPerTick > 0 {
		return float64(tick) * tm.secsPerTick
	}
	// find the last change at or before tick
	idx := sort.Search(len(tm.changes), func(i int) bool {
		return tm.changes[i].Tick > tick
	}) - 1
	if idx < 0 {
		idx = 0
	}
	c := tm.changes[idx]
	return c.CumSeconds + float64(tick-c.Tick)*(c.UsPerBeat/1e6)/tm.ticksPerBeat
}

// Changes returns the tempo table, always at least one entry.
func (tm *TempoMap) Changes() []TempoChange {
	return tm.changes
}
