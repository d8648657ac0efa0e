package midi

import (
	"math"
	"sort"

	"github.com/ludyw21/autokeys/model"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Synthetic durations for notes that never receive a note-off.
const (
	danglingDefaultDur = 0.5
	danglingLowDur     = 0.8 // pitch < 60
	danglingHighDur    = 0.3 // pitch > 72
)

type noteEvent struct {
	tick      int64
	isNoteOff bool
	channel   uint8
	pitch     uint8
	velocity  uint8
	track     int
}

type programEvent struct {
	tick    int64
	channel uint8
	program uint8
}

// ExtractNotes turns an SMF into absolute-time notes. Overlapping
// identical pitches pair note-offs with the most recent open note-on.
// Notes left open at end of file get a synthetic duration.
func ExtractNotes(s *smf.SMF) []model.Note {
	tm := NewTempoMap(s)

	var noteEvents []noteEvent
	var programEvents []programEvent
	trackNames := make(map[int]string)

	for ti, track := range s.Tracks {
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			var channel, key, velocity, program uint8
			var text string
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				noteEvents = append(noteEvents, noteEvent{
					tick:      absTicks,
					isNoteOff: velocity == 0,
					channel:   channel,
					pitch:     key,
					velocity:  velocity,
					track:     ti,
				})
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				noteEvents = append(noteEvents, noteEvent{
					tick:      absTicks,
					isNoteOff: true,
					channel:   channel,
					pitch:     key,
					track:     ti,
				})
			case event.Message.GetProgramChange(&channel, &program):
				programEvents = append(programEvents, programEvent{absTicks, channel, program})
			case event.Message.GetMetaTrackName(&text):
				if trackNames[ti] == "" {
					trackNames[ti] = text
				}
			case event.Message.GetMetaInstrument(&text):
				if trackNames[ti] == "" {
					trackNames[ti] = text
				}
			}
		}
	}

	// note-offs before note-ons at the same tick so back-to-back
	// repeats pair with the right note-on
	sort.SliceStable(noteEvents, func(i, j int) bool {
		if noteEvents[i].tick != noteEvents[j].tick {
			return noteEvents[i].tick < noteEvents[j].tick
		}
		return noteEvents[i].isNoteOff && !noteEvents[j].isNoteOff
	})
	sort.SliceStable(programEvents, func(i, j int) bool {
		return programEvents[i].tick < programEvents[j].tick
	})

	type slot struct {
		channel uint8
		pitch   uint8
	}
	notes := make([]model.Note, 0, len(noteEvents)/2)
	open := make(map[slot][]int) // indexes into notes
	channelProgram := make(map[uint8]int16)
	progIdx := 0

	for _, evt := range noteEvents {
		for progIdx < len(programEvents) && programEvents[progIdx].tick <= evt.tick {
			pe := programEvents[progIdx]
			channelProgram[pe.channel] = int16(pe.program)
			progIdx++
		}
		k := slot{evt.channel, evt.pitch}
		if evt.isNoteOff {
			stack := open[k]
			if len(stack) == 0 {
				continue // stray note-off
			}
			idx := stack[len(stack)-1]
			open[k] = stack[:len(stack)-1]
			notes[idx].End = tm.TickToSeconds(evt.tick)
		} else {
			program, ok := channelProgram[evt.channel]
			if !ok {
				program = -1
			}
			n := model.Note{
				Start:          tm.TickToSeconds(evt.tick),
				End:            math.Inf(1),
				Channel:        evt.channel,
				Pitch:          evt.pitch,
				Velocity:       evt.velocity,
				Program:        program,
				InstrumentName: trackNames[evt.track],
			}
			notes = append(notes, n)
			open[k] = append(open[k], len(notes)-1)
		}
	}

	for i := range notes {
		if !math.IsInf(notes[i].End, 1) {
			continue
		}
		dur := danglingDefaultDur
		if notes[i].Pitch < 60 {
			dur = danglingLowDur
		} else if notes[i].Pitch > 72 {
			dur = danglingHighDur
		}
		notes[i].End = notes[i].Start + dur
	}

	model.SortNotes(notes)
	return notes
}

// RescaleTimeline stretches or compresses the note timeline to match a
// total duration reported by an independent source, for files whose
// tempo table is broken. Drift under 5% is left alone; a zero or
// negative reported duration is ignored.
func RescaleTimeline(notes []model.Note, reported float64) {
	myTotal := model.MaxEnd(notes)
	if myTotal <= 0 || reported <= 0 {
		return
	}
	ratio := reported / myTotal
	if math.Abs(1-ratio) < 0.05 {
		return
	}
	for i := range notes {
		notes[i].Start *= ratio
		notes[i].End *= ratio
	}
}
