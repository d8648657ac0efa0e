package chord

import (
	"testing"

	"github.com/ludyw21/autokeys/keymap"
	"github.com/ludyw21/autokeys/model"
	"github.com/stretchr/testify/assert"
)

func pcs(vals ...int) map[int]bool {
	m := make(map[int]bool)
	for _, v := range vals {
		m[v] = true
	}
	return m
}

func TestDetectExactTriad(t *testing.T) {
	assert := assert.New(t)
	name, conf := Detect(pcs(0, 4, 7), Triad)
	assert.Equal("C", name)
	assert.InDelta(1.0, conf, 1e-9)
}

func TestDetectSeventhOnlyInTriad7(t *testing.T) {
	assert := assert.New(t)
	name, _ := Detect(pcs(7, 11, 2, 5), Triad)
	assert.Equal("G", name)

	name, conf := Detect(pcs(7, 11, 2, 5), Triad7)
	assert.Equal("G7", name)
	assert.InDelta(1.0, conf, 1e-9)
}

func TestDetectGreedyRefusesSingleOverlap(t *testing.T) {
	assert := assert.New(t)
	name, _ := Detect(pcs(0), Greedy)
	assert.Equal("", name)

	name, _ = Detect(pcs(0, 4), Greedy)
	assert.Equal("C", name)
}

func TestDetectNamesStayInVocabulary(t *testing.T) {
	assert := assert.New(t)
	known := map[string]bool{
		"": true, "C": true, "Dm": true, "Em": true,
		"F": true, "G": true, "Am": true, "G7": true,
	}
	for a := 0; a < 12; a++ {
		for b := 0; b < 12; b++ {
			for c := 0; c < 12; c++ {
				name, _ := Detect(pcs(a, b, c), Triad7)
				assert.True(known[name], "unexpected chord %q", name)
			}
		}
	}
}

func chordNote(start, end float64, pitch uint8) model.Note {
	return model.Note{Start: start, End: end, Pitch: pitch, Velocity: 80}
}

func TestSegmentsLabelAndMerge(t *testing.T) {
	assert := assert.New(t)
	// a held C triad restruck after one second stays one segment
	notes := []model.Note{
		chordNote(0, 1, 60), chordNote(0, 1, 64), chordNote(0, 1, 67),
		chordNote(1, 2, 60), chordNote(1, 2, 64), chordNote(1, 2, 67),
	}
	segs := Segments(notes, Triad, 0)

	assert.Len(segs, 1)
	assert.Equal("C", segs[0].Name)
	assert.InDelta(0.0, segs[0].Start, 1e-9)
	assert.InDelta(2.0, segs[0].End, 1e-9)
}

func TestSegmentsChordChange(t *testing.T) {
	assert := assert.New(t)
	notes := []model.Note{
		chordNote(0, 1, 60), chordNote(0, 1, 64), chordNote(0, 1, 67),
		chordNote(1, 2, 65), chordNote(1, 2, 69), chordNote(1, 2, 72),
	}
	segs := Segments(notes, Triad, 0)

	assert.Len(segs, 2)
	assert.Equal("C", segs[0].Name)
	assert.Equal("F", segs[1].Name)
	assert.InDelta(1.0, segs[0].End, 1e-9)
	assert.InDelta(1.0, segs[1].Start, 1e-9)
}

func TestSegmentsAbsorbShortIntoNextIdentical(t *testing.T) {
	assert := assert.New(t)
	notes := []model.Note{
		// short restrike of C right before a longer C
		chordNote(0, 0.05, 60), chordNote(0, 0.05, 64), chordNote(0, 0.05, 67),
		chordNote(0.05, 1, 60), chordNote(0.05, 1, 64), chordNote(0.05, 1, 67),
	}
	segs := Segments(notes, Triad, 0.12)

	assert.Len(segs, 1)
	assert.InDelta(0.0, segs[0].Start, 1e-9)
}

func TestEventsHoldMinimumSustain(t *testing.T) {
	assert := assert.New(t)
	segs := []model.ChordSegment{{Start: 0, End: 0.05, Name: "C", Confidence: 1}}
	events := Events(segs, keymap.Chords(), 0.12)

	assert.Len(events, 2)
	assert.Equal(model.Press, events[0].Action)
	assert.Equal("z", events[0].Key)
	assert.Equal(model.Release, events[1].Action)
	assert.InDelta(0.12, events[1].Time, 1e-9)
}

func TestReplaceMelodyDropsCoveredPairs(t *testing.T) {
	assert := assert.New(t)
	accomp := []model.KeyEvent{
		{Time: 0, Action: model.Press, Key: "z", Pitch: -1},
		{Time: 0, Action: model.Press, Key: "v", Pitch: -1},
		{Time: 2, Action: model.Release, Key: "z", Pitch: -1},
		{Time: 2, Action: model.Release, Key: "v", Pitch: -1},
	}
	melody := []model.KeyEvent{
		{Time: 0.5, Action: model.Press, Key: "q", Pitch: 60},
		{Time: 1.0, Action: model.Release, Key: "q", Pitch: 60},
		{Time: 3.0, Action: model.Press, Key: "w", Pitch: 62},
		{Time: 3.5, Action: model.Release, Key: "w", Pitch: 62},
	}

	out := ReplaceMelody(melody, accomp)

	assert.Len(out, 2)
	assert.Equal("w", out[0].Key)
	assert.Equal("w", out[1].Key)
}

func TestReplaceMelodyKeepsUnderSingleChord(t *testing.T) {
	assert := assert.New(t)
	accomp := []model.KeyEvent{
		{Time: 0, Action: model.Press, Key: "z", Pitch: -1},
		{Time: 2, Action: model.Release, Key: "z", Pitch: -1},
	}
	melody := []model.KeyEvent{
		{Time: 0.5, Action: model.Press, Key: "q", Pitch: 60},
		{Time: 1.0, Action: model.Release, Key: "q", Pitch: 60},
	}

	out := ReplaceMelody(melody, accomp)
	assert.Len(out, 2)
}
