package preprocess

import (
	"testing"

	"github.com/ludyw21/autokeys/model"
	"github.com/stretchr/testify/assert"
)

func TestTransposeBlackKeysDown(t *testing.T) {
	assert := assert.New(t)
	notes := []model.Note{
		{Pitch: 61}, // C#
		{Pitch: 63}, // D#
		{Pitch: 66}, // F#
		{Pitch: 60}, // already white
	}
	out, err := TransposeBlackKeys(notes, "down")
	assert.NoError(err)
	assert.Equal(uint8(60), out[0].Pitch)
	assert.Equal(uint8(62), out[1].Pitch)
	assert.Equal(uint8(65), out[2].Pitch)
	assert.Equal(uint8(60), out[3].Pitch)
}

func TestTransposeBlackKeysNearestPrefersLower(t *testing.T) {
	assert := assert.New(t)
	notes := []model.Note{{Pitch: 61}, {Pitch: 70}}
	out, err := TransposeBlackKeys(notes, "nearest")
	assert.NoError(err)
	// C# is equidistant from C and D, lower wins
	assert.Equal(uint8(60), out[0].Pitch)
	// A# is equidistant from A and B, lower wins
	assert.Equal(uint8(69), out[1].Pitch)
}

func TestTransposeBlackKeysRejectsUnknownStrategy(t *testing.T) {
	_, err := TransposeBlackKeys(nil, "sideways")
	assert.Error(t, err)
}

func TestQuantizeSnapsAndKeepsReleaseFirst(t *testing.T) {
	assert := assert.New(t)
	events := []model.KeyEvent{
		{Time: 0.017, Action: model.Press, Key: "a"},
		{Time: 0.016, Action: model.Release, Key: "b"},
	}
	out := Quantize(events, 0.030)

	assert.Len(out, 2)
	// both snap to 0.030 and the release sorts first
	assert.Equal(model.Release, out[0].Action)
	assert.InDelta(0.030, out[0].Time, 1e-9)
	assert.Equal(model.Press, out[1].Action)
	assert.InDelta(0.030, out[1].Time, 1e-9)
}

func overlapEvents() []model.KeyEvent {
	return []model.KeyEvent{
		{Time: 0.0, Action: model.Press, Key: "a", Pitch: 60},
		{Time: 0.3, Action: model.Press, Key: "a", Pitch: 60},
		{Time: 0.5, Action: model.Release, Key: "a", Pitch: 60},
		{Time: 0.8, Action: model.Release, Key: "a", Pitch: 60},
	}
}

func TestUnionAndTapMergesOverlapAndTaps(t *testing.T) {
	assert := assert.New(t)
	opts := model.DefaultOptions()
	opts.AllowRetrigger = true

	out := UnionAndTap(overlapEvents(), opts)

	assert.Len(out, 4)
	assert.Equal(model.Press, out[0].Action)
	assert.InDelta(0.0, out[0].Time, 1e-9)
	// the swallowed onset re-articulates as release+press at 0.3
	assert.Equal(model.Release, out[1].Action)
	assert.InDelta(0.3, out[1].Time, 1e-9)
	assert.Equal(model.Press, out[2].Action)
	assert.InDelta(0.3, out[2].Time, 1e-9)
	assert.Equal(model.Release, out[3].Action)
	assert.InDelta(0.8, out[3].Time, 1e-9)
}

func TestUnionAndTapWithoutRetrigger(t *testing.T) {
	assert := assert.New(t)
	out := UnionAndTap(overlapEvents(), model.DefaultOptions())

	assert.Len(out, 2)
	assert.InDelta(0.0, out[0].Time, 1e-9)
	assert.InDelta(0.8, out[1].Time, 1e-9)
}

func TestUnionAndTapIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	opts := model.DefaultOptions()
	opts.AllowRetrigger = true

	once := UnionAndTap(overlapEvents(), opts)
	twice := UnionAndTap(once, opts)

	assert.Equal(once, twice)
}

func TestUnionAndTapHonorsRetriggerMinGap(t *testing.T) {
	assert := assert.New(t)
	opts := model.DefaultOptions()
	opts.AllowRetrigger = true

	events := []model.KeyEvent{
		{Time: 0.00, Action: model.Press, Key: "a"},
		{Time: 0.01, Action: model.Press, Key: "a"},
		{Time: 0.02, Action: model.Press, Key: "a"},
		{Time: 0.50, Action: model.Release, Key: "a"},
		{Time: 0.60, Action: model.Release, Key: "a"},
		{Time: 0.70, Action: model.Release, Key: "a"},
	}
	out := UnionAndTap(events, opts)

	// onsets at 0.01 and 0.02 are within the 40ms minimum gap of each
	// other, only the first generates a tap
	taps := 0
	for _, e := range out {
		if e.Action == model.Release && e.Time > 0 && e.Time < 0.5 {
			taps++
		}
	}
	assert.Equal(1, taps)
}

func TestDedupDropsIdenticalEvents(t *testing.T) {
	assert := assert.New(t)
	events := []model.KeyEvent{
		{Time: 1.0, Action: model.Press, Key: "a"},
		{Time: 1.0, Action: model.Press, Key: "a"},
		{Time: 1.0, Action: model.Press, Key: "b"},
	}
	assert.Len(Dedup(events), 2)
}

func TestNormalizeClustersMerge(t *testing.T) {
	assert := assert.New(t)
	events := []model.KeyEvent{
		{Time: 0.00, Action: model.Press, Key: "a"},
		{Time: 0.02, Action: model.Press, Key: "b"},
		{Time: 0.04, Action: model.Press, Key: "c"},
		{Time: 0.50, Action: model.Release, Key: "a"},
	}
	out := NormalizeClusters(events, "merge")

	for _, e := range out {
		if e.Action == model.Press {
			assert.InDelta(0.0, e.Time, 1e-9)
		}
	}
}

func TestNormalizeClustersArpeggioKeepsPairsOrdered(t *testing.T) {
	assert := assert.New(t)
	// b is released before its arpeggio slot; the release must move
	// with the press instead of ending up behind it
	events := []model.KeyEvent{
		{Time: 0.000, Action: model.Press, Key: "a"},
		{Time: 0.010, Action: model.Press, Key: "b"},
		{Time: 0.015, Action: model.Release, Key: "b"},
		{Time: 0.300, Action: model.Release, Key: "a"},
	}
	out := NormalizeClusters(events, "arpeggio")

	press := make(map[string]float64)
	for _, e := range out {
		if e.Action == model.Press {
			press[e.Key] = e.Time
			continue
		}
		assert.GreaterOrEqual(e.Time, press[e.Key])
	}
	assert.InDelta(0.025, press["b"], 1e-9)
}

func TestFilterShortNotes(t *testing.T) {
	assert := assert.New(t)
	notes := []model.Note{
		{Start: 0, End: 0.01},
		{Start: 0, End: 0.5},
	}
	out := FilterShortNotes(notes, 0.05)
	assert.Len(out, 1)
	assert.InDelta(0.5, out[0].End, 1e-9)
}

func TestBestTransposeFavorsWhiteKeys(t *testing.T) {
	assert := assert.New(t)
	// an all-black cluster shifts one semitone down to all white
	notes := []model.Note{{Pitch: 61}, {Pitch: 63}, {Pitch: 66}}
	shift := BestTranspose(notes)
	out := Transpose(notes, shift)
	assert.InDelta(1.0, WhiteKeyRate(out), 1e-9)
}
