package melody

import (
	"math"
	"testing"

	"github.com/ludyw21/autokeys/model"
	"github.com/stretchr/testify/assert"
)

func mkNote(ch uint8, pitch uint8, start, dur float64) model.Note {
	return model.Note{
		Start: start, End: start + dur,
		Channel: ch, Pitch: pitch, Velocity: 80, Program: -1,
	}
}

// leadAndBass builds a lead line on channel 0 around the global median
// and a busy low bass on channel 1.
func leadAndBass() []model.Note {
	var notes []model.Note
	leadPitches := []uint8{72, 74, 76, 77, 76, 74, 72, 74, 76, 77, 79, 77}
	for i, p := range leadPitches {
		notes = append(notes, mkNote(0, p, float64(i)*0.5, 0.4))
	}
	for i := 0; i < 48; i++ {
		notes = append(notes, mkNote(1, 36, float64(i)*0.125, 0.1))
	}
	return notes
}

func TestExtractPicksLeadChannel(t *testing.T) {
	assert := assert.New(t)
	out := Extract(leadAndBass(), DefaultConfig())

	assert.NotEmpty(out)
	for _, n := range out {
		assert.Equal(uint8(0), n.Channel)
	}
}

func TestExtractPreferChannelOverride(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.PreferChannel = 1

	out := Extract(leadAndBass(), cfg)

	assert.NotEmpty(out)
	for _, n := range out {
		assert.Equal(uint8(1), n.Channel)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	assert.Empty(t, Extract(nil, DefaultConfig()))
}

func TestExtractResultIsMonophonic(t *testing.T) {
	assert := assert.New(t)
	out := Extract(leadAndBass(), DefaultConfig())
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(out[i].Start, out[i-1].Start)
	}
}

func TestMonophonyPrefersHighestPitch(t *testing.T) {
	assert := assert.New(t)
	notes := []model.Note{
		mkNote(0, 60, 0, 0.5),
		mkNote(0, 72, 0.01, 0.5),
		mkNote(0, 64, 0.02, 0.5),
		mkNote(0, 65, 1.0, 0.5),
	}
	out := monophony(notes, 0.06)

	assert.Len(out, 2)
	assert.Equal(uint8(72), out[0].Pitch)
	assert.Equal(uint8(65), out[1].Pitch)
}

func TestMonophonyFusesRepeats(t *testing.T) {
	assert := assert.New(t)
	notes := []model.Note{
		mkNote(0, 60, 0.0, 0.1),
		mkNote(0, 60, 0.12, 0.1),
	}
	out := monophony(notes, 0.06)

	assert.Len(out, 1)
	assert.InDelta(0.22, out[0].End, 1e-9)
}

func TestBeatFilterKeepsRegularPulse(t *testing.T) {
	assert := assert.New(t)
	var notes []model.Note
	for i := 0; i < 16; i++ {
		notes = append(notes, mkNote(0, 72, float64(i)*0.25, 0.2))
	}
	// one badly off-grid note
	notes = append(notes, mkNote(0, 72, 3.87, 0.05))

	out := beatFilter(notes, 0.8)
	assert.Len(out, 16)
}

func TestRepetitionFilterDropsOstinato(t *testing.T) {
	assert := assert.New(t)
	var notes []model.Note
	for i := 0; i < 40; i++ {
		notes = append(notes, mkNote(0, 48, float64(i)*0.25, 0.2))
	}
	varied := []uint8{60, 62, 64, 65, 67, 69, 71, 72, 74, 76}
	for i, p := range varied {
		notes = append(notes, mkNote(0, p, float64(i)*1.0, 0.5))
	}

	out := repetitionFilter(notes, 0.8, 1)
	for _, n := range out {
		assert.NotEqual(uint8(48), n.Pitch)
	}
	assert.Len(out, len(varied))

	// zero penalty disables the filter
	assert.Len(repetitionFilter(notes, 0.8, 0), len(notes))
}

func TestExtractMinScoreRejectsEntirely(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.MinScore = math.Inf(1)

	assert.Empty(Extract(leadAndBass(), cfg))
}

func TestExtractNameKeywordBoost(t *testing.T) {
	assert := assert.New(t)
	notes := leadAndBass()
	for i := range notes {
		if notes[i].Channel == 1 {
			notes[i].InstrumentName = "Tuba Solo"
		}
	}
	cfg := DefaultConfig()
	cfg.NameKeywords = []string{"tuba"}

	out := Extract(notes, cfg)
	assert.NotEmpty(out)
	for _, n := range out {
		assert.Equal(uint8(1), n.Channel)
	}
}

func TestDominantPeriod(t *testing.T) {
	assert := assert.New(t)
	var notes []model.Note
	for i := 0; i < 10; i++ {
		notes = append(notes, mkNote(0, 60, float64(i)*0.5, 0.4))
	}
	model.SortNotes(notes)
	assert.InDelta(0.5, dominantPeriod(notes), 1e-9)
}
