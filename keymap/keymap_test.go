package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegion21PrimarySlots(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("M1", Region21Key.KeyId(60))
	assert.Equal("H1", Region21Key.KeyId(72))
	assert.Equal("L1", Region21Key.KeyId(48))
	// below the window clamps into the low region
	assert.Equal("L1", Region21Key.KeyId(24))
	// above the window clamps to the top
	assert.Equal("H7", Region21Key.KeyId(120))
	// G4 lands on the fifth white degree
	assert.Equal("M5", Region21Key.KeyId(67))
}

func TestRegion21MapsToLayouts(t *testing.T) {
	assert := assert.New(t)
	key, ok := Region21Key.MapPitch(60, Default21(), false)
	assert.True(ok)
	assert.Equal("q", key)

	key, ok = Region21Key.MapPitch(60, Genshin21(), false)
	assert.True(ok)
	assert.Equal("a", key)
}

func TestLinear15PrimarySlots(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("K1", Linear15Key.KeyId(55))
	assert.Equal("K15", Linear15Key.KeyId(83))
	assert.Equal("K8", Linear15Key.KeyId(69))
	// out of window clamps
	assert.Equal("K1", Linear15Key.KeyId(21))
	assert.Equal("K15", Linear15Key.KeyId(100))
}

func TestMapPitchFallbackFillsHoles(t *testing.T) {
	assert := assert.New(t)
	m := Default21()
	delete(m, "M1")

	// C#4 resolves to M1; the hole must fall back to a neighbor
	key, ok := Region21Key.MapPitch(61, m, true)
	assert.True(ok)
	assert.NotEmpty(key)

	_, ok = Region21Key.MapPitch(61, m, false)
	assert.False(ok)
}

func TestMapPitchWithFallbackIsTotal(t *testing.T) {
	assert := assert.New(t)
	for _, s := range []Strategy{Region21Key, Linear15Key} {
		m := s.Layout()
		for pitch := 0; pitch < 128; pitch++ {
			_, ok := s.MapPitch(uint8(pitch), m, true)
			assert.True(ok, "strategy %v pitch %v", s, pitch)
		}
	}
}

func TestMapPitchFallbackCrossesRegions(t *testing.T) {
	assert := assert.New(t)
	// only one key mapped anywhere: fallback still finds it
	m := Mapping{"H4": "x"}
	key, ok := Region21Key.MapPitch(50, m, true)
	assert.True(ok)
	assert.Equal("x", key)
}

func TestParseStrategy(t *testing.T) {
	assert := assert.New(t)
	s, err := ParseStrategy("region21")
	assert.NoError(err)
	assert.Equal(Region21Key, s)

	s, err = ParseStrategy("linear15")
	assert.NoError(err)
	assert.Equal(Linear15Key, s)

	_, err = ParseStrategy("bogus")
	assert.Error(err)
}

func TestLayoutsAreComplete(t *testing.T) {
	assert := assert.New(t)
	assert.Len(Default21(), 21)
	assert.Len(Genshin21(), 21)
	assert.Len(Linear15(), 15)
	assert.Len(Drums(), 10)
	assert.Len(Chords(), 7)
}
