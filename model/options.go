package model

// Options controls the whole pipeline from preprocessing to playback.
// Zero value is not useful; start from DefaultOptions.
type Options struct {
	// Playback
	Tempo         float64 // playback rate multiplier, 1.0 = as written
	SendAheadMs   float64 // dispatch events this early
	SpinThreshold float64 // ms; below this the scheduler busy-waits

	// Retrigger / union
	AllowRetrigger    bool
	RetriggerMinGapMs float64
	EpsilonMs         float64
	TapGapMs          float64

	// Chord accompaniment
	EnableChordAccomp    bool
	ChordAccompMode      string // "triad", "triad7", "greedy"
	ChordMinSustainMs    float64
	ChordReplaceMelody   bool

	// Event conditioning
	EnableQuantize         bool
	QuantizeGridMs         float64
	EnableBlackTranspose   bool
	BlackTransposeStrategy string // "down", "nearest"
	EnableKeyFallback      bool
	ClusterMode            string // "original", "merge", "arpeggio"
	MinNoteDurationMs      float64
}

func DefaultOptions() Options {
	return Options{
		Tempo:                  1.0,
		SendAheadMs:            0,
		SpinThreshold:          1,
		AllowRetrigger:         false,
		RetriggerMinGapMs:      40,
		EpsilonMs:              6,
		TapGapMs:               0,
		EnableChordAccomp:      false,
		ChordAccompMode:        "triad",
		ChordMinSustainMs:      120,
		ChordReplaceMelody:     false,
		EnableQuantize:         false,
		QuantizeGridMs:         30,
		EnableBlackTranspose:   false,
		BlackTransposeStrategy: "down",
		EnableKeyFallback:      true,
		ClusterMode:            "original",
		MinNoteDurationMs:      0,
	}
}
