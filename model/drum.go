package model

// Drum identifiers shared by the drum parser and the drums layout.
const (
	DrumKick       = "KICK"
	DrumSnare      = "SNARE"
	DrumHihatClose = "HIHAT_CLOSE"
	DrumHihatOpen  = "HIHAT_OPEN"
	DrumTom1       = "TOM1"
	DrumTom2       = "TOM2"
	DrumFloorTom   = "FLOOR_TOM"
	DrumCrashHigh  = "CRASH_HIGH"
	DrumCrashMid   = "CRASH_MID"
	DrumRide       = "RIDE"
)
