package model

import "sort"

// Role tags assigned by the instrument partitioner.
const (
	RoleDrums  = "drums"
	RoleBass   = "bass"
	RoleGuitar = "guitar"
	RoleKeys   = "keys"
)

// Note is a fully resolved note with absolute times in seconds.
type Note struct {
	Start    float64
	End      float64
	Channel  uint8
	Pitch    uint8
	Velocity uint8

	// Program is the GM program active on the channel when the note
	// started, or -1 when no program change was seen.
	Program        int16
	InstrumentName string
	Role           string
}

func (n Note) Duration() float64 {
	return n.End - n.Start
}

// SortNotes orders notes by start time, then pitch for stability.
func SortNotes(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Start != notes[j].Start {
			return notes[i].Start < notes[j].Start
		}
		return notes[i].Pitch < notes[j].Pitch
	})
}

// MaxEnd returns the largest End among notes, or 0 for an empty slice.
func MaxEnd(notes []Note) float64 {
	var max float64
	for _, n := range notes {
		if n.End > max {
			max = n.End
		}
	}
	return max
}
