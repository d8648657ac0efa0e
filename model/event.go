package model

import "sort"

// Action distinguishes key presses from releases.
type Action uint8

const (
	Release Action = iota
	Press
)

func (a Action) String() string {
	if a == Press {
		return "press"
	}
	return "release"
}

// KeyEvent is one timed physical key action. Pitch carries the source
// note for diagnostics and is -1 for synthetic events such as chord
// accompaniment.
type KeyEvent struct {
	Time   float64
	Action Action
	Key    string
	Pitch  int16
}

// SortEvents orders events by time with releases before presses on
// ties, so a release and re-press at the same instant never cancel.
func SortEvents(events []KeyEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Time != events[j].Time {
			return events[i].Time < events[j].Time
		}
		return events[i].Action < events[j].Action
	})
}

// MaxTime returns the largest event time, or 0 for an empty slice.
func MaxTime(events []KeyEvent) float64 {
	var max float64
	for _, e := range events {
		if e.Time > max {
			max = e.Time
		}
	}
	return max
}
