package keymap

import (
	"fmt"
	"strconv"
)

// Strategy selects how MIDI pitches collapse onto the small key grid.
type Strategy uint8

const (
	// Region21Key folds pitches into three 7-degree white-key regions.
	Region21Key Strategy = iota
	// Linear15Key spreads a fixed pitch window over 15 slots.
	Linear15Key
)

func (s Strategy) String() string {
	switch s {
	case Region21Key:
		return "region21"
	case Linear15Key:
		return "linear15"
	}
	return "unknown"
}

// ParseStrategy resolves a strategy name from config or CLI flags.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "region21", "21key":
		return Region21Key, nil
	case "linear15", "15key":
		return Linear15Key, nil
	}
	return Region21Key, fmt.Errorf("unknown mapping strategy %q", name)
}

// Layout returns the default layout for the strategy.
func (s Strategy) Layout() Mapping {
	if s == Linear15Key {
		return Linear15()
	}
	return Default21()
}

var whitePcOrder = [7]int{0, 2, 4, 5, 7, 9, 11}

func keyId(region byte, degree int) string {
	return string(region) + strconv.Itoa(degree)
}

func linearId(idx int) string {
	return "K" + strconv.Itoa(idx+1)
}

func circularDistance(a, b int) int {
	d := (a - b) % 12
	if d < 0 {
		d += 12
	}
	if 12-d < d {
		return 12 - d
	}
	return d
}

// region21Slot computes the primary region and degree for a pitch.
func region21Slot(pitch uint8) (byte, int) {
	p := int(pitch)
	if p < 48 {
		p = 48
	}
	if p > 83 {
		p = 83
	}
	region := byte('H')
	if p < 60 {
		region = 'L'
	} else if p < 72 {
		region = 'M'
	}
	pc := p % 12
	best, bestDist := 0, 12
	for i, w := range whitePcOrder {
		if d := circularDistance(pc, w); d < bestDist {
			best, bestDist = i, d
		}
	}
	return region, best + 1
}

// linear15Slot computes the primary slot index for a pitch over the
// fixed window 55..83.
func linear15Slot(pitch uint8) int {
	p := int(pitch)
	if p < 55 {
		p = 55
	}
	if p > 83 {
		p = 83
	}
	pos := float64(p-55) / 28
	idx := int(pos*14 + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx > 14 {
		idx = 14
	}
	return idx
}

// KeyId returns the primary logical key id for a pitch, before any
// fallback against an incomplete mapping.
func (s Strategy) KeyId(pitch uint8) string {
	if s == Linear15Key {
		return linearId(linear15Slot(pitch))
	}
	region, degree := region21Slot(pitch)
	return keyId(region, degree)
}

// MapPitch maps a pitch to a physical key. With fallback enabled the
// result is total for any mapping that has at least one entry.
func (s Strategy) MapPitch(pitch uint8, m Mapping, fallback bool) (string, bool) {
	id := s.KeyId(pitch)
	if key, ok := m[id]; ok {
		return key, true
	}
	if !fallback {
		return "", false
	}
	if s == Linear15Key {
		return linearFallback(linear15Slot(pitch), m)
	}
	region, degree := region21Slot(pitch)
	return region21Fallback(region, degree, m)
}

func linearFallback(idx int, m Mapping) (string, bool) {
	for off := 1; off <= 3; off++ {
		for _, cand := range [2]int{idx + off, idx - off} {
			if cand < 0 || cand > 14 {
				continue
			}
			if key, ok := m[linearId(cand)]; ok {
				return key, true
			}
		}
	}
	return "", false
}

var regionSearchOrder = [3]byte{'M', 'L', 'H'}

func region21Fallback(region byte, degree int, m Mapping) (string, bool) {
	// nearby degrees in the same region first
	for off := 1; off <= 6; off++ {
		for _, d := range [2]int{degree + off, degree - off} {
			if d < 1 || d > 7 {
				continue
			}
			if key, ok := m[keyId(region, d)]; ok {
				return key, true
			}
		}
	}
	// neighboring regions, spreading out from the same degree
	for _, r := range regionSearchOrder {
		if r == region {
			continue
		}
		for off := 0; off <= 6; off++ {
			for _, d := range [2]int{degree + off, degree - off} {
				if d < 1 || d > 7 {
					continue
				}
				if key, ok := m[keyId(r, d)]; ok {
					return key, true
				}
			}
		}
	}
	// anything mapped at all
	for _, r := range regionSearchOrder {
		for d := 1; d <= 7; d++ {
			if key, ok := m[keyId(r, d)]; ok {
				return key, true
			}
		}
	}
	return "", false
}
