package melody

import (
	"math"
	"sort"

	"github.com/ludyw21/autokeys/model"
)

// beatFilter keeps notes whose inter-onset interval locks onto the
// dominant period. A first pass that thins the line too much is retried
// once with a looser tolerance.
func beatFilter(notes []model.Note, strength float64) []model.Note {
	if len(notes) < 4 {
		return notes
	}
	sorted := make([]model.Note, len(notes))
	copy(sorted, notes)
	model.SortNotes(sorted)

	period := dominantPeriod(sorted)
	if period <= 0 {
		return sorted
	}

	tol := 0.35 - 0.23*strength
	keep := keepOnBeat(sorted, period, tol)
	minKeep := len(sorted) / 4
	if minKeep < 8 {
		minKeep = 8
	}
	if len(keep) < minKeep {
		loosened := keepOnBeat(sorted, period, tol*1.5)
		if len(loosened) >= 8 {
			return loosened
		}
	}
	return keep
}

func keepOnBeat(sorted []model.Note, period, tol float64) []model.Note {
	keep := []model.Note{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		dt := sorted[i].Start - sorted[i-1].Start
		if math.Abs(dt-period) <= tol*period || dt < 1e-9 {
			keep = append(keep, sorted[i])
		}
	}
	return keep
}

// dominantPeriod finds the most common inter-onset interval at 20ms
// resolution.
func dominantPeriod(sorted []model.Note) float64 {
	hist := make(map[int]int)
	for i := 1; i < len(sorted); i++ {
		dt := sorted[i].Start - sorted[i-1].Start
		if dt <= 0 {
			continue
		}
		hist[int(math.Round(dt/0.02))]++
	}
	bestBin, bestCount := 0, 0
	for bin, count := range hist {
		if bin == 0 {
			continue
		}
		if count > bestCount || (count == bestCount && bin < bestBin) {
			bestBin, bestCount = bin, count
		}
	}
	return float64(bestBin) * 0.02
}

// repetitionFilter suppresses pitches that dominate the channel, which
// usually are ostinato accompaniment rather than melody. penalty scales
// how hard a pitch's share of the channel counts against it; 0 keeps
// everything.
func repetitionFilter(notes []model.Note, strength, penalty float64) []model.Note {
	if len(notes) == 0 || penalty <= 0 {
		return notes
	}
	freq := make(map[uint8]float64)
	for _, n := range notes {
		freq[n.Pitch]++
	}
	total := float64(len(notes))

	thr := 0.05 + 0.20*strength
	keep := keepUnrepeated(notes, freq, total, thr, penalty)
	const minKeep = 8
	if len(keep) < minKeep && len(notes) >= minKeep {
		keep = keepUnrepeated(notes, freq, total, thr*0.8, penalty)
		if len(keep) < minKeep {
			keep = notes[:minKeep]
		}
	}
	return keep
}

func keepUnrepeated(notes []model.Note, freq map[uint8]float64, total, thr, penalty float64) []model.Note {
	var keep []model.Note
	for _, n := range notes {
		if 1-penalty*freq[n.Pitch]/total > thr {
			keep = append(keep, n)
		}
	}
	return keep
}

// monophony reduces simultaneous notes to a single line, preferring
// the highest pitch in each onset cluster and fusing same-pitch
// repeats that nearly touch.
func monophony(notes []model.Note, window float64) []model.Note {
	if len(notes) == 0 {
		return nil
	}
	sorted := make([]model.Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].Pitch > sorted[j].Pitch
	})

	var line []model.Note
	i := 0
	for i < len(sorted) {
		j := i
		best := sorted[i]
		for j < len(sorted) && sorted[j].Start-sorted[i].Start <= window {
			if sorted[j].Pitch > best.Pitch {
				best = sorted[j]
			}
			j++
		}
		line = append(line, best)
		i = j
	}

	var out []model.Note
	for _, n := range line {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last.Pitch == n.Pitch && n.Start-last.End <= window {
				if n.End > last.End {
					last.End = n.End
				}
				continue
			}
		}
		out = append(out, n)
	}
	return out
}
