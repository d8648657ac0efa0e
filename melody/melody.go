package melody

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/ludyw21/autokeys/model"
	"github.com/ludyw21/autokeys/util"
)

// Mode selects the melody filtering style.
type Mode uint8

const (
	// Hybrid runs the beat and repetition filters back to back.
	Hybrid Mode = iota
	// Entropy relies on channel scoring alone with a wide cluster window.
	Entropy
	// Beat keeps notes locking onto the dominant inter-onset period.
	Beat
	// Repetition suppresses heavily repeated pitches.
	Repetition
)

func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "hybrid":
		return Hybrid, nil
	case "entropy":
		return Entropy, nil
	case "beat":
		return Beat, nil
	case "repetition":
		return Repetition, nil
	}
	return Hybrid, fmt.Errorf("unknown melody mode %q", name)
}

// Config tunes melody extraction. Strength runs 0..1 and scales how
// aggressive the filters are.
type Config struct {
	Mode           Mode
	Strength       float64
	PreferChannel  int // -1 for automatic selection
	PreferPrograms []int
	NameKeywords   []string
	MinScore       float64
	EntropyWeight  float64
	DensityWeight  float64

	// RepetitionPenalty scales how strongly repeated pitches count
	// against a note in the repetition filter. 0 disables the filter.
	RepetitionPenalty float64
}

func DefaultConfig() Config {
	prefer := make([]int, 0, 24)
	for p := 40; p <= 47; p++ { // strings
		prefer = append(prefer, p)
	}
	for p := 73; p <= 88; p++ { // pipes, flutes, synth leads
		prefer = append(prefer, p)
	}
	return Config{
		Mode:              Hybrid,
		Strength:          0.5,
		PreferChannel:     -1,
		PreferPrograms:    prefer,
		NameKeywords:      defaultNameKeywords(),
		MinScore:          math.Inf(-1),
		EntropyWeight:     0.15,
		DensityWeight:     0.05,
		RepetitionPenalty: 1,
	}
}

func defaultNameKeywords() []string {
	return []string{
		"lead", "melody", "vocal", "violin", "flute", "sax", "oboe", "solo",
	}
}

// Extract picks the most melody-like channel and reduces it to a
// monophonic line. A best channel scoring below MinScore rejects the
// extraction outright; a filter chain that empties the line falls back
// to the most prominent notes of the whole file.
func Extract(notes []model.Note, cfg Config) []model.Note {
	if len(notes) == 0 {
		return nil
	}

	byChannel := make(map[uint8][]model.Note)
	for _, n := range notes {
		byChannel[n.Channel] = append(byChannel[n.Channel], n)
	}

	var chosen []model.Note
	if cfg.PreferChannel >= 0 {
		chosen = byChannel[uint8(cfg.PreferChannel)]
	}
	if len(chosen) == 0 {
		scores := channelScores(byChannel, notes, cfg)
		bestCh, bestScore := -1, math.Inf(-1)
		for ch, score := range scores {
			if score > bestScore || (score == bestScore && int(ch) < bestCh) {
				bestCh, bestScore = int(ch), score
			}
		}
		if bestCh < 0 || bestScore < cfg.MinScore {
			return nil // nothing melodic enough
		}
		chosen = byChannel[uint8(bestCh)]
	}

	s := util.Clamp(cfg.Strength, 0, 1)
	var out []model.Note
	switch cfg.Mode {
	case Entropy:
		out = monophony(chosen, 0.08+0.05*(1-s))
	case Beat:
		out = monophony(beatFilter(chosen, s), 0.06+0.04*(1-s))
	case Repetition:
		out = monophony(repetitionFilter(chosen, s, cfg.RepetitionPenalty), 0.06+0.04*(1-s))
	default:
		out = monophony(repetitionFilter(beatFilter(chosen, s), s, cfg.RepetitionPenalty), 0.06+0.04*(1-s))
	}

	if len(out) == 0 {
		out = prominentFallback(notes)
	}
	return out
}

func channelScores(byChannel map[uint8][]model.Note, all []model.Note, cfg Config) map[uint8]float64 {
	med := medianPitch(all)
	lo := math.Max(40, med-12)
	hi := math.Min(96, med+12)
	totalTime := model.MaxEnd(all)
	if totalTime <= 0 {
		totalTime = 1
	}

	preferProg := make(map[int]bool, len(cfg.PreferPrograms))
	for _, p := range cfg.PreferPrograms {
		preferProg[p] = true
	}

	scores := make(map[uint8]float64, len(byChannel))
	for ch, chNotes := range byChannel {
		if len(chNotes) == 0 {
			continue
		}
		inFocus := 0
		progBoost, nameBoost := 0.0, 0.0
		for _, n := range chNotes {
			p := float64(n.Pitch)
			if p >= lo && p <= hi {
				inFocus++
			}
		}
		if preferProg[int(chNotes[0].Program)] {
			progBoost = 1
		}
		lower := strings.ToLower(chNotes[0].InstrumentName)
		for _, kw := range cfg.NameKeywords {
			if strings.Contains(lower, kw) {
				nameBoost = 1
				break
			}
		}
		focus := float64(inFocus) / float64(len(chNotes))
		density := float64(len(chNotes)) / totalTime
		densityPenalty := cfg.DensityWeight * math.Abs(density-3.0)
		ent := rhythmEntropy(chNotes)
		scores[ch] = focus + progBoost + nameBoost - cfg.EntropyWeight*ent - densityPenalty
	}
	return scores
}

func medianPitch(notes []model.Note) float64 {
	if len(notes) == 0 {
		return 72
	}
	pitches := make([]float64, len(notes))
	for i, n := range notes {
		pitches[i] = float64(n.Pitch)
	}
	sort.Float64s(pitches)
	return stat.Quantile(0.5, stat.Empirical, pitches, nil)
}

// rhythmEntropy is the Shannon entropy of the inter-onset interval
// histogram at 50ms resolution. Erratic rhythms score high.
func rhythmEntropy(notes []model.Note) float64 {
	if len(notes) < 3 {
		return 0
	}
	starts := onsetsOf(notes)
	hist := make(map[int]float64)
	total := 0.0
	for i := 1; i < len(starts); i++ {
		bin := int(math.Round((starts[i] - starts[i-1]) / 0.05))
		hist[bin]++
		total++
	}
	if total == 0 {
		return 0
	}
	probs := make([]float64, 0, len(hist))
	for _, c := range hist {
		probs = append(probs, c/total)
	}
	return stat.Entropy(probs)
}

func onsetsOf(notes []model.Note) []float64 {
	starts := make([]float64, len(notes))
	for i, n := range notes {
		starts[i] = n.Start
	}
	sort.Float64s(starts)
	return starts
}

func prominentFallback(notes []model.Note) []model.Note {
	sorted := make([]model.Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Velocity != sorted[j].Velocity {
			return sorted[i].Velocity > sorted[j].Velocity
		}
		return sorted[i].Duration() > sorted[j].Duration()
	})
	n := len(sorted)
	if n > 16 {
		n = 16
	}
	return monophony(sorted[:n], 0.08)
}
