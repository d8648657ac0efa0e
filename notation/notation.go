// Package notation renders songs as human-readable key charts, the
// text people practice from when they play by hand.
package notation

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ludyw21/autokeys/keymap"
	"github.com/ludyw21/autokeys/model"
)

// One plain space per this much time between chart tokens.
const spacingUnit = 0.3

var chordOrder = []string{"C", "Dm", "Em", "F", "G", "Am", "G7"}

var blackPcs = map[int]bool{1: true, 3: true, 6: true, 8: true, 10: true}

type token struct {
	time  float64
	text  string
	chord int // index in chordOrder, -1 for notes
	pitch int
}

// Export renders note onsets (and chord segment starts, when given)
// as a spaced token chart on the default 21-key layout.
func Export(notes []model.Note, segments []model.ChordSegment) string {
	layout := keymap.Default21()
	chordLayout := keymap.Chords()

	var tokens []token
	for _, n := range notes {
		key, ok := keyForPitch(n.Pitch, layout)
		if !ok {
			continue
		}
		tokens = append(tokens, token{n.Start, key, -1, int(n.Pitch)})
	}
	for _, seg := range segments {
		key, ok := chordLayout[seg.Name]
		if !ok {
			continue
		}
		tokens = append(tokens, token{seg.Start, key, chordIndex(seg.Name), -1})
	}
	if len(tokens) == 0 {
		return ""
	}

	buckets := bucketize(tokens)

	var b strings.Builder
	var prev float64
	for i, bucket := range buckets {
		if i > 0 {
			gap := int(math.Round((bucket.time - prev) / spacingUnit))
			if gap < 1 {
				gap = 1
			}
			b.WriteString(strings.Repeat(" ", gap))
		}
		b.WriteString(bucket.text)
		prev = bucket.time
	}
	return b.String()
}

type bucket struct {
	time float64
	text string
}

func bucketize(tokens []token) []bucket {
	groups := make(map[int64][]token)
	var keys []int64
	for _, t := range tokens {
		k := int64(math.Round(t.time * 1e6))
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], t)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]bucket, 0, len(keys))
	for _, k := range keys {
		group := groups[k]
		// chords lead, then notes from low to high
		sort.SliceStable(group, func(i, j int) bool {
			gi, gj := group[i], group[j]
			if (gi.chord >= 0) != (gj.chord >= 0) {
				return gi.chord >= 0
			}
			if gi.chord >= 0 {
				return gi.chord < gj.chord
			}
			return gi.pitch < gj.pitch
		})
		var sb strings.Builder
		for _, t := range group {
			sb.WriteString(t.text)
		}
		text := sb.String()
		if len(group) > 1 {
			text = "[" + text + "]"
		}
		out = append(out, bucket{float64(k) / 1e6, text})
	}
	return out
}

func chordIndex(name string) int {
	for i, c := range chordOrder {
		if c == name {
			return i
		}
	}
	return len(chordOrder)
}

// keyForPitch resolves a pitch to a chart letter. Black keys probe the
// neighboring white keys upward first.
func keyForPitch(pitch uint8, layout keymap.Mapping) (string, bool) {
	p := int(pitch)
	if blackPcs[p%12] {
		for _, off := range [4]int{1, -1, 2, -2} {
			cand := p + off
			if cand >= 0 && cand <= 127 && !blackPcs[cand%12] {
				p = cand
				break
			}
		}
	}
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
	degree := 0
	for i, w := range [7]int{0, 2, 4, 5, 7, 9, 11} {
		if w == p%12 {
			degree = i + 1
			break
		}
	}
	if degree == 0 {
		return "", false
	}
	key, ok := layout[string(region)+strconv.Itoa(degree)]
	return key, ok
}
