package model

// ChordSegment is a span of time labeled with a chord from the fixed
// accompaniment vocabulary.
type ChordSegment struct {
	Start      float64
	End        float64
	Name       string
	Confidence float64
}
