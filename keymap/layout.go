package keymap

import "github.com/ludyw21/autokeys/model"

// Mapping relates logical key ids (L1..H7, K1..K15, drum ids, chord
// names) to physical keyboard keys.
type Mapping = map[string]string

// Default21 is the stock three-region layout: low row asdfghj, mid row
// qwertyu, high row 1234567.
func Default21() Mapping {
	return buildRegions("asdfghj", "qwertyu", "1234567")
}

// Genshin21 shifts every region down one keyboard row.
func Genshin21() Mapping {
	return buildRegions("zxcvbnm", "asdfghj", "qwertyu")
}

func buildRegions(low, mid, high string) Mapping {
	m := make(Mapping, 21)
	for i := 0; i < 7; i++ {
		m[keyId('L', i+1)] = string(low[i])
		m[keyId('M', i+1)] = string(mid[i])
		m[keyId('H', i+1)] = string(high[i])
	}
	return m
}

// Linear15 lays K1..K15 across three rows of five.
func Linear15() Mapping {
	keys := "qwertasdfgzxcvb"
	m := make(Mapping, 15)
	for i, r := range keys {
		m[linearId(i)] = string(r)
	}
	return m
}

// Bass uses the same physical layout as Default21.
func Bass() Mapping {
	return Default21()
}

// Guitar uses the same physical layout as Default21.
func Guitar() Mapping {
	return Default21()
}

// Drums maps drum ids to the default drum-kit keys.
func Drums() Mapping {
	return Mapping{
		model.DrumHihatClose: "1",
		model.DrumHihatOpen:  "q",
		model.DrumCrashHigh:  "2",
		model.DrumRide:       "5",
		model.DrumCrashMid:   "t",
		model.DrumTom1:       "3",
		model.DrumTom2:       "4",
		model.DrumFloorTom:   "r",
		model.DrumSnare:      "w",
		model.DrumKick:       "e",
	}
}

// Chords maps the accompaniment vocabulary to its dedicated keys.
func Chords() Mapping {
	return Mapping{
		"C":  "z",
		"Dm": "x",
		"Em": "c",
		"F":  "v",
		"G":  "b",
		"Am": "n",
		"G7": "m",
	}
}

// ByName resolves a layout name from config or CLI flags.
func ByName(name string) (Mapping, bool) {
	switch name {
	case "", "default", "default21":
		return Default21(), true
	case "genshin", "genshin21":
		return Genshin21(), true
	case "linear15":
		return Linear15(), true
	case "bass":
		return Bass(), true
	case "guitar":
		return Guitar(), true
	case "drums":
		return Drums(), true
	default:
		return nil, false
	}
}
