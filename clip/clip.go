// Package clip cuts excerpts out of MIDI files, handy for practicing
// one section of a song.
package clip

import (
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Create copies the note events between fromTick and toTick (0 means
// to the end) into a new file. Non-note events keep their relative
// order but collapse to the clip start so tempo and program state
// survive.
func Create(mf *smf.SMF, fromTick, toTick uint64) *smf.SMF {
	var res smf.SMF
	res.TimeFormat = mf.TimeFormat

	for _, track := range mf.Tracks {
		var newTrack smf.Track
		var absTicks uint64
		var lastKept uint64
		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			switch {
			case evt.Message.Is(midi.NoteOnMsg), evt.Message.Is(midi.NoteOffMsg):
				if absTicks < fromTick || (toTick > 0 && absTicks > toTick) {
					continue
				}
				kept := evt
				kept.Delta = uint32(absTicks - fromTick - lastKept)
				newTrack = append(newTrack, kept)
				lastKept = absTicks - fromTick
			case evt.Message.Is(smf.MetaEndOfTrackMsg):
				// Close rewrites it below
			default:
				kept := evt
				if kept.Delta > 1 {
					kept.Delta = 1
				}
				newTrack = append(newTrack, kept)
			}
		}
		newTrack.Close(0)
		res.Tracks = append(res.Tracks, newTrack)
	}
	return &res
}
