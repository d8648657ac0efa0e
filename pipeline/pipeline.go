// Package pipeline assembles the full file-to-key-events chain:
// parse, extract, analyze, map, condition.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ludyw21/autokeys/chord"
	"github.com/ludyw21/autokeys/keymap"
	"github.com/ludyw21/autokeys/melody"
	"github.com/ludyw21/autokeys/midi"
	"github.com/ludyw21/autokeys/model"
	"github.com/ludyw21/autokeys/partition"
	"github.com/ludyw21/autokeys/preprocess"
)

// Request describes one build of playable events from a MIDI file.
type Request struct {
	Path     string
	Strategy keymap.Strategy
	Layout   keymap.Mapping

	// MelodyOnly reduces the song to its melody line first.
	MelodyOnly bool
	MelodyCfg  melody.Config

	// Role plays a single instrument part; "drums" switches to the
	// percussion parser and layout.
	Role string

	// AutoTranspose shifts the song to maximize white-key coverage
	// before mapping.
	AutoTranspose bool

	Opts model.Options
}

// NewRequest returns a Request with sane defaults for the given path.
func NewRequest(path string) Request {
	return Request{
		Path:      path,
		Strategy:  keymap.Region21Key,
		Layout:    keymap.Default21(),
		MelodyCfg: melody.DefaultConfig(),
		Opts:      model.DefaultOptions(),
	}
}

// Build runs the whole chain and returns scheduler-ready events.
func Build(req Request, log *zap.Logger) ([]model.KeyEvent, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s, err := midi.ReadFile(req.Path)
	if err != nil {
		return nil, err
	}

	if req.Role == model.RoleDrums {
		hits := partition.ParseDrums(s)
		log.Info("drum part parsed", zap.Int("hits", len(hits)))
		events := partition.HitEvents(hits, keymap.Drums())
		return condition(events, req.Opts)
	}

	notes := midi.ExtractNotes(s)
	log.Info("notes extracted", zap.Int("notes", len(notes)))
	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes in %s", req.Path)
	}

	notes = preprocess.FilterShortNotes(notes, req.Opts.MinNoteDurationMs/1000)

	if req.Role != "" {
		notes = roleNotes(notes, req.Role)
		if len(notes) == 0 {
			return nil, fmt.Errorf("no notes for part %q", req.Role)
		}
	}

	if req.MelodyOnly {
		notes = melody.Extract(notes, req.MelodyCfg)
		log.Info("melody extracted", zap.Int("notes", len(notes)))
	}

	if req.AutoTranspose {
		shift := preprocess.BestTranspose(notes)
		if shift != 0 {
			log.Info("auto transpose", zap.Int("semitones", shift))
			notes = preprocess.Transpose(notes, shift)
		}
	}

	if req.Opts.EnableBlackTranspose {
		notes, err = preprocess.TransposeBlackKeys(notes, req.Opts.BlackTransposeStrategy)
		if err != nil {
			return nil, err
		}
	}

	events := mapNotes(notes, req.Strategy, req.Layout, req.Opts.EnableKeyFallback)

	if req.Opts.EnableChordAccomp {
		mode, err := chord.ParseMode(req.Opts.ChordAccompMode)
		if err != nil {
			return nil, err
		}
		minSustain := req.Opts.ChordMinSustainMs / 1000
		segments := chord.Segments(notes, mode, minSustain)
		accomp := chord.Events(segments, keymap.Chords(), minSustain)
		log.Info("chord accompaniment", zap.Int("segments", len(segments)))
		if req.Opts.ChordReplaceMelody {
			events = chord.ReplaceMelody(events, accomp)
		}
		events = append(events, accomp...)
		model.SortEvents(events)
	}

	return condition(events, req.Opts)
}

func roleNotes(notes []model.Note, role string) []model.Note {
	for _, section := range partition.Split(notes, true) {
		if section.Name == role {
			return section.Notes
		}
	}
	return nil
}

func mapNotes(notes []model.Note, strategy keymap.Strategy, layout keymap.Mapping, fallback bool) []model.KeyEvent {
	var events []model.KeyEvent
	for _, n := range notes {
		key, ok := strategy.MapPitch(n.Pitch, layout, fallback)
		if !ok {
			continue
		}
		events = append(events,
			model.KeyEvent{Time: n.Start, Action: model.Press, Key: key, Pitch: int16(n.Pitch)},
			model.KeyEvent{Time: n.End, Action: model.Release, Key: key, Pitch: int16(n.Pitch)},
		)
	}
	model.SortEvents(events)
	return events
}

func condition(events []model.KeyEvent, opts model.Options) ([]model.KeyEvent, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("nothing playable after mapping")
	}
	if opts.EnableQuantize {
		events = preprocess.Quantize(events, opts.QuantizeGridMs/1000)
	}
	events = preprocess.NormalizeClusters(events, opts.ClusterMode)
	events = preprocess.UnionAndTap(events, opts)
	return events, nil
}
