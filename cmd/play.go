package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludyw21/autokeys/keymap"
	"github.com/ludyw21/autokeys/melody"
	"github.com/ludyw21/autokeys/model"
	"github.com/ludyw21/autokeys/pipeline"
	"github.com/ludyw21/autokeys/player"
)

var playFlags struct {
	strategy       string
	layout         string
	role           string
	melodyOnly     bool
	melodyMode     string
	tempo          float64
	chords         bool
	chordMode      string
	chordReplace   bool
	retrigger      bool
	quantize       float64
	blackTranspose string
	autoTranspose  bool
}

func init() {
	f := playCmd.Flags()
	f.StringVar(&playFlags.strategy, "strategy", "region21", "mapping strategy (region21, linear15)")
	f.StringVar(&playFlags.layout, "layout", "default", "key layout (default, genshin, linear15)")
	f.StringVar(&playFlags.role, "role", "", "play one part (drums, bass, guitar, keys)")
	f.BoolVar(&playFlags.melodyOnly, "melody", false, "reduce to the melody line")
	f.StringVar(&playFlags.melodyMode, "melody-mode", "hybrid", "melody filter (hybrid, entropy, beat, repetition)")
	f.Float64Var(&playFlags.tempo, "tempo", 1.0, "playback rate multiplier")
	f.BoolVar(&playFlags.chords, "chords", false, "add chord accompaniment")
	f.StringVar(&playFlags.chordMode, "chord-mode", "triad", "chord detection (triad, triad7, greedy)")
	f.BoolVar(&playFlags.chordReplace, "chord-replace", false, "let chords replace covered melody")
	f.BoolVar(&playFlags.retrigger, "retrigger", false, "re-articulate overlapped onsets")
	f.Float64Var(&playFlags.quantize, "quantize", 0, "quantize grid in ms, 0 disables")
	f.StringVar(&playFlags.blackTranspose, "black-transpose", "", "fold black keys (down, nearest)")
	f.BoolVar(&playFlags.autoTranspose, "auto-transpose", false, "shift for best white-key coverage")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play <file.mid>",
	Short: "Plays a MIDI file as key events",
	Long: `Plays a MIDI file as key events. Actions are logged rather than
injected; wire a real KeySender for actual input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildRequest(args[0])
		if err != nil {
			return err
		}
		return play(req)
	},
}

func buildRequest(path string) (pipeline.Request, error) {
	req := pipeline.NewRequest(path)

	strategy, err := keymap.ParseStrategy(playFlags.strategy)
	if err != nil {
		return req, err
	}
	req.Strategy = strategy

	layout, ok := keymap.ByName(playFlags.layout)
	if !ok {
		return req, fmt.Errorf("unknown layout %q", playFlags.layout)
	}
	req.Layout = layout

	mode, err := melody.ParseMode(playFlags.melodyMode)
	if err != nil {
		return req, err
	}
	req.MelodyOnly = playFlags.melodyOnly
	req.MelodyCfg.Mode = mode
	req.Role = playFlags.role
	req.AutoTranspose = playFlags.autoTranspose

	req.Opts.Tempo = playFlags.tempo
	req.Opts.EnableChordAccomp = playFlags.chords
	req.Opts.ChordAccompMode = playFlags.chordMode
	req.Opts.ChordReplaceMelody = playFlags.chordReplace
	req.Opts.AllowRetrigger = playFlags.retrigger
	if playFlags.quantize > 0 {
		req.Opts.EnableQuantize = true
		req.Opts.QuantizeGridMs = playFlags.quantize
	}
	if playFlags.blackTranspose != "" {
		req.Opts.EnableBlackTranspose = true
		req.Opts.BlackTransposeStrategy = playFlags.blackTranspose
	}
	return req, nil
}

func play(req pipeline.Request) error {
	log := newLogger()
	defer log.Sync()

	events, err := pipeline.Build(req, log)
	if err != nil {
		return err
	}

	cb := model.Callbacks{
		OnProgress: func(percent float64) {
			fmt.Printf("\rprogress: %5.1f%%", percent)
		},
		OnComplete: func() { fmt.Println("\ndone") },
		OnError:    func(err error) { fmt.Printf("\nerror: %v\n", err) },
	}
	p := player.New(player.NewLogSender(log), req.Opts, cb, log)
	if err := p.Start(events); err != nil {
		return err
	}
	p.Wait()
	return nil
}
