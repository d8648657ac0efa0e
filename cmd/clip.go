package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ludyw21/autokeys/clip"
	"github.com/ludyw21/autokeys/midi"
)

var clipFlags struct {
	fromTick uint64
	toTick   uint64
	out      string
}

func init() {
	clipCmd.Flags().Uint64Var(&clipFlags.fromTick, "from-tick", 0, "first tick to keep")
	clipCmd.Flags().Uint64Var(&clipFlags.toTick, "to-tick", 0, "last tick to keep, 0 means end of file")
	clipCmd.Flags().StringVarP(&clipFlags.out, "out", "o", "", "output path, defaults to <file>.clip.mid")
	rootCmd.AddCommand(clipCmd)
}

var clipCmd = &cobra.Command{
	Use:   "clip <file.mid>",
	Short: "Cuts a tick range out of a MIDI file for practicing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClip(args[0])
	},
}

func runClip(path string) error {
	if clipFlags.toTick > 0 && clipFlags.toTick < clipFlags.fromTick {
		return fmt.Errorf("--to-tick %v is before --from-tick %v", clipFlags.toTick, clipFlags.fromTick)
	}
	s, err := midi.ReadFile(path)
	if err != nil {
		return err
	}

	res := clip.Create(s, clipFlags.fromTick, clipFlags.toTick)

	out := clipFlags.out
	if out == "" {
		out = strings.TrimSuffix(strings.TrimSuffix(path, ".mid"), ".midi") + ".clip.mid"
	}
	if err := res.WriteFile(out); err != nil {
		return err
	}

	notes := midi.ExtractNotes(res)
	fmt.Printf("wrote %v (%v notes)\n", out, len(notes))
	return nil
}
