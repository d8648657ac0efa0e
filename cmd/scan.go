package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludyw21/autokeys/midi"
	"github.com/ludyw21/autokeys/model"
	"github.com/ludyw21/autokeys/util"
)

var scanMax int

func init() {
	scanCmd.Flags().IntVar(&scanMax, "max", 0, "stop after this many files, 0 for all")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Lists playable MIDI files under a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return scan(args[0])
	},
}

func scan(dir string) error {
	paths := util.GatherAllMidiPaths(dir, scanMax)
	if len(paths) == 0 {
		return fmt.Errorf("no MIDI files under %s", dir)
	}
	for _, path := range paths {
		s, err := midi.ReadFile(path)
		if err != nil {
			fmt.Printf("%v: unreadable (%v)\n", path, err)
			continue
		}
		notes := midi.ExtractNotes(s)
		fmt.Printf("%v: %v notes, %.1fs\n", path, len(notes), model.MaxEnd(notes))
	}
	return nil
}
