package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ludyw21/autokeys/midi"
	"github.com/ludyw21/autokeys/model"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Prints tempo map, channels and note counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(args[0])
	},
}

func inspect(path string) error {
	s, err := midi.ReadFile(path)
	if err != nil {
		return err
	}
	tm := midi.NewTempoMap(s)
	notes := midi.ExtractNotes(s)

	fmt.Printf("tracks: %v\n", len(s.Tracks))
	fmt.Printf("notes: %v\n", len(notes))
	fmt.Printf("duration: %.3fs\n", model.MaxEnd(notes))

	fmt.Println("tempo map:")
	for _, c := range tm.Changes() {
		fmt.Printf("  tick %v: %.0f us/beat (%.3fs)\n", c.Tick, c.UsPerBeat, c.CumSeconds)
	}

	counts := make(map[uint8]int)
	for _, n := range notes {
		counts[n.Channel]++
	}
	channels := make([]int, 0, len(counts))
	for ch := range counts {
		channels = append(channels, int(ch))
	}
	sort.Ints(channels)
	fmt.Println("channels:")
	for _, ch := range channels {
		fmt.Printf("  %v: %v notes\n", ch, counts[uint8(ch)])
	}
	return nil
}
