package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludyw21/autokeys/midi"
	"github.com/ludyw21/autokeys/partition"
)

var partsLoose bool

func init() {
	partsCmd.Flags().BoolVar(&partsLoose, "loose", false, "widen drum detection beyond channel 10")
	rootCmd.AddCommand(partsCmd)
}

var partsCmd = &cobra.Command{
	Use:   "parts <file.mid>",
	Short: "Reports the instrument parts of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportParts(args[0])
	},
}

func reportParts(path string) error {
	s, err := midi.ReadFile(path)
	if err != nil {
		return err
	}
	notes := midi.ExtractNotes(s)

	for _, section := range partition.Split(notes, partsLoose) {
		if status := section.Meta["status"]; status != "" {
			fmt.Printf("%v: %v notes (%v)\n", section.Name, len(section.Notes), status)
			continue
		}
		fmt.Printf("%v: %v notes\n", section.Name, len(section.Notes))
	}

	fmt.Println("by channel:")
	for _, section := range partition.ByChannel(notes) {
		fmt.Printf("  %v program=%v name=%q: %v notes\n",
			section.Name, section.Meta["program"], section.Meta["name"],
			len(section.Notes))
	}
	return nil
}
