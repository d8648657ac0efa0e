package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludyw21/autokeys/chord"
	"github.com/ludyw21/autokeys/midi"
	"github.com/ludyw21/autokeys/model"
	"github.com/ludyw21/autokeys/notation"
)

var exportWithChords bool

func init() {
	exportCmd.Flags().BoolVar(&exportWithChords, "chords", false, "prepend detected chord keys")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <file.mid>",
	Short: "Exports a file as a key notation chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return export(args[0])
	},
}

func export(path string) error {
	s, err := midi.ReadFile(path)
	if err != nil {
		return err
	}
	notes := midi.ExtractNotes(s)

	var segments []model.ChordSegment
	if exportWithChords {
		segments = chord.Segments(notes, chord.Triad, 0.12)
	}

	fmt.Println(notation.Export(notes, segments))
	return nil
}
