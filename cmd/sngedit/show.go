package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <file|url>",
		Short: "Print a song's metadata, slides and verse order",
		Example: `  sngedit show "Amazing Grace.sng"
  sngedit show https://songs.example.com/api/songs/42 --token $TOKEN`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}
	addTokenFlag(cmd)
	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, args[0], nil, true)
	if err != nil {
		return err
	}
	defer a.close()

	session, err := a.open(cmd.Context(), args[0], tokenFlag(cmd))
	if err != nil {
		return err
	}

	printSession(cmd.OutOrStdout(), session, a.cfg.Editor.GetFieldOrder())
	return nil
}

func printSession(out io.Writer, session *entities.Session, fieldOrder []string) {
	format := "untitled"
	if session.Titled {
		format = "titled"
	}
	fmt.Fprintf(out, "Format: %s\n", format)

	for _, key := range session.Document.Metadata.Keys(fieldOrder) {
		fmt.Fprintf(out, "%s: %s\n", key, session.Document.Metadata.Get(key))
	}

	fmt.Fprintf(out, "\nSlides (%d):\n", session.Document.SlideCount())
	for i, slide := range session.Document.Slides {
		title := slide.Title
		if title == "" {
			title = entities.UntitledLabel
		}
		fmt.Fprintf(out, "  [%d] %s (%d lines)\n", i, title, len(slide.Content))
	}

	if session.Titled {
		fmt.Fprintf(out, "\nOrder: %s\n", strings.Join(session.Labels(), " > "))
	}
}
