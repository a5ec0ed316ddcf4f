package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download a song from a song server",
		Example: `  sngedit fetch https://songs.example.com/api/songs/42 -o grace.sng
  sngedit fetch https://songs.example.com/api/songs/42 > grace.sng`,
		Args: cobra.ExactArgs(1),
		RunE: runFetch,
	}
	cmd.Flags().StringP("output", "o", "", "Save to this file instead of printing")
	addTokenFlag(cmd)
	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	url := args[0]
	if !isURL(url) {
		return fmt.Errorf("not an http(s) url: %s", url)
	}

	a, err := newApp(cmd, url, nil, true)
	if err != nil {
		return err
	}
	defer a.close()

	session, err := a.sessions.OpenRemote(cmd.Context(), url, tokenFlag(cmd))
	if err != nil {
		return err
	}

	text, err := a.sessions.Serialize(session.ID)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), text+"\n")
		return err
	}

	if err := a.files.Save(cmd.Context(), output, text); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "saved %s (%d slides)\n", output, session.Document.SlideCount())
	return nil
}
