package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "push <file> <url>",
		Short:   "Upload a local song to a song server",
		Example: `  sngedit push grace.sng https://songs.example.com/api/songs/42 --token $TOKEN`,
		Args:    cobra.ExactArgs(2),
		RunE:    runPush,
	}
	addTokenFlag(cmd)
	return cmd
}

func runPush(cmd *cobra.Command, args []string) error {
	path, url := args[0], args[1]
	if !isURL(url) {
		return fmt.Errorf("not an http(s) url: %s", url)
	}

	a, err := newApp(cmd, path, nil, true)
	if err != nil {
		return err
	}
	defer a.close()

	session, err := a.sessions.OpenFile(cmd.Context(), path)
	if err != nil {
		return err
	}

	if err := a.sessions.Save(cmd.Context(), session.ID, url, tokenFlag(cmd)); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "uploaded %s to %s\n", path, url)
	return nil
}
