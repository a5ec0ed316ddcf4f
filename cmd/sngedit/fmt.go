package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fredcamaral/sngedit/internal/adapters/secondary/repository"
)

// errNeedsFormatting is returned by fmt --check
var errNeedsFormatting = errors.New("songs are not canonically formatted")

func newFmtCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt <file>...",
		Short: "Rewrite songs in canonical SNG form",
		Long: `fmt parses each song and writes it back in canonical form: metadata
in the configured field order, the verse order regenerated from the slide
titles, UTF-8 with a byte order mark.`,
		Example: `  sngedit fmt songs/*.sng
  sngedit fmt --check songs/*.sng
  sngedit fmt --stdout legacy.sng`,
		Args: cobra.MinimumNArgs(1),
		RunE: runFmt,
	}
	cmd.Flags().Bool("check", false, "Only report files that would change")
	cmd.Flags().Bool("stdout", false, "Print the formatted song instead of rewriting it")
	return cmd
}

func runFmt(cmd *cobra.Command, args []string) error {
	check, _ := cmd.Flags().GetBool("check")
	stdout, _ := cmd.Flags().GetBool("stdout")

	a, err := newApp(cmd, args[0], nil, true)
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	unformatted := 0
	for _, path := range args {
		changed, err := formatSong(cmd, a, path, check, stdout, out)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if changed {
			unformatted++
		}
	}

	if check && unformatted > 0 {
		return fmt.Errorf("%w: %d file(s)", errNeedsFormatting, unformatted)
	}
	return nil
}

// formatSong reports whether path differs from its canonical form
func formatSong(cmd *cobra.Command, a *app, path string, check, stdout bool, out io.Writer) (bool, error) {
	ctx := cmd.Context()

	raw, err := os.ReadFile(path) // #nosec G304 - path is chosen by the user
	if err != nil {
		return false, fmt.Errorf("reading song: %w", err)
	}

	codec := repository.SNGCodec{}
	original, err := codec.Decode(raw)
	if err != nil {
		return false, err
	}

	session, err := a.sessions.OpenText(ctx, original)
	if err != nil {
		return false, err
	}
	defer a.sessions.Close(session.ID)

	formatted, err := a.sessions.Serialize(session.ID)
	if err != nil {
		return false, err
	}
	// byte comparison so a missing BOM or legacy encoding counts as a change
	encoded, err := codec.Encode(formatted)
	if err != nil {
		return false, err
	}
	changed := !bytes.Equal(encoded, raw)

	switch {
	case stdout:
		_, err = io.WriteString(out, formatted+"\n")
		return changed, err
	case check:
		if changed {
			fmt.Fprintln(out, path)
		}
		return changed, nil
	case changed:
		if err := a.files.Save(ctx, path, formatted); err != nil {
			return changed, err
		}
		a.logger.Info("formatted", zap.String("path", path))
		fmt.Fprintf(out, "formatted %s\n", path)
	}
	return changed, nil
}
