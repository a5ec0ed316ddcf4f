package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Version is set during build
	Version = "dev"

	// BuildDate is set during build
	BuildDate = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sngedit",
		Short: "Edit, format and serve SNG song files",
		Long: `sngedit reads SNG song files (the line based song markup used by
worship presentation software), keeps their verse order in sync with the
slides, and writes them back in canonical form. Songs can be local files
or live on a song server reachable over HTTP.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build Date: ` + BuildDate + `
`)

	root.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().StringP("config", "c", "", "Config file (default: ~/.config/sngedit/config.toml)")

	root.AddCommand(
		newShowCmd(),
		newFmtCmd(),
		newExportCmd(),
		newOrderCmd(),
		newFetchCmd(),
		newPushCmd(),
		newServeCmd(),
		newConfigCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
