package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpadapter "github.com/fredcamaral/sngedit/internal/adapters/primary/http"
	"github.com/fredcamaral/sngedit/internal/adapters/secondary/browser"
	"github.com/fredcamaral/sngedit/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/sngedit/internal/domain/entities"
	"github.com/fredcamaral/sngedit/internal/domain/ports"
	"github.com/fredcamaral/sngedit/internal/domain/services"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <file|url>",
		Short: "Serve a song for editing in the browser",
		Long: `serve opens the song in an editing session and starts a local HTTP
server with a REST API for edits, a rendered preview and websocket updates.
Local files are watched and reloaded when they change on disk.`,
		Example: `  sngedit serve "Amazing Grace.sng"
  sngedit serve song.sng --port 8080 --no-browser
  sngedit serve https://songs.example.com/api/songs/42 --token $TOKEN`,
		Args: cobra.ExactArgs(1),
		RunE: runServe,
	}

	cmd.Flags().IntP("port", "p", 0, "Port to serve on (overrides config)")
	cmd.Flags().String("host", "", "Host to bind to (overrides config)")
	cmd.Flags().Bool("no-browser", false, "Don't open the browser (overrides config)")
	cmd.Flags().String("watch-backend", "", "File watcher backend: poll or fsnotify (overrides config)")
	cmd.Flags().Bool("no-watch", false, "Don't reload the song when the file changes")
	addTokenFlag(cmd)
	return cmd
}

// serveFlags collects the flags that override configuration
func serveFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		flags["port"] = port
	}
	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		flags["host"] = host
	}
	if cmd.Flags().Changed("no-browser") {
		noBrowser, _ := cmd.Flags().GetBool("no-browser")
		flags["no-browser"] = noBrowser
	}
	if cmd.Flags().Changed("watch-backend") {
		backend, _ := cmd.Flags().GetString("watch-backend")
		flags["watch-backend"] = backend
	}
	return flags
}

func runServe(cmd *cobra.Command, args []string) error {
	song := args[0]

	a, err := newApp(cmd, song, serveFlags(cmd), false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	session, err := a.open(ctx, song, tokenFlag(cmd))
	if err != nil {
		return err
	}

	server := httpadapter.NewServer(a.sessions, a.exporter, a.preview, a.cfg.Server, a.logger)
	server.SetEditorDefaults(a.cfg.Editor)
	server.SetDefaultSession(session.ID)

	if err := server.Start(ctx, a.cfg.Server.Port, a.cfg.Server.Host); err != nil {
		return err
	}

	url := "http://" + server.Addr() + "/"
	a.logger.Info("editing song",
		zap.String("url", url),
		zap.String("session", session.ID),
		zap.String("source", session.Source.Location),
		zap.Bool("titled", session.Titled),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at %s (session %s)\n", song, url, session.ID)

	var (
		liveReload  *services.LiveReloadService
		fileWatcher ports.FileWatcher
	)
	noWatch, _ := cmd.Flags().GetBool("no-watch")
	if session.Source.Kind == services.SourceFile && !noWatch {
		liveReload, fileWatcher, err = startLiveReload(ctx, a, server, session)
		if err != nil {
			a.logger.Warn("live reload disabled", zap.Error(err))
		}
	}

	if a.cfg.Browser.GetAutoOpen() {
		if err := browser.NewLauncher(a.cfg.Browser, a.logger).Launch(url, false); err != nil {
			a.logger.Warn("failed to open browser", zap.Error(err))
		}
	}

	<-ctx.Done()
	a.logger.Info("shutting down")

	return shutdown(a, server, liveReload, fileWatcher)
}

func startLiveReload(
	ctx context.Context,
	a *app,
	server *httpadapter.Server,
	session *entities.Session,
) (*services.LiveReloadService, ports.FileWatcher, error) {
	fileWatcher, err := watcher.New(a.cfg.Watcher, a.logger)
	if err != nil {
		return nil, nil, err
	}

	liveReload := services.NewLiveReloadService(fileWatcher, server, a.sessions, a.logger)
	if err := liveReload.Start(ctx, session.ID, session.Source.Location); err != nil {
		_ = fileWatcher.Stop()
		return nil, nil, err
	}
	return liveReload, fileWatcher, nil
}

func shutdown(a *app, server *httpadapter.Server, liveReload *services.LiveReloadService, fileWatcher ports.FileWatcher) error {
	var errs []error
	if liveReload != nil {
		errs = append(errs, liveReload.Stop())
	}
	if fileWatcher != nil {
		errs = append(errs, fileWatcher.Stop())
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.GetShutdownTimeout())
	defer cancel()
	errs = append(errs, server.Stop(ctx))

	return errors.Join(errs...)
}
