package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fredcamaral/sngedit/internal/adapters/secondary/config"
	"github.com/fredcamaral/sngedit/internal/adapters/secondary/export"
	"github.com/fredcamaral/sngedit/internal/adapters/secondary/logging"
	"github.com/fredcamaral/sngedit/internal/adapters/secondary/parser"
	"github.com/fredcamaral/sngedit/internal/adapters/secondary/remote"
	"github.com/fredcamaral/sngedit/internal/adapters/secondary/renderer"
	"github.com/fredcamaral/sngedit/internal/adapters/secondary/repository"
	"github.com/fredcamaral/sngedit/internal/domain/entities"
	"github.com/fredcamaral/sngedit/internal/domain/services"
)

// app holds the components shared by every command
type app struct {
	cfg      *entities.Config
	logger   *zap.Logger
	writer   *export.SNGWriter
	files    *repository.FileRepository
	sessions *services.SessionService
	exporter *export.Service
	preview  *renderer.PreviewRenderer
	store    *services.SessionStore
}

// newApp resolves configuration for the directory of song (or the working
// directory for URLs) and builds the components. One-shot commands log at
// warn level unless --verbose is given.
func newApp(cmd *cobra.Command, song string, flags map[string]interface{}, quiet bool) (*app, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	if flags == nil {
		flags = make(map[string]interface{})
	}
	if cmd.Flags().Changed("verbose") {
		flags["verbose"] = verbose
	}

	configService := services.NewConfigService(config.NewTOMLLoaderWithPath(cfgPath), config.NewConfigMerger(), nil)
	cfg, err := configService.LoadConfig(cmd.Context(), configDir(song), flags)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	if quiet && !cfg.Logging.Verbose {
		logger = logger.WithOptions(zap.IncreaseLevel(zapcore.WarnLevel))
	}

	preview, err := renderer.NewPreviewRenderer(logger)
	if err != nil {
		return nil, fmt.Errorf("creating preview renderer: %w", err)
	}

	writer := export.NewSNGWriter(cfg.Editor.GetFieldOrder())
	files := repository.NewFileRepository(logger)
	store := services.NewSessionStore(cfg.Sessions)
	sessions := services.NewSessionService(
		parser.NewSNGParser(logger),
		writer,
		files,
		remote.NewClient(cfg.Remote, repository.SNGCodec{}, logger),
		store,
		logger,
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		writer:   writer,
		files:    files,
		sessions: sessions,
		exporter: export.NewService(writer, preview, logger),
		preview:  preview,
		store:    store,
	}, nil
}

// open loads song from a path or an http(s) URL
func (a *app) open(ctx context.Context, song, token string) (*entities.Session, error) {
	if isURL(song) {
		return a.sessions.OpenRemote(ctx, song, token)
	}
	return a.sessions.OpenFile(ctx, song)
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func configDir(song string) string {
	if song == "" || isURL(song) {
		wd, err := os.Getwd()
		if err != nil {
			return "."
		}
		return wd
	}
	return filepath.Dir(song)
}

// tokenFlag reads --token, falling back to SNGEDIT_TOKEN
func tokenFlag(cmd *cobra.Command) string {
	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		token = os.Getenv(config.EnvPrefix + "TOKEN")
	}
	return token
}

func addTokenFlag(cmd *cobra.Command) {
	cmd.Flags().String("token", "", "Bearer token for the song server (default: $"+config.EnvPrefix+"TOKEN)")
}
