package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
	"github.com/fredcamaral/sngedit/internal/domain/ports"
)

// ErrNoBrowser is returned when no candidate command is installed
var ErrNoBrowser = errors.New("no supported browser found on this system")

// Browser is one way of opening an URL
type Browser struct {
	Name    string
	Command string
	Args    func(url string) []string
}

// Launcher opens the editor page after serve starts
type Launcher struct {
	browsers []Browser
	logger   *zap.Logger

	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error
}

// NewLauncher creates a launcher for the current platform. A configured
// browser command other than "default" is tried before the platform defaults.
func NewLauncher(cfg entities.BrowserConfig, logger *zap.Logger) *Launcher {
	return newLauncher(cfg, runtime.GOOS, logger)
}

func newLauncher(cfg entities.BrowserConfig, goos string, logger *zap.Logger) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	browsers := platformBrowsers(goos)
	if command := strings.TrimSpace(cfg.Browser); command != "" && command != "default" {
		browsers = append([]Browser{{
			Name:    command,
			Command: command,
			Args:    urlOnly,
		}}, browsers...)
	}

	return &Launcher{
		browsers: browsers,
		logger:   logger.Named("browser"),
		lookPath: exec.LookPath,
		start:    startDetached,
	}
}

// Launch opens target unless noOpen is set
func (l *Launcher) Launch(target string, noOpen bool) error {
	if noOpen {
		return nil
	}

	parsed, err := url.Parse(target)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("refusing to open %q: not an http url", target)
	}

	browser, err := l.selectBrowser()
	if err != nil {
		return fmt.Errorf("browser selection: %w", err)
	}

	if err := l.start(browser.Command, browser.Args(target)...); err != nil {
		return fmt.Errorf("launching %s: %w", browser.Name, err)
	}

	l.logger.Info("opened browser", zap.String("browser", browser.Name), zap.String("url", target))
	return nil
}

// Detect returns the name of the browser Launch would use
func (l *Launcher) Detect() (string, error) {
	browser, err := l.selectBrowser()
	if err != nil {
		return "", err
	}
	return browser.Name, nil
}

func (l *Launcher) selectBrowser() (*Browser, error) {
	for i := range l.browsers {
		if _, err := l.lookPath(l.browsers[i].Command); err == nil {
			return &l.browsers[i], nil
		}
		l.logger.Debug("browser not installed", zap.String("command", l.browsers[i].Command))
	}
	return nil, ErrNoBrowser
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...) // #nosec G204 - command comes from the platform table or local config
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func urlOnly(url string) []string {
	return []string{url}
}

func macApp(app string) func(string) []string {
	return func(url string) []string {
		return []string{"-a", app, url}
	}
}

func platformBrowsers(goos string) []Browser {
	switch goos {
	case "darwin":
		return []Browser{
			{Name: "Default", Command: "open", Args: urlOnly},
			{Name: "Chrome", Command: "open", Args: macApp("Google Chrome")},
			{Name: "Safari", Command: "open", Args: macApp("Safari")},
		}
	case "linux", "freebsd", "openbsd":
		return []Browser{
			{Name: "xdg-open", Command: "xdg-open", Args: urlOnly},
			{Name: "Chrome", Command: "google-chrome", Args: urlOnly},
			{Name: "Chromium", Command: "chromium", Args: urlOnly},
			{Name: "Firefox", Command: "firefox", Args: urlOnly},
		}
	case "windows":
		return []Browser{
			{Name: "Default", Command: "rundll32", Args: func(url string) []string {
				return []string{"url.dll,FileProtocolHandler", url}
			}},
		}
	default:
		return nil
	}
}

var _ ports.BrowserLauncher = (*Launcher)(nil)
