package browser

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
)

type startCall struct {
	name string
	args []string
}

// fakeLauncher only "installs" the given commands and records starts
func fakeLauncher(cfg entities.BrowserConfig, goos string, installed ...string) (*Launcher, *[]startCall) {
	l := newLauncher(cfg, goos, nil)

	set := make(map[string]bool, len(installed))
	for _, name := range installed {
		set[name] = true
	}
	l.lookPath = func(file string) (string, error) {
		if set[file] {
			return "/usr/bin/" + file, nil
		}
		return "", exec.ErrNotFound
	}

	calls := &[]startCall{}
	l.start = func(name string, args ...string) error {
		*calls = append(*calls, startCall{name: name, args: args})
		return nil
	}
	return l, calls
}

func TestNewLauncher(t *testing.T) {
	l := NewLauncher(entities.BrowserConfig{Browser: " firefox "}, nil)
	require.NotEmpty(t, l.browsers)
	assert.Equal(t, "firefox", l.browsers[0].Command)
	assert.NotNil(t, l.logger)

	l = newLauncher(entities.BrowserConfig{Browser: "default"}, "linux", nil)
	assert.Equal(t, "xdg-open", l.browsers[0].Command)
}

func TestLauncher_Launch(t *testing.T) {
	t.Run("noOpen does nothing", func(t *testing.T) {
		l, calls := fakeLauncher(entities.BrowserConfig{}, "linux", "xdg-open")
		require.NoError(t, l.Launch("http://127.0.0.1:4300", true))
		assert.Empty(t, *calls)
	})

	t.Run("first installed browser wins", func(t *testing.T) {
		l, calls := fakeLauncher(entities.BrowserConfig{}, "linux", "firefox", "chromium")
		require.NoError(t, l.Launch("http://127.0.0.1:4300/", false))
		require.Len(t, *calls, 1)
		assert.Equal(t, "chromium", (*calls)[0].name)
		assert.Equal(t, []string{"http://127.0.0.1:4300/"}, (*calls)[0].args)
	})

	t.Run("configured browser first", func(t *testing.T) {
		l, calls := fakeLauncher(entities.BrowserConfig{Browser: "brave"}, "linux", "xdg-open", "brave")
		require.NoError(t, l.Launch("http://localhost:4300", false))
		require.Len(t, *calls, 1)
		assert.Equal(t, "brave", (*calls)[0].name)
	})

	t.Run("mac app arguments", func(t *testing.T) {
		l, calls := fakeLauncher(entities.BrowserConfig{}, "darwin", "open")
		l.browsers = l.browsers[1:]
		require.NoError(t, l.Launch("http://localhost:4300", false))
		require.Len(t, *calls, 1)
		assert.Equal(t, []string{"-a", "Google Chrome", "http://localhost:4300"}, (*calls)[0].args)
	})

	t.Run("nothing installed", func(t *testing.T) {
		l, calls := fakeLauncher(entities.BrowserConfig{}, "linux")
		err := l.Launch("http://localhost:4300", false)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoBrowser)
		assert.Empty(t, *calls)
	})

	t.Run("non http url refused", func(t *testing.T) {
		l, calls := fakeLauncher(entities.BrowserConfig{}, "linux", "xdg-open")
		assert.Error(t, l.Launch("file:///etc/passwd", false))
		assert.Error(t, l.Launch("::not a url", false))
		assert.Empty(t, *calls)
	})

	t.Run("start failure", func(t *testing.T) {
		l, _ := fakeLauncher(entities.BrowserConfig{}, "linux", "xdg-open")
		l.start = func(string, ...string) error { return errors.New("boom") }
		err := l.Launch("http://localhost:4300", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "launching xdg-open")
	})
}

func TestLauncher_Detect(t *testing.T) {
	l, _ := fakeLauncher(entities.BrowserConfig{}, "windows", "rundll32")
	name, err := l.Detect()
	require.NoError(t, err)
	assert.Equal(t, "Default", name)

	l, _ = fakeLauncher(entities.BrowserConfig{}, "plan9")
	_, err = l.Detect()
	assert.ErrorIs(t, err, ErrNoBrowser)
}

func TestPlatformBrowsers(t *testing.T) {
	const target = "http://localhost:4300"

	for _, goos := range []string{"darwin", "linux", "windows"} {
		t.Run(goos, func(t *testing.T) {
			browsers := platformBrowsers(goos)
			require.NotEmpty(t, browsers)
			for _, b := range browsers {
				assert.Contains(t, b.Args(target), target)
			}
		})
	}

	assert.Empty(t, platformBrowsers("plan9"))
}
