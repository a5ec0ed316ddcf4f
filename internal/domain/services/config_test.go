package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
)

type MockConfigLoader struct {
	mock.Mock
}

func (m *MockConfigLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) LoadLocal(ctx context.Context, dir string) (*entities.Config, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) CreateDefaults(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockConfigLoader) GetGlobalPath() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfigLoader) GetLocalPath(dir string) string {
	args := m.Called(dir)
	return args.String(0)
}

type MockConfigMerger struct {
	mock.Mock
}

func (m *MockConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	args := m.Called(configs)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	args := m.Called(config, flags)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	args := m.Called(config)
	return args.Get(0).(*entities.Config)
}

func serverConfig(host string, port int) *entities.Config {
	return &entities.Config{
		Server:  entities.ServerConfig{Host: host, Port: port},
		Watcher: entities.WatcherConfig{IntervalMs: 200},
		Editor:  entities.EditorConfig{ExportFormat: "sng"},
	}
}

func TestNewConfigService(t *testing.T) {
	loader := &MockConfigLoader{}
	merger := &MockConfigMerger{}

	service := NewConfigService(loader, merger, nil)

	assert.NotNil(t, service)
	assert.Equal(t, loader, service.loader)
	assert.Equal(t, merger, service.merger)
	assert.NotNil(t, service.logger)
}

func TestConfigService_LoadConfig(t *testing.T) {
	t.Run("loads and merges config hierarchy", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		defaultConfig := serverConfig("localhost", 4300)
		globalConfig := serverConfig("localhost", 4000)
		localConfig := serverConfig("", 5000)
		mergedConfig := serverConfig("localhost", 5000)
		envConfig := serverConfig("127.0.0.1", 5000)
		finalConfig := serverConfig("127.0.0.1", 6000)

		flags := map[string]interface{}{
			"host": "127.0.0.1",
			"port": 6000,
		}

		merger.On("Merge", mock.Anything).Return(defaultConfig).Once()
		loader.On("LoadGlobal", mock.Anything).Return(globalConfig, nil)
		loader.On("LoadLocal", mock.Anything, "/songs").Return(localConfig, nil)
		merger.On("Merge", mock.MatchedBy(func(configs []*entities.Config) bool {
			return len(configs) == 3 && configs[2] == localConfig
		})).Return(mergedConfig)
		merger.On("ApplyEnvVars", mergedConfig).Return(envConfig)
		merger.On("ApplyFlags", envConfig, flags).Return(finalConfig)

		service := NewConfigService(loader, merger, nil)
		result, err := service.LoadConfig(context.Background(), "/songs", flags)

		require.NoError(t, err)
		assert.Equal(t, finalConfig, result)
		loader.AssertExpectations(t)
		merger.AssertExpectations(t)
	})

	t.Run("handles global config load error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		loader.On("LoadGlobal", mock.Anything).Return(nil, errors.New("global config error"))
		merger.On("Merge", mock.Anything).Return(&entities.Config{})

		service := NewConfigService(loader, merger, nil)
		_, err := service.LoadConfig(context.Background(), "/songs", nil)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "loading global config")
	})

	t.Run("handles local config load error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		loader.On("LoadGlobal", mock.Anything).Return(&entities.Config{}, nil)
		loader.On("LoadLocal", mock.Anything, "/songs").Return(nil, errors.New("local config error"))
		merger.On("Merge", mock.Anything).Return(&entities.Config{})

		service := NewConfigService(loader, merger, nil)
		_, err := service.LoadConfig(context.Background(), "/songs", nil)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "loading local config")
	})

	t.Run("handles validation error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		invalidConfig := &entities.Config{
			Watcher: entities.WatcherConfig{Backend: "carrier-pigeon"},
		}

		loader.On("LoadGlobal", mock.Anything).Return(&entities.Config{}, nil)
		loader.On("LoadLocal", mock.Anything, "/songs").Return(nil, nil)
		merger.On("Merge", mock.Anything).Return(&entities.Config{})
		merger.On("ApplyEnvVars", mock.Anything).Return(&entities.Config{})
		merger.On("ApplyFlags", mock.Anything, mock.Anything).Return(invalidConfig)

		service := NewConfigService(loader, merger, nil)
		_, err := service.LoadConfig(context.Background(), "/songs", nil)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "final config validation")
	})

	t.Run("skips missing local config", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		defaultConfig := serverConfig("localhost", 4300)
		globalConfig := serverConfig("localhost", 4000)
		finalConfig := serverConfig("localhost", 4000)

		merger.On("Merge", mock.Anything).Return(defaultConfig).Once()
		loader.On("LoadGlobal", mock.Anything).Return(globalConfig, nil)
		loader.On("LoadLocal", mock.Anything, "/songs").Return(nil, nil)
		merger.On("Merge", mock.MatchedBy(func(configs []*entities.Config) bool {
			return len(configs) == 2
		})).Return(finalConfig)
		merger.On("ApplyEnvVars", finalConfig).Return(finalConfig)
		merger.On("ApplyFlags", finalConfig, map[string]interface{}(nil)).Return(finalConfig)

		service := NewConfigService(loader, merger, nil)
		result, err := service.LoadConfig(context.Background(), "/songs", nil)

		require.NoError(t, err)
		assert.Equal(t, finalConfig, result)
	})
}

func TestConfigService_GetDefaultConfig(t *testing.T) {
	loader := &MockConfigLoader{}
	merger := &MockConfigMerger{}

	expected := serverConfig("localhost", 4300)
	merger.On("Merge", mock.Anything).Return(expected)

	service := NewConfigService(loader, merger, nil)
	assert.Equal(t, expected, service.GetDefaultConfig())
	merger.AssertExpectations(t)
}

func TestConfigService_ValidateConfig(t *testing.T) {
	service := NewConfigService(&MockConfigLoader{}, &MockConfigMerger{}, nil)

	t.Run("validates valid config", func(t *testing.T) {
		assert.NoError(t, service.ValidateConfig(serverConfig("localhost", 4300)))
	})

	t.Run("rejects nil config", func(t *testing.T) {
		err := service.ValidateConfig(nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "config cannot be nil")
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		err := service.ValidateConfig(&entities.Config{Server: entities.ServerConfig{Port: -1}})
		assert.Error(t, err)
	})

	t.Run("rejects empty field order entries", func(t *testing.T) {
		cfg := serverConfig("localhost", 4300)
		cfg.Editor.FieldOrder = []string{"Title", " "}
		assert.Error(t, service.ValidateConfig(cfg))
	})
}

func TestConfigService_CreateGlobalConfig(t *testing.T) {
	t.Run("creates global config", func(t *testing.T) {
		loader := &MockConfigLoader{}
		globalPath := "/home/user/.config/sngedit/config.toml"

		loader.On("GetGlobalPath").Return(globalPath)
		loader.On("CreateDefaults", mock.Anything, globalPath).Return(nil)

		service := NewConfigService(loader, &MockConfigMerger{}, nil)
		assert.NoError(t, service.CreateGlobalConfig(context.Background()))
		loader.AssertExpectations(t)
	})

	t.Run("handles creation error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		creationError := errors.New("permission denied")

		loader.On("GetGlobalPath").Return("/invalid/path/config.toml")
		loader.On("CreateDefaults", mock.Anything, "/invalid/path/config.toml").Return(creationError)

		service := NewConfigService(loader, &MockConfigMerger{}, nil)
		err := service.CreateGlobalConfig(context.Background())

		assert.Equal(t, creationError, err)
	})
}
