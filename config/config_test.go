package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/drake/winsize/ratelimit"
	"github.com/drake/winsize/size"
)

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.T().Setenv("XDG_CONFIG_HOME", s.dir)
	s.T().Setenv("XDG_STATE_HOME", filepath.Join(s.dir, "state"))
	for _, key := range []string{"WINSIZE_POLICY", "WINSIZE_INTERVAL", "WINSIZE_UI", "WINSIZE_DEBUG", "WINSIZE_HEADLESS"} {
		s.T().Setenv(key, "")
		os.Unsetenv(key)
	}
}

func (s *ConfigTestSuite) writeFile(name, content string) string {
	path := filepath.Join(s.dir, name)
	require.NoError(s.T(), os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(s.T(), os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (s *ConfigTestSuite) TestDefaults() {
	cfg, err := Load(viper.New(), "")
	require.NoError(s.T(), err)

	assert.Equal(s.T(), "throttle", cfg.Policy)
	assert.Equal(s.T(), ratelimit.PolicyThrottle, cfg.RatePolicy())
	assert.Equal(s.T(), size.DefaultInterval, cfg.Interval)
	assert.Equal(s.T(), UITUI, cfg.UI)
	assert.False(s.T(), cfg.Debug)
	assert.True(s.T(), cfg.Watch)
	assert.Equal(s.T(), filepath.Join(s.dir, "state", AppName, AppName+".log"), cfg.LogFile)
}

func (s *ConfigTestSuite) TestDefaultFileDiscovered() {
	s.writeFile(filepath.Join(AppName, "config.yaml"), "policy: debounce\ninterval: 150ms\nui: console\n")

	cfg, err := Load(viper.New(), "")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), ratelimit.PolicyDebounce, cfg.RatePolicy())
	assert.Equal(s.T(), 150*time.Millisecond, cfg.Interval)
	assert.Equal(s.T(), UIConsole, cfg.UI)
}

func (s *ConfigTestSuite) TestExplicitFile() {
	path := s.writeFile("custom.yaml", "headless: true\nscripts:\n  - a.lua\n  - b.lua\n")

	cfg, err := Load(viper.New(), path)
	require.NoError(s.T(), err)
	assert.True(s.T(), cfg.Headless)
	assert.Equal(s.T(), []string{"a.lua", "b.lua"}, cfg.Scripts)
}

func (s *ConfigTestSuite) TestExplicitFileMissing() {
	_, err := Load(viper.New(), filepath.Join(s.dir, "missing.yaml"))
	assert.Error(s.T(), err)
}

func (s *ConfigTestSuite) TestEnvironmentOverridesFile() {
	s.writeFile(filepath.Join(AppName, "config.yaml"), "policy: debounce\n")
	s.T().Setenv("WINSIZE_POLICY", "throttle")
	s.T().Setenv("WINSIZE_DEBUG", "1")

	cfg, err := Load(viper.New(), "")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "throttle", cfg.Policy)
	assert.True(s.T(), cfg.Debug)
}

func (s *ConfigTestSuite) TestInvalidValues() {
	cases := map[string]string{
		"policy":         "policy: leaky\n",
		"ui":             "ui: gui\n",
		"interval":       "interval: -1s\n",
		"debug_interval": "debug_interval: 0s\n",
	}
	for name, body := range cases {
		path := s.writeFile(name+".yaml", body)
		_, err := Load(viper.New(), path)
		assert.Error(s.T(), err, name)
	}
}

func (s *ConfigTestSuite) TestPaths() {
	assert.Equal(s.T(), filepath.Join(s.dir, AppName), Dir())
	assert.Equal(s.T(), filepath.Join(s.dir, AppName, "init.lua"), InitFile())
	assert.Equal(s.T(), filepath.Join(s.dir, AppName, "config.yaml"), File())
}

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "init.lua")
	require.NoError(t, os.WriteFile(path, []byte("-- v1"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 16)
	errc := make(chan error, 1)
	go func() {
		errc <- Watch(ctx, path, func() { changed <- struct{}{} })
	}()

	// Writes to other files in the directory are ignored; the watcher may
	// not be registered yet, so keep writing until it reports.
	deadline := time.After(5 * time.Second)
	for {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "other.lua"), []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(path, []byte("-- v2"), 0o644))
		select {
		case <-changed:
			cancel()
			assert.NoError(t, <-errc)
			return
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("no change reported")
		}
	}
}

func TestWatchMissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "init.lua"), func() {})
	assert.Error(t, err)
}
