package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	Token       string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout     time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"15s"`
	MaxAttempts int           `envconfig:"MAX_ATTEMPTS" split_words:"true" default:"5"`
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CFGTEST_TOKEN=from-file\nCFGTEST_MAX_ATTEMPTS=3\n"), 0o600))

	t.Setenv("CFGTEST_TOKEN", "")
	require.NoError(t, os.Unsetenv("CFGTEST_TOKEN"))
	t.Setenv("CFGTEST_MAX_ATTEMPTS", "7")

	conf, err := Load[sampleConfig](path, "CFGTEST")
	require.NoError(t, err)
	require.Equal(t, "from-file", conf.Token)
	require.Equal(t, 7, conf.MaxAttempts)
	require.Equal(t, 15*time.Second, conf.Timeout)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("CFGMISS_TOKEN", "")
	require.NoError(t, os.Unsetenv("CFGMISS_TOKEN"))
	t.Chdir(t.TempDir())

	_, err := Load[sampleConfig]("", "CFGMISS")
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load[sampleConfig](filepath.Join(t.TempDir(), "absent.env"), "CFGABSENT")
	require.Error(t, err)
}
