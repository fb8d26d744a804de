package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "kns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Contains(t, cfg.Enums.Samplers, "euler")
	assert.Equal(t, "%Y%m%d_%H%M%S", cfg.Filename.TimeFormat)
	assert.Equal(t, 30*time.Second, cfg.Server.CallTimeout)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
enums:
  samplers: [euler, dpmpp_2m]
  extra_schedulers: [GITS]
filename:
  prefix: render
  location: UTC
server:
  call_timeout: 5s
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"euler", "dpmpp_2m"}, cfg.Enums.Samplers)
	assert.Equal(t, Default().Enums.Schedulers, cfg.Enums.Schedulers)
	assert.Equal(t, []string{"GITS"}, cfg.Enums.ExtraSchedulers)
	assert.Equal(t, "render", cfg.Filename.Prefix)
	assert.Equal(t, "_", cfg.Filename.Delimiter)
	assert.Equal(t, 5*time.Second, cfg.Server.CallTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)

	loc, err := cfg.FilenameLocation()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("KNS_TEST_PREFIX", "from-env")
	path := writeFile(t, "filename:\n  prefix: ${KNS_TEST_PREFIX}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Filename.Prefix)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "bad yaml", content: "enums: [", want: "config: parse"},
		{name: "empty samplers", content: "enums:\n  samplers: []\n", want: "Samplers"},
		{name: "blank sampler", content: "enums:\n  samplers: [\"\"]\n", want: "Samplers[0]"},
		{name: "bad level", content: "log:\n  level: loud\n", want: "Level"},
		{name: "bad timezone", content: "filename:\n  location: Mars/Olympus\n", want: "Location"},
		{name: "bad ws addr", content: "server:\n  ws_addr: nope\n", want: "WSAddr"},
		{name: "missing time format", content: "filename:\n  time_format: \"\"\n", want: "TimeFormat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: load")
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = LoadOrDefault(writeFile(t, "filename:\n  prefix: x\n"))
	require.NoError(t, err)
	assert.Equal(t, "x", cfg.Filename.Prefix)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kns.yaml")

	cfg := Default()
	cfg.Filename.Prefix = "saved"
	cfg.Enums.ExtraSchedulers = []string{"AYS SD1"}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSaveRejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Server.Name = ""

	err := Save(filepath.Join(t.TempDir(), "kns.yaml"), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: invalid")
}

func TestConversions(t *testing.T) {
	cfg := Default()

	e := cfg.SamplerEnums()
	assert.Equal(t, cfg.Enums.Samplers, e.Samplers)
	assert.Contains(t, e.SchedulerChoices(), "AYS SD1")

	d := cfg.FilenameDefaults()
	assert.Equal(t, "ComfyUI", d.Prefix)
	assert.Equal(t, "ComfyUI", d.OutputPath)

	cfg.Filename.Location = ""
	loc, err := cfg.FilenameLocation()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestSaveKeepsDisabledExtraSchedulers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kns.yaml")

	cfg := Default()
	cfg.Enums.ExtraSchedulers = []string{}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.NotNil(t, loaded.Enums.ExtraSchedulers)
	assert.Empty(t, loaded.Enums.ExtraSchedulers)
	assert.Equal(t, cfg.Enums.Schedulers, loaded.SamplerEnums().SchedulerChoices())
}

func TestLocalLocationName(t *testing.T) {
	cfg := Default()
	cfg.Filename.Location = "Local"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Location")
}
