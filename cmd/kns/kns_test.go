package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/karlmeister/kns/pkg/config"
	"github.com/karlmeister/kns/pkg/nodes/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with args against a config file written
// to a temp dir, returning stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "kns.yaml")
	require.NoError(t, config.Save(cfgPath, config.Default()))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", cfgPath, "--env", filepath.Join(dir, ".env")}, args...))

	err := root.Execute()

	return out.String(), err
}

func decodeLabelled(t *testing.T, out string) []node.NamedValue {
	t.Helper()

	var got []node.NamedValue
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	return got
}

func TestCallCommand(t *testing.T) {
	out, err := runCLI(t, "", "call", "TextConcatenator", `{"text_a":" x ","text_b":"y"}`)
	require.NoError(t, err)

	got := decodeLabelled(t, out)
	require.Len(t, got, 1)
	assert.Equal(t, "STRING", got[0].Name)
	assert.Equal(t, "x, y", got[0].Value)
}

func TestCallCommandStdin(t *testing.T) {
	out, err := runCLI(t, `{"text":"a, b"}`, "call", "StringSplit", "-")
	require.NoError(t, err)

	got := decodeLabelled(t, out)
	require.Len(t, got, 4)
	assert.Equal(t, "string_1", got[0].Name)
	assert.Equal(t, "a", got[0].Value)
	assert.Equal(t, "b", got[1].Value)
	assert.Equal(t, "", got[3].Value)
}

func TestCallCommandErrors(t *testing.T) {
	_, err := runCLI(t, "", "call", "Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node not found")

	_, err = runCLI(t, "", "call", "StringSplit", `{"text":5}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, node.ErrInvalidInput)
}

func TestListCommand(t *testing.T) {
	out, err := runCLI(t, "", "list")
	require.NoError(t, err)

	for _, name := range []string{
		"SeedFilenameGenerator", "KSamplerConfigSelector", "KSamplerConfigUnpack",
		"TextConcatenator", "StringSplit", "A_IfNotNone",
	} {
		assert.Contains(t, out, name)
	}
}

func TestDescribeRaw(t *testing.T) {
	out, err := runCLI(t, "", "describe", "StringSplit", "--raw")
	require.NoError(t, err)

	assert.Contains(t, out, "# String Split")
	assert.Contains(t, out, "| delimiter | STRING | yes | `\",\"` |  |")
	assert.Contains(t, out, "4. `string_4` STRING")
}

func TestDescribeUnknown(t *testing.T) {
	_, err := runCLI(t, "", "describe", "Nope", "--raw")
	require.Error(t, err)
}

func TestServeUnknownTransport(t *testing.T) {
	_, err := runCLI(t, "", "serve", "--transport", "carrier-pigeon")
	require.Error(t, err)
}

func TestInitDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", path, "--env", filepath.Join(dir, ".env"), "init", "--defaults"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Filename, cfg.Filename)

	// A second run refuses to overwrite without --force.
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", path, "--env", filepath.Join(dir, ".env"), "init", "--defaults"})
	require.Error(t, root.Execute())

	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", path, "--env", filepath.Join(dir, ".env"), "init", "--defaults", "--force"})
	require.NoError(t, root.Execute())
}

func TestWizardAnswersApply(t *testing.T) {
	cfg := config.Default()
	a := answersFrom(cfg)
	assert.Equal(t, cfg.Filename.Prefix, a.Prefix)
	assert.Len(t, a.ExtraSchedulers, 4)

	a.Prefix = "render"
	a.Location = "UTC"
	a.ExtraSchedulers = nil

	got := a.apply(cfg)
	assert.Equal(t, "render", got.Filename.Prefix)
	assert.Equal(t, "UTC", got.Filename.Location)
	assert.NotNil(t, got.Enums.ExtraSchedulers)
	assert.Empty(t, got.Enums.ExtraSchedulers)
	assert.Empty(t, got.SamplerEnums().SchedulerChoices()[len(cfg.Enums.Schedulers):])
}

func TestWizardValidators(t *testing.T) {
	require.NoError(t, validateTimeFormat("%Y-%m-%d"))
	require.NoError(t, validateTimeFormat("%Y%m%d_%H%M%S_%f"))
	require.Error(t, validateTimeFormat(""))
	require.Error(t, validateTimeFormat("%Q"))

	require.NoError(t, validateLocation(""))
	require.NoError(t, validateLocation("Europe/Berlin"))
	require.Error(t, validateLocation("Mars/Olympus"))
	require.Error(t, validateLocation("Local"))
}

func TestSignature(t *testing.T) {
	n := node.Node{
		Inputs: []node.Slot{
			{Name: "a", Required: true},
			{Name: "b"},
		},
		Outputs: []node.Output{{Name: "x"}, {Name: "y"}},
	}

	assert.Equal(t, "(a, b?) -> (x, y)", signature(n))
}

func TestRenderNodeTable(t *testing.T) {
	out := renderNodeTable([]node.Node{{
		Name:    "Echo",
		Title:   "Echo Node",
		Inputs:  []node.Slot{{Name: "text", Required: true}},
		Outputs: []node.Output{{Name: "text"}},
	}})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "Echo Node")
	assert.Contains(t, lines[1], "(text) -> (text)")
}

func TestCellTruncates(t *testing.T) {
	assert.Equal(t, "abc  ", cell("abc", 5))
	assert.Equal(t, "abc… ", cell("abcdefgh", 5))
}

func TestNodeMarkdown(t *testing.T) {
	n := node.Node{
		Name:     "Pick",
		Title:    "Pick One",
		Category: "Test",
		Inputs: []node.Slot{
			{Name: "mode", Type: node.Combo, Required: true, Choices: []string{"fast", "slow"}},
			{Name: "count", Type: node.Int, Required: true, Default: int64(3), IntMin: node.Ptr[int64](1), IntMax: node.Ptr[uint64](9)},
			{Name: "ratio", Type: node.Float, Default: 0.5, Min: node.Ptr(0.0), Max: node.Ptr(1.0), Step: node.Ptr(0.01)},
			{Name: "thing", Type: node.Any, ForceInput: true},
		},
		Outputs: []node.Output{{Name: "out", Type: node.String}},
	}

	md := nodeMarkdown(n)
	assert.Contains(t, md, "# Pick One")
	assert.Contains(t, md, "`Pick` in *Test*")
	assert.Contains(t, md, "| mode | COMBO | yes | `\"fast\"` | 2 choices |")
	assert.Contains(t, md, "| count | INT | yes | `\"3\"` | [1, 9] |")
	assert.Contains(t, md, "| ratio | FLOAT | no | `\"0.5\"` | [0, 1] step 0.01 |")
	assert.Contains(t, md, "| thing | any (connection) | no |  |  |")
	assert.Contains(t, md, "1. `out` STRING")
}

func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, "explicit.yaml", resolveConfigPath("explicit.yaml", dir))
	assert.Equal(t, "kns.yaml", resolveConfigPath("", dir))

	knsConfig := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(knsConfig, []byte("log:\n  level: info\n"), 0o600))
	assert.Equal(t, knsConfig, resolveConfigPath("", dir))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, loadDotEnv(filepath.Join(dir, "missing.env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("KNS_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("KNS_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("KNS_TEST_DOTENV"))

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("KNS_TEST_DOTENV"))
}
