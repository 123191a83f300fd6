package configloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/goscramble/pkg/config"
)

// baseOpts returns LoadOptions that isolate a test from the host's
// real configuration files and environment.
func baseOpts(workDir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         workDir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	result, err := Load(context.Background(), baseOpts(tmpDir))
	require.NoError(t, err)
	require.NotNil(t, result.Config)

	assert.Equal(t, config.DefaultListen, result.Config.Listen)
	assert.True(t, result.Config.SuppressScripts)
	assert.Empty(t, result.LoadedFrom)
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, tmpDir, ".goscramble.yml", `
listen: ":9000"
allowlist:
  - en.wikipedia.org
suppress_scripts: false
timeout: 10s
`)

	result, err := Load(context.Background(), baseOpts(tmpDir))
	require.NoError(t, err)

	assert.Equal(t, ":9000", result.Config.Listen)
	assert.Equal(t, []string{"en.wikipedia.org"}, result.Config.Allowlist)
	// A file can turn a default boolean off.
	assert.False(t, result.Config.SuppressScripts)
	assert.Equal(t, 10*time.Second, result.Config.Timeout.Std())
	assert.Equal(t, []string{filepath.Join(tmpDir, ".goscramble.yml")}, result.LoadedFrom)
}

func TestLoad_ExplicitOverridesProject(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, tmpDir, ".goscramble.yml", `listen: ":9000"`)
	explicit := writeFile(t, tmpDir, "other.yml", `listen: ":9999"`)

	opts := baseOpts(tmpDir)
	opts.ExplicitPath = explicit

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, ":9999", result.Config.Listen)
	assert.Len(t, result.LoadedFrom, 2)
	assert.Equal(t, explicit, result.Paths.Explicit)
}

func TestLoad_CLIOverridesFiles(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, tmpDir, ".goscramble.yml", `
listen: ":9000"
honeypot: false
`)

	opts := baseOpts(tmpDir)
	opts.CLIConfig = &config.Config{Listen: ":7777", Honeypot: true}

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, ":7777", result.Config.Listen)
	assert.True(t, result.Config.Honeypot)
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	// Not parallel because it modifies the environment.

	tmpDir := t.TempDir()
	writeFile(t, tmpDir, ".goscramble.yml", `listen: ":9000"`)

	t.Setenv("GOSCRAMBLE_LISTEN", ":8888")
	t.Setenv("GOSCRAMBLE_ALLOWLIST", "a.example, b.example")
	t.Setenv("GOSCRAMBLE_TIMEOUT", "5s")

	opts := baseOpts(tmpDir)
	opts.IgnoreEnv = false

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, ":8888", result.Config.Listen)
	assert.Equal(t, []string{"a.example", "b.example"}, result.Config.Allowlist)
	assert.Equal(t, 5*time.Second, result.Config.Timeout.Std())
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Setenv("GOSCRAMBLE_HONEYPOT", "maybe")

	opts := baseOpts(t.TempDir())
	opts.IgnoreEnv = false

	_, err := Load(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOSCRAMBLE_HONEYPOT")
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, tmpDir, ".goscramble.yml", `listen: ""`)

	_, err := Load(context.Background(), baseOpts(tmpDir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, tmpDir, ".goscramble.yml", `listen: [`)

	_, err := Load(context.Background(), baseOpts(tmpDir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project config")
}

func TestFindProjectConfig_SearchesUpward(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := writeFile(t, tmpDir, ".goscramble.yml", `listen: ":9000"`)

	nested := filepath.Join(tmpDir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindProjectConfig(context.Background(), nested)
	require.NoError(t, err)
	assert.Equal(t, configPath, found)
}

func TestFindProjectConfig_StopsAtVCSRoot(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, tmpDir, ".goscramble.yml", `listen: ":9000"`)

	// The nested directory is its own repository; the search must not
	// escape it.
	nested := filepath.Join(tmpDir, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(nested, ".git"), 0o755))

	found, err := FindProjectConfig(context.Background(), nested)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestMerge(t *testing.T) {
	t.Parallel()

	base := config.NewConfig()
	override := &config.Config{
		Listen:    ":1234",
		Allowlist: []string{"x.example"},
		Honeypot:  true,
	}

	merged := merge(base, override)

	assert.Equal(t, ":1234", merged.Listen)
	assert.Equal(t, []string{"x.example"}, merged.Allowlist)
	assert.True(t, merged.Honeypot)
	// Untouched fields keep base values.
	assert.Equal(t, base.Timeout, merged.Timeout)
	assert.True(t, merged.SuppressScripts)
}

func TestListEnvVars_CoversMappings(t *testing.T) {
	t.Parallel()

	docs := ListEnvVars()
	for suffix := range envMappings {
		assert.Contains(t, docs, envVarPrefix+suffix)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
