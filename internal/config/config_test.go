package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/lore/internal/lesson"
)

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "lore.yml")

	// Write valid config
	validConfig := `version: "1"
lint:
  ignore:
    - "**/draft-*"
serve:
  addr: ":9090"
lab:
  network: my-labs
  port_range: [20000, 20099]
`
	err := os.WriteFile(configPath, []byte(validConfig), 0644)
	require.NoError(t, err)

	// Load and validate
	config, err := Load(configPath)
	require.NoError(t, err)
	assert.NotNil(t, config)
	assert.Equal(t, "1", config.Version)
	assert.Equal(t, []string{"**/draft-*"}, config.Lint.Ignore)
	assert.Equal(t, ":9090", config.Serve.Addr)
	assert.Equal(t, "my-labs", config.Lab.Network)
	assert.Equal(t, [2]int{20000, 20099}, config.Lab.PortRange)
	assert.Equal(t, tmpDir, config.Root)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "lore.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("version: \"1\"\n"), 0644))

	config, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"basic", "intermediate", "advanced", "real-world"}, config.Levels)
	assert.Equal(t, DefaultServeAddr, config.Serve.Addr)
	assert.Equal(t, DefaultLabNetwork, config.Lab.Network)
	assert.Equal(t, [2]int{DefaultPortRangeLo, DefaultPortRangeHi}, config.Lab.PortRange)
	assert.False(t, config.Lint.Strict)
}

func TestLoad_FileNotFound(t *testing.T) {
	config, err := Load("/nonexistent/lore.yml")
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "lore.yml")

	// Write invalid YAML
	invalidYAML := `version: "1"
lint:
  - this is invalid
    yaml syntax
`
	err := os.WriteFile(configPath, []byte(invalidYAML), 0644)
	require.NoError(t, err)

	config, err := Load(configPath)
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidate_Version(t *testing.T) {
	testCases := []struct {
		name    string
		version string
		wantErr bool
	}{
		{name: "supported version", version: "1", wantErr: false},
		{name: "unsupported version", version: "2", wantErr: true},
		{name: "empty version", version: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Config{Version: tc.version}
			err := c.Validate()
			if tc.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "unsupported version")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_Levels(t *testing.T) {
	c := &Config{Version: "1", Levels: []string{"advanced", "basic"}}
	require.NoError(t, c.Validate())
	assert.Equal(t, []lesson.Level{lesson.LevelAdvanced, lesson.LevelBasic}, c.LevelDirs())

	c = &Config{Version: "1", Levels: []string{"basic", "expert"}}
	err := c.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid level 'expert'")

	c = &Config{Version: "1", Levels: []string{"basic", "basic"}}
	err = c.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate level")
}

func TestValidate_PortRange(t *testing.T) {
	testCases := []struct {
		name      string
		portRange [2]int
		wantErr   bool
	}{
		{name: "valid range", portRange: [2]int{15400, 15499}, wantErr: false},
		{name: "single port", portRange: [2]int{15400, 15400}, wantErr: false},
		{name: "descending range", portRange: [2]int{15499, 15400}, wantErr: true},
		{name: "privileged port", portRange: [2]int{80, 90}, wantErr: true},
		{name: "beyond max port", portRange: [2]int{65000, 70000}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Config{Version: "1", Lab: LabConfig{PortRange: tc.portRange}}
			err := c.Validate()
			if tc.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid lab.port_range")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLocate_WalksUpToRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "lore.yml"), []byte("version: \"1\"\n"), 0644))

	nested := filepath.Join(root, "basic", "crashloop-backoff")
	require.NoError(t, os.MkdirAll(nested, 0755))

	config, err := Locate(nested)
	require.NoError(t, err)
	assert.Equal(t, root, config.Root)
}

func TestLocate_NotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := Locate(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no lore.yml found")
}
