package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Token string `yaml:"token"`
}

func (s *sample) Validate() error {
	if s.Port == 0 {
		return errors.New("port is required")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("PINFALL_TEST_TOKEN", "s3cret")
	p := writeConfig(t, "name: ${PINFALL_TEST_NAME:-pinfall}\nport: 8080\ntoken: ${PINFALL_TEST_TOKEN}\n")

	var cfg sample
	require.NoError(t, Load(p, &cfg))
	assert.Equal(t, sample{Name: "pinfall", Port: 8080, Token: "s3cret"}, cfg)
}

func TestLoad_Validates(t *testing.T) {
	p := writeConfig(t, "name: x\n")
	var cfg sample
	err := Load(p, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port is required")
}

func TestLoad_ParseError(t *testing.T) {
	p := writeConfig(t, "port: [\n")
	var cfg sample
	assert.Error(t, Load(p, &cfg))
}

func TestLoadOptional(t *testing.T) {
	cfg := sample{Port: 3000}
	found, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 3000, cfg.Port)

	p := writeConfig(t, "port: 9000\n")
	found, err = LoadOptional(p, &cfg)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 9000, cfg.Port)
}

func TestExpand(t *testing.T) {
	t.Setenv("PINFALL_SET", "value")
	t.Setenv("PINFALL_EMPTY", "")

	assert.Equal(t, "value", Expand("${PINFALL_SET:-other}"))
	assert.Equal(t, "other", Expand("${PINFALL_EMPTY:-other}"))
	assert.Equal(t, "", Expand("${PINFALL_EMPTY}"))
	assert.Equal(t, "a-value-b", Expand("a-$PINFALL_SET-b"))
}
