package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempYAML(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaultBundle(t *testing.T) {
	b := DefaultBundle()
	assert.Equal(t, "hybrid", b.Policy)
	assert.Equal(t, 10, b.RefreshTicks)
	assert.Equal(t, int64(42), b.Seed)
	assert.NoError(t, b.Validate())
}

func TestLoadBundle_ValidYAMLOverridesDefaults(t *testing.T) {
	path := writeTempYAML(t, "policy: static\nrefresh_ticks: 5\nseed: 99\n")
	b, err := LoadBundle(path)
	require.NoError(t, err)
	assert.Equal(t, "static", b.Policy)
	assert.Equal(t, 5, b.RefreshTicks)
	assert.Equal(t, int64(99), b.Seed)
}

func TestLoadBundle_PartialYAMLKeepsDefaultsForOmittedFields(t *testing.T) {
	path := writeTempYAML(t, "policy: dynamic\n")
	b, err := LoadBundle(path)
	require.NoError(t, err)
	assert.Equal(t, "dynamic", b.Policy)
	assert.Equal(t, 10, b.RefreshTicks, "omitted refresh_ticks keeps the default")
}

func TestLoadBundle_RejectsUnknownFields(t *testing.T) {
	path := writeTempYAML(t, "policy: static\ntypo_field: true\n")
	_, err := LoadBundle(path)
	assert.Error(t, err)
}

func TestLoadBundle_MissingFileReturnsError(t *testing.T) {
	_, err := LoadBundle(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBundle_ValidateRejectsUnknownPolicy(t *testing.T) {
	b := Bundle{Policy: "bogus", RefreshTicks: 10}
	assert.Error(t, b.Validate())
}

func TestBundle_ValidateRejectsNonPositiveRefreshTicks(t *testing.T) {
	b := Bundle{Policy: "static", RefreshTicks: 0}
	assert.Error(t, b.Validate())
}
