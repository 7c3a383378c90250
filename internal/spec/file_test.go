package spec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap_DecodesCategoryKeys(t *testing.T) {
	t.Parallel()

	s, err := FromMap(map[string]any{
		"x_ud": 1, "y_ud": 2, "x_uc": 3, "y_uc": 4,
		"x_ld": 5, "y_ld": 6, "x_lc": 7, "y_lc": 8,
		"G_ud": 9, "g_ld": 10, "G_uc": 11, "g_lc": 12, "g_g": 13,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.XUD)
	assert.Equal(t, 8, s.YLC)
	assert.Equal(t, 9, s.GUD)
	assert.Equal(t, 13, s.GG)
}

func TestFromMap_IgnoresAnnotationKeys(t *testing.T) {
	t.Parallel()

	s, err := FromMap(map[string]any{
		"x_ud":   4,
		"RO_Obj": -12.5,
		"RF_Obj": -3.25,
		"Gap":    9.25,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, s.XUD)
}

func TestLoadFile_JSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "spec.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"x_uc": 20, "g_g": 20}`), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 20, s.XUC)
	assert.Equal(t, 20, s.GG)
	assert.Equal(t, 0, s.XLD)
}

func TestLoadFile_YAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("x_ud: 3\nx_ld: 2\nG_ud: 1\n"), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, s.XUD)
	assert.Equal(t, 2, s.XLD)
	assert.Equal(t, 1, s.GUD)
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
