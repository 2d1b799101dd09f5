package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/LoadPlan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadPreferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs", "clients.yaml")

	table := model.DefaultPreferences()
	require.NoError(t, SavePreferences(path, table))

	loaded, err := LoadPreferences(path)
	require.NoError(t, err)
	assert.Equal(t, table, loaded)
}

func TestLoadPreferences_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.yaml")
	data := `clients:
  6765:
    lado: driver
    positions: [front]
  2925:
    compartments: [malhal]
    positions: [back]
  5540:
    lado: helper
    lay_down: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	table, err := LoadPreferences(path)
	require.NoError(t, err)
	require.Len(t, table, 3)

	p, ok := table.Lookup("6765")
	require.True(t, ok)
	assert.Equal(t, model.LadoDriver, p.Lado)
	assert.Equal(t, []model.Position{model.PositionFront}, p.Positions)

	p, ok = table.Lookup("2925")
	require.True(t, ok)
	assert.Equal(t, []string{"malhal"}, p.Compartments)

	p, ok = table.Lookup("5540")
	require.True(t, ok)
	assert.True(t, p.LayDown)
	assert.Equal(t, model.LadoHelper, p.Lado)
}

func TestLoadPreferences_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad lado", "clients:\n  1:\n    lado: left\n"},
		{"bad position", "clients:\n  1:\n    positions: [middle]\n"},
		{"not yaml", "clients: [\n"},
		{"non numeric id", "clients:\n  abc:\n    lado: driver\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "clients.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0644))
			_, err := LoadPreferences(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadPreferences_EmptyPathIsBuiltIn(t *testing.T) {
	table, err := LoadPreferences("")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPreferences(), table)
}

func TestLoadPreferences_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.yaml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))

	table, err := LoadPreferences(path)
	require.NoError(t, err)
	assert.Empty(t, table)
	_, ok := table.Lookup("6765")
	assert.False(t, ok, "an empty file disables every preference")
}

func TestLoadPreferences_Missing(t *testing.T) {
	_, err := LoadPreferences(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
