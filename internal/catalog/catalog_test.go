package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	missions := Default()
	require.Len(t, missions, 3)
	for i, m := range missions {
		assert.Equal(t, i+1, m.OrderIndex)
		assert.NotEmpty(t, m.Title)
		assert.NotEmpty(t, m.Description)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `missions:
  - id: 10
    order_index: 2
    title: "Second"
    description: "b"
  - id: 9
    order_index: 1
    title: "First"
    description: "a"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	missions, err := Load(path)
	require.NoError(t, err)
	require.Len(t, missions, 2)
	assert.Equal(t, int64(9), missions[0].ID, "catalog is sorted by order index")
	assert.Equal(t, int64(10), missions[1].ID)
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	missions, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), missions)
}

func TestLoadRejectsDuplicateOrderIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `missions:
  - id: 1
    order_index: 1
    title: "a"
  - id: 2
    order_index: 1
    title: "b"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "duplicate order index")
}

func TestLoadRejectsEmptyCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("missions: []"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "no missions")
}

func TestLoadRejectsZeroOrderIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `missions:
  - id: 1
    order_index: 0
    title: "a"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "not 1-based")
}
