package dataset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/sharechart/pkg/dataset"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadFile_YAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "override.yaml", `
Brazil:
  2025:
    labels: [Samsung, Motorola]
    values: [38, 22.5]
`)

	p, err := dataset.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, dataset.Snapshot{Labels: []string{"Samsung", "Motorola"}, Values: []float64{38, 22.5}}, p["Brazil"][2025])
}

func TestLoadFile_JSON(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "override.json", `{"USA":{"2026":{"labels":["A"],"values":[1]}}}`)

	p, err := dataset.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"USA"}, p.Countries())
}

func TestLoadFile_YAMLMismatch(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "bad.yml", `
USA:
  2025:
    labels: [A, B]
    values: [1]
`)

	_, err := dataset.LoadFile(path)
	require.ErrorIs(t, err, dataset.ErrInvalidPayload)
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := dataset.LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
