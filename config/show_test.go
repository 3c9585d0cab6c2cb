package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const showYAML = `
name: test show
vector:
  position: 0
  velocity: 1
cues:
  - key: intro
    low: 0
    high: 10
    text: "hello"
    color: "#FF0000"
    fixture: left_par
    intensity: 0.8
  - low: 12
    high: 12
    text: "flash"
`

func writeShow(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "show.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadShow(t *testing.T) {
	t.Parallel()

	show, err := LoadShow(writeShow(t, showYAML))
	require.NoError(t, err)

	assert.Equal(t, "test show", show.Name)
	assert.Equal(t, 1.0, show.Vector.Velocity)
	require.Len(t, show.Cues, 2)
	assert.Equal(t, "intro", show.Cues[0].Key)

	// cues without a key get a generated one
	assert.NotEmpty(t, show.Cues[1].Key)
}

func TestLoadShowMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadShow(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestShowBatch(t *testing.T) {
	t.Parallel()

	show, err := LoadShow(writeShow(t, showYAML))
	require.NoError(t, err)

	batch, err := show.Batch()
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "intro", batch[0].Key)
	assert.Equal(t, 10.0, batch[0].Interval.High)
	assert.Equal(t, "hello", batch[0].Data.Text)
	assert.True(t, batch[1].Interval.IsSingular())
}

func TestShowBatchRejectsBadCue(t *testing.T) {
	t.Parallel()

	show := &Show{Cues: []ShowCue{{Key: "bad", Low: 9, High: 3}}}
	_, err := show.Batch()
	require.Error(t, err)
}
