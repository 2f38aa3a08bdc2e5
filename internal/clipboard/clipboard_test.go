package clipboard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rimgik/clipper/internal/proto"
)

func TestMemorySourceSink(t *testing.T) {
	m := NewMemory()

	p, err := m.Current()
	require.NoError(t, err)
	assert.Nil(t, p)

	m.Set(proto.TextPayload("copied"))
	p, err = m.Current()
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "copied", p.Text)

	require.NoError(t, m.Apply(proto.TextPayload("pushed")))
	applied := m.Applied()
	require.Len(t, applied, 1)
	assert.Equal(t, "pushed", applied[0].Text)

	p, err = m.Current()
	require.NoError(t, err)
	assert.Equal(t, "pushed", p.Text)
}

func TestSystemApplyWritesFileToDownloadDir(t *testing.T) {
	dir := t.TempDir()
	s := NewSystem(dir)

	require.NoError(t, s.Apply(proto.FilePayload("notes.txt", []byte("hi"))))

	data, err := os.ReadFile(filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestSystemApplyStripsFilePathComponents(t *testing.T) {
	dir := t.TempDir()
	s := NewSystem(dir)

	require.NoError(t, s.Apply(proto.FilePayload("../../etc/passwd", []byte("x"))))

	_, err := os.Stat(filepath.Join(dir, "passwd"))
	assert.NoError(t, err)
}

func TestSystemApplyRejectsFolder(t *testing.T) {
	s := NewSystem(t.TempDir())
	err := s.Apply(&proto.Payload{Kind: proto.PayloadFolder})
	assert.ErrorIs(t, err, proto.ErrUnsupportedPayload)
}
