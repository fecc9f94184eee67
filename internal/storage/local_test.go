package storage

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndReadBack(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), 1, nil)
	require.NoError(t, err)

	name, err := s.Save([]byte("%PDF-1.4 fake"), "My Invoice (final).pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "_My_Invoice_final_.pdf"), "got %q", name)

	data, err := os.ReadFile(s.Path(name))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
}

func TestSaveUniqueNames(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), 1, nil)
	require.NoError(t, err)

	a, err := s.Save([]byte("one"), "doc.pdf")
	require.NoError(t, err)
	b, err := s.Save([]byte("two"), "doc.pdf")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSaveRejectsOversizeAndEmpty(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), 1, nil)
	require.NoError(t, err)

	_, err = s.Save(make([]byte, 2*1024*1024), "big.pdf")
	assert.Error(t, err)

	_, err = s.Save(nil, "empty.pdf")
	assert.Error(t, err)
}

func TestPathIgnoresTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, 1, nil)
	require.NoError(t, err)

	p := s.Path("../../etc/passwd")
	assert.True(t, strings.HasPrefix(p, dir), "got %q", p)
}

func TestDelete(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), 1, nil)
	require.NoError(t, err)

	name, err := s.Save([]byte("x"), "doc.pdf")
	require.NoError(t, err)
	require.NoError(t, s.Delete(name))
	_, err = os.Stat(s.Path(name))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete("never-existed.pdf"), "deleting a missing file is not an error")
}
