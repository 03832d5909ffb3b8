package filestorage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStorage_SaveAndDelete(t *testing.T) {
	base := t.TempDir()
	s, err := NewLocalFileStorage(base)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC) }

	rel, err := s.Save(strings.NewReader("xlsx-bytes"), "Plantilla.XLSX", "imports")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "imports/2024/03/07/2024-03-07-"))
	assert.True(t, strings.HasSuffix(rel, ".xlsx"))

	raw, err := os.ReadFile(filepath.Join(base, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "xlsx-bytes", string(raw))

	require.NoError(t, s.Delete(rel))
	_, err = os.Stat(filepath.Join(base, filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(rel), "повторное удаление не ошибка")
}

func TestLocalFileStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalFileStorage(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete("../../etc/passwd"), ErrOutsideBase)

	_, err = s.Save(strings.NewReader("x"), "a.xlsx", "../outside")
	assert.ErrorIs(t, err, ErrOutsideBase)
}
