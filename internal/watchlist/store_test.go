package watchlist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockReporter/internal/logging"
)

func quietLogger() logrus.FieldLogger {
	return logging.Discard()
}

func TestValidSymbol(t *testing.T) {
	for _, s := range []string{"600519", "000001", "300750"} {
		assert.True(t, ValidSymbol(s), s)
	}
	for _, s := range []string{"", "60051", "6005190", "60051a", " 600519", "６００５１９", "/list"} {
		assert.False(t, ValidSymbol(s), s)
	}
}

func TestStore_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitored_stocks.json")
	s := NewStore(path, quietLogger())

	assert.Empty(t, s.List())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "constructor must not create the file")
}

func TestStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitored_stocks.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewStore(path, quietLogger())
	assert.Empty(t, s.List())
}

func TestStore_AddIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitored_stocks.json")
	s := NewStore(path, quietLogger())

	added, err := s.Add("600519")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Add("600519")
	require.NoError(t, err)
	assert.False(t, added)

	added, err = s.Add("000001")
	require.NoError(t, err)
	assert.True(t, added)

	assert.Equal(t, []string{"600519", "000001"}, s.List())

	onDisk, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"600519", "000001"}, onDisk)
}

func TestStore_InvalidSymbolLeavesStateAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitored_stocks.json")
	s := NewStore(path, quietLogger())

	_, err := s.Add("abc")
	assert.ErrorIs(t, err, ErrInvalidSymbol)
	_, err = s.Remove("12345")
	assert.ErrorIs(t, err, ErrInvalidSymbol)

	assert.Empty(t, s.List())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStore_RemoveAbsentDoesNotRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitored_stocks.json")
	require.NoError(t, SaveFile(path, []string{"600519"}))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	s := NewStore(path, quietLogger())
	removed, err := s.Remove("000001")
	require.NoError(t, err)
	assert.False(t, removed)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old), "file must not be rewritten")
}

func TestStore_Remove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitored_stocks.json")
	require.NoError(t, SaveFile(path, []string{"600519", "000001", "300750"}))

	s := NewStore(path, quietLogger())
	removed, err := s.Remove("000001")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"600519", "300750"}, s.List())

	onDisk, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"600519", "300750"}, onDisk)
}

func TestStore_SaveReplacesWholeList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitored_stocks.json")
	require.NoError(t, SaveFile(path, []string{"600519", "000001"}))
	s := NewStore(path, quietLogger())

	input := []string{"300750", "510300"}
	require.NoError(t, s.Save(input))
	input[0] = "999999"

	assert.Equal(t, []string{"300750", "510300"}, s.List())
	onDisk, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"300750", "510300"}, onDisk)

	require.NoError(t, s.Save(nil))
	assert.Empty(t, s.List())
	onDisk, err = LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, onDisk)
}

func TestStore_ReloadPicksUpExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitored_stocks.json")
	s := NewStore(path, quietLogger())
	_, err := s.Add("600519")
	require.NoError(t, err)

	require.NoError(t, SaveFile(path, []string{"000001"}))
	assert.Equal(t, []string{"000001"}, s.Reload())
	assert.Equal(t, []string{"000001"}, s.List())
}

func TestStore_ReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitored_stocks.json")
	s := NewStore(path, quietLogger())
	_, err := s.Add("600519")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[broken"), 0o644))
	assert.Equal(t, []string{"600519"}, s.Reload())
}

func TestStore_ListReturnsCopy(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "w.json"), quietLogger())
	_, err := s.Add("600519")
	require.NoError(t, err)

	list := s.List()
	list[0] = "999999"
	assert.Equal(t, []string{"600519"}, s.List())
}
