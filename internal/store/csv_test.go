package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportCSV_WithSymbolColumn(t *testing.T) {
	path := writeTempCSV(t, `Symbol,Date,Open,High,Low,Close,Volume
RELIANCE,2025-01-06,100,102,99,101,500000
RELIANCE,2025-01-07,101,104,100,103,600000
INFY,2025-01-06,1500,1520,1490,1510,200000
`)

	ms := NewMemoryStore()
	count, err := ImportCSV(context.Background(), ms, path, "")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	symbols, err := ms.Symbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"INFY", "RELIANCE"}, symbols)

	candles, err := ms.GetCandles(context.Background(), "RELIANCE", date(1), date(31))
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 103.0, candles[1].Close)
}

func TestImportCSV_FallbackSymbol(t *testing.T) {
	path := writeTempCSV(t, `Date,Open,High,Low,Close,Volume
2025-01-06,100,102,99,101,500000
`)

	ms := NewMemoryStore()
	count, err := ImportCSV(context.Background(), ms, path, "TCS")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	candles, err := ms.GetCandles(context.Background(), "TCS", date(1), date(31))
	require.NoError(t, err)
	require.Len(t, candles, 1)
}

func TestImportCSV_MissingSymbolFails(t *testing.T) {
	path := writeTempCSV(t, `Date,Open,High,Low,Close,Volume
2025-01-06,100,102,99,101,500000
`)

	ms := NewMemoryStore()
	_, err := ImportCSV(context.Background(), ms, path, "")
	require.Error(t, err)
}

func TestImportCSV_BadDateFails(t *testing.T) {
	path := writeTempCSV(t, `Symbol,Date,Open,High,Low,Close,Volume
RELIANCE,06/01/2025,100,102,99,101,500000
`)

	ms := NewMemoryStore()
	_, err := ImportCSV(context.Background(), ms, path, "")
	require.Error(t, err)
}

func TestImportCSV_MissingFileFails(t *testing.T) {
	ms := NewMemoryStore()
	_, err := ImportCSV(context.Background(), ms, "/nonexistent/candles.csv", "")
	require.Error(t, err)
}
