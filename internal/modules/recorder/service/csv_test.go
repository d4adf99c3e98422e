package service

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"upbit_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() models.TradeRecord {
	return models.TradeRecord{
		EntryTime:     time.Date(2024, time.May, 20, 9, 0, 1, 0, time.UTC),
		ExitTime:      time.Date(2024, time.May, 20, 17, 30, 0, 0, time.UTC),
		Symbol:        "BTC/KRW",
		EntryPrice:    95000000,
		ExitPrice:     96500000.5,
		Quantity:      0.05,
		Profit:        75000.5,
		ProfitPercent: 1.5,
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVRecorderWritesHeaderAndRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.csv")

	r, err := NewCSVRecorder(path)
	require.NoError(t, err)

	require.NoError(t, r.Append(context.Background(), sampleRecord()))
	require.NoError(t, r.Close())

	rows := readRows(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"2024-05-20 09:00:01",
		"2024-05-20 17:30:00",
		"BTC/KRW",
		"95000000",
		"96500000.5",
		"0.05000000",
		"75000.50",
		"1.50",
	}, rows[1])
}

func TestCSVRecorderReopenAppendsWithoutHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.csv")

	r, err := NewCSVRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.Append(context.Background(), sampleRecord()))
	require.NoError(t, r.Close())

	// рестарт процесса: файл уже с заголовком, второго не появляется
	r, err = NewCSVRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.Append(context.Background(), sampleRecord()))
	require.NoError(t, r.Close())

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.NotEqual(t, csvHeader, rows[1])
	assert.Equal(t, rows[1], rows[2])
}

func TestCSVRecorderFlushesEachAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.csv")

	r, err := NewCSVRecorder(path)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Append(context.Background(), sampleRecord()))

	// до Close: запись обязана быть на диске, иначе kill -9 теряет сделку
	rows := readRows(t, path)
	assert.Len(t, rows, 2)
}

func TestCSVRecorderOpenErrorSurfacesPath(t *testing.T) {
	_, err := NewCSVRecorder(filepath.Join(t.TempDir(), "no-such-dir", "journal.csv"))
	assert.ErrorContains(t, err, "open journal")
}
