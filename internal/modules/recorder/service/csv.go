package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"upbit_bot/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

var csvHeader = []string{
	"entry_time", "exit_time", "symbol",
	"entry_price", "exit_price", "quantity",
	"profit_absolute", "profit_percent",
}

// CSVRecorder держит файл открытым на append всю жизнь процесса.
// Заголовок пишется только в новый пустой файл, каждая запись
// сбрасывается на диск сразу.
type CSVRecorder struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

func NewCSVRecorder(path string) (*CSVRecorder, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}

	st, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat journal %s: %w", path, err)
	}

	r := &CSVRecorder{
		file: file,
		w:    csv.NewWriter(file),
	}

	if st.Size() == 0 {
		if err := r.writeRow(csvHeader); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	return r, nil
}

func (r *CSVRecorder) Append(_ context.Context, rec models.TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writeRow([]string{
		rec.EntryTime.Format(timeLayout),
		rec.ExitTime.Format(timeLayout),
		rec.Symbol,
		strconv.FormatFloat(rec.EntryPrice, 'f', -1, 64),
		strconv.FormatFloat(rec.ExitPrice, 'f', -1, 64),
		strconv.FormatFloat(rec.Quantity, 'f', 8, 64),
		strconv.FormatFloat(rec.Profit, 'f', 2, 64),
		strconv.FormatFloat(rec.ProfitPercent, 'f', 2, 64),
	})
}

func (r *CSVRecorder) writeRow(row []string) error {
	if err := r.w.Write(row); err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return fmt.Errorf("flush journal: %w", err)
	}
	return nil
}

func (r *CSVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.w.Flush()
	return r.file.Close()
}
