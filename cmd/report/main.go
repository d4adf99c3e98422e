package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"upbit_bot/internal/models"
	"upbit_bot/pkg/db"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Отчёт по журналу сделок: читает тот же конфиг, что и бот,
// и печатает сводку по csv-файлу либо таблице trades в postgres.

const timeLayout = "2006-01-02 15:04:05"

const selectTrades = `
SELECT symbol, entry_time, exit_time, entry_price, exit_price, quantity, profit, profit_percent
FROM trades
ORDER BY exit_time`

func main() {
	configName := os.Getenv("CONFIG_FILE")
	if configName == "" {
		configName = "values_local.yaml"
	}

	viper.SetConfigName(strings.TrimSuffix(configName, ".yaml"))
	viper.SetConfigType("yaml")
	viper.AddConfigPath("configs")
	if err := viper.ReadInConfig(); err != nil {
		fatal(errors.Wrap(err, "read config"))
	}

	viper.SetDefault("recorder.type", "csv")
	viper.SetDefault("recorder.csv_path", "trade_log.csv")

	dsn := viper.GetString("recorder.db_dsn")
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		dsn = v
	}

	var (
		records []models.TradeRecord
		err     error
	)
	switch viper.GetString("recorder.type") {
	case "csv":
		records, err = loadCSV(viper.GetString("recorder.csv_path"))
	case "postgres":
		records, err = loadPostgres(dsn)
	default:
		err = errors.Errorf("unknown recorder type %q", viper.GetString("recorder.type"))
	}
	if err != nil {
		fatal(err)
	}

	printReport(records)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "report:", err)
	os.Exit(1)
}

func loadCSV(path string) ([]models.TradeRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open journal")
	}
	defer file.Close()

	r := csv.NewReader(file)

	// заголовок
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read header")
	}

	var records []models.TradeRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read row")
		}
		if len(row) < 8 {
			continue
		}

		rec, err := parseRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRow(row []string) (models.TradeRecord, error) {
	entryTime, err := time.Parse(timeLayout, row[0])
	if err != nil {
		return models.TradeRecord{}, errors.Wrap(err, "parse entry_time")
	}
	exitTime, err := time.Parse(timeLayout, row[1])
	if err != nil {
		return models.TradeRecord{}, errors.Wrap(err, "parse exit_time")
	}

	nums := make([]float64, 5)
	for i, idx := range []int{3, 4, 5, 6, 7} {
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			return models.TradeRecord{}, errors.Wrapf(err, "parse column %d", idx)
		}
		nums[i] = v
	}

	return models.TradeRecord{
		EntryTime:     entryTime,
		ExitTime:      exitTime,
		Symbol:        row[2],
		EntryPrice:    nums[0],
		ExitPrice:     nums[1],
		Quantity:      nums[2],
		Profit:        nums[3],
		ProfitPercent: nums[4],
	}, nil
}

func loadPostgres(dsn string) ([]models.TradeRecord, error) {
	ctx := context.Background()

	pool, err := db.NewPool(ctx, db.PoolConfig{DSN: dsn})
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}
	txm := db.NewPgTxManager(pool)
	defer txm.Close()

	rows, err := txm.Conn().Query(ctx, selectTrades)
	if err != nil {
		return nil, errors.Wrap(err, "query trades")
	}
	defer rows.Close()

	var records []models.TradeRecord
	for rows.Next() {
		var rec models.TradeRecord
		if err := rows.Scan(
			&rec.Symbol,
			&rec.EntryTime,
			&rec.ExitTime,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.Quantity,
			&rec.Profit,
			&rec.ProfitPercent,
		); err != nil {
			return nil, errors.Wrap(err, "scan trade")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows")
	}

	return records, nil
}

func printReport(records []models.TradeRecord) {
	if len(records) == 0 {
		fmt.Println("Журнал пуст, сделок ещё не было.")
		return
	}

	var (
		wins, losses int
		gross        float64
		sumPct       float64
		best         = records[0]
		worst        = records[0]
	)

	for _, rec := range records {
		gross += rec.Profit
		sumPct += rec.ProfitPercent

		if rec.Profit > 0 {
			wins++
		} else if rec.Profit < 0 {
			losses++
		}
		if rec.ProfitPercent > best.ProfitPercent {
			best = rec
		}
		if rec.ProfitPercent < worst.ProfitPercent {
			worst = rec
		}
	}

	winRate := float64(wins) / float64(len(records)) * 100

	fmt.Printf("Сделок:         %d\n", len(records))
	fmt.Printf("Прибыльных:     %d (%.1f%%)\n", wins, winRate)
	fmt.Printf("Убыточных:      %d\n", losses)
	fmt.Printf("Суммарный P&L:  %.2f\n", gross)
	fmt.Printf("Средний %%:      %.2f%%\n", sumPct/float64(len(records)))
	fmt.Printf("Лучшая сделка:  %+.2f%% (%s)\n", best.ProfitPercent, best.ExitTime.Format(timeLayout))
	fmt.Printf("Худшая сделка:  %+.2f%% (%s)\n", worst.ProfitPercent, worst.ExitTime.Format(timeLayout))
}
