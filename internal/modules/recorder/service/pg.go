package service

import (
	"context"

	"upbit_bot/internal/models"
	"upbit_bot/pkg/db"

	"github.com/oklog/ulid/v2"
)

const createTradesTable = `
CREATE TABLE IF NOT EXISTS trades (
	id             TEXT PRIMARY KEY,
	symbol         TEXT NOT NULL,
	entry_time     TIMESTAMPTZ NOT NULL,
	exit_time      TIMESTAMPTZ NOT NULL,
	entry_price    DOUBLE PRECISION NOT NULL,
	exit_price     DOUBLE PRECISION NOT NULL,
	quantity       DOUBLE PRECISION NOT NULL,
	profit         DOUBLE PRECISION NOT NULL,
	profit_percent DOUBLE PRECISION NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertTrade = `
INSERT INTO trades
	(id, symbol, entry_time, exit_time, entry_price, exit_price, quantity, profit, profit_percent)
VALUES
	($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// PgRecorder пишет сделки в postgres. Схему поднимает сам на старте,
// миграций у нас нет.
type PgRecorder struct {
	txm *db.PgTxManager
}

func NewPgRecorder(ctx context.Context, txm *db.PgTxManager) (*PgRecorder, error) {
	r := &PgRecorder{txm: txm}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *PgRecorder) ensureSchema(ctx context.Context) error {
	return r.txm.RunMaster(ctx, func(ctx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctx, createTradesTable)
		return err
	})
}

func (r *PgRecorder) Append(ctx context.Context, rec models.TradeRecord) error {
	return r.txm.RunMaster(ctx, func(ctx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctx, insertTrade,
			ulid.Make().String(),
			rec.Symbol,
			rec.EntryTime,
			rec.ExitTime,
			rec.EntryPrice,
			rec.ExitPrice,
			rec.Quantity,
			rec.Profit,
			rec.ProfitPercent,
		)
		return err
	})
}

func (r *PgRecorder) Close() error {
	r.txm.Close()
	return nil
}
