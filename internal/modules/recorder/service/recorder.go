package service

import (
	"context"

	"upbit_bot/internal/models"
)

// Recorder — журнал закрытых сделок. Append зовётся до очистки позиции:
// не записали сделку — позиция остаётся, продажа повторится следующим тиком.
type Recorder interface {
	Append(ctx context.Context, rec models.TradeRecord) error
	Close() error
}
