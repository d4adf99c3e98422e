package models

import "time"

// TradeRecord — итог одного round trip (покупка + продажа).
// Неизменяемый, пишется в журнал ровно один раз за закрытие.
type TradeRecord struct {
	EntryTime     time.Time
	ExitTime      time.Time
	Symbol        string
	EntryPrice    float64
	ExitPrice     float64
	Quantity      float64
	Profit        float64 // в котируемой валюте
	ProfitPercent float64 // от бюджета сделки
}
