package models

type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Order — результат размещения маркет-ордера. AvgPrice/FilledQty равны
// нулю, если биржа их (ещё) не сообщила — вызывающий обязан иметь fallback.
type Order struct {
	ID        string
	Symbol    string
	Side      OrderSide
	AvgPrice  float64
	FilledQty float64
}
