package models

import "time"

// Position — единственная открытая позиция бота. nil == flat.
// Создаётся целиком на подтверждённой покупке, уничтожается целиком
// на продаже; частичных позиций не бывает.
type Position struct {
	EntryPrice float64
	Quantity   float64
	EntryTime  time.Time
}
