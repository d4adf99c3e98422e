package service

// Сырые ответы Upbit. В ордерах числа приходят строками,
// в тикерах и свечах числами. Так у них в API, не трогать.

type marketItem struct {
	Market      string `json:"market"`
	KoreanName  string `json:"korean_name"`
	EnglishName string `json:"english_name"`
}

type tickerItem struct {
	Market      string  `json:"market"`
	TradePrice  float64 `json:"trade_price"`
	TimestampMs int64   `json:"timestamp"`
}

type candleItem struct {
	Market      string  `json:"market"`
	DateTimeUTC string  `json:"candle_date_time_utc"`
	Opening     float64 `json:"opening_price"`
	High        float64 `json:"high_price"`
	Low         float64 `json:"low_price"`
	Trade       float64 `json:"trade_price"`
	AccVolume   float64 `json:"candle_acc_trade_volume"`
}

type orderResp struct {
	UUID   string       `json:"uuid"`
	Side   string       `json:"side"`
	State  string       `json:"state"`
	Market string       `json:"market"`
	Trades []orderTrade `json:"trades"`
}

type orderTrade struct {
	Price  string `json:"price"`
	Volume string `json:"volume"`
	Funds  string `json:"funds"`
}

type apiError struct {
	Error struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

// кадр WS-стрима тикеров
type wsTickerFrame struct {
	Type       string  `json:"type"`
	Code       string  `json:"code"`
	TradePrice float64 `json:"trade_price"`
	Status     string  `json:"status"` // ответ на PING
}
