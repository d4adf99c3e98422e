package service

// Params — параметры стратегии из yaml как есть, без схемы.
// Чего нет в конфиге — берём дефолт стратегии.
type Params map[string]float64

func (p Params) Float(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

func (p Params) Int(key string, def int) int {
	if v, ok := p[key]; ok {
		return int(v)
	}
	return def
}
