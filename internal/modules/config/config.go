package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_BOT_TOKEN"
	chatIDTelegramENV = "TELEGRAM_CHAT_ID"
	databaseDSNENV    = "DATABASE_DSN"
)

// Duration — обёртка, чтобы в yaml писать "5s", а не наносекунды числом.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("bad duration %q: %w", raw, err)
	}

	*d = Duration(parsed)
	return nil
}

// Config ...
type Config struct {
	Exchange struct {
		Name string `yaml:"name"`
		// Ключи обычно приходят из env <NAME>_ACCESS_KEY / <NAME>_SECRET_KEY,
		// yaml-поля оставлены для локальных запусков.
		AccessKey      string `yaml:"access_key"`
		SecretKey      string `yaml:"secret_key"`
		UsePriceStream bool   `yaml:"use_price_stream"`
	} `yaml:"exchange"`

	Symbol       string  `yaml:"symbol"`
	Budget       float64 `yaml:"budget"` // в котируемой валюте, на одну сделку
	SafetyFactor float64 `yaml:"safety_factor"`
	ResetHour    int     `yaml:"reset_hour"` // час локального времени, начало торгового дня

	Strategy struct {
		Name      string             `yaml:"name"`
		Timeframe string             `yaml:"timeframe"`
		Params    map[string]float64 `yaml:"params"`
	} `yaml:"strategy"`

	// 0 = стратегия сама выбирает период опроса.
	PollInterval Duration `yaml:"poll_interval"`

	Recorder struct {
		Type    string `yaml:"type"` // csv | postgres
		CSVPath string `yaml:"csv_path"`
		DBDSN   string `yaml:"db_dsn"`
	} `yaml:"recorder"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	LogFile string `yaml:"log_file"`

	Tracing struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
	} `yaml:"tracing"`
}

func NewConfig() (*Config, error) {
	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		Symbol:       getenvDefault("SYMBOL", "BTC/KRW"),
		Budget:       floatFromEnv("BUDGET", 5000),
		SafetyFactor: floatFromEnv("SAFETY_FACTOR", 0.9995),
		ResetHour:    intFromEnv("RESET_HOUR", 9),
		PollInterval: Duration(durationFromEnv("POLL_INTERVAL", "0s")),
		LogFile:      getenvDefault("LOG_FILE", "bot.log"),
	}
	config.Exchange.Name = getenvDefault("EXCHANGE", "upbit")
	config.Exchange.UsePriceStream = boolFromEnv("USE_PRICE_STREAM", true)
	config.Strategy.Name = getenvDefault("STRATEGY", "VolatilityBreakout")
	// пустой таймфрейм = дефолт самой стратегии
	config.Strategy.Timeframe = getenvDefault("TIMEFRAME", "")
	config.Recorder.Type = getenvDefault("RECORDER_TYPE", "csv")
	config.Recorder.CSVPath = getenvDefault("CSV_PATH", "trade_log.csv")
	config.Tracing.Host = "localhost"
	config.Tracing.Port = 6831

	err = decoder.Decode(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	// Секреты из env всегда сильнее yaml.
	exchangeENV := strings.ToUpper(config.Exchange.Name)
	if v := os.Getenv(exchangeENV + "_ACCESS_KEY"); v != "" {
		config.Exchange.AccessKey = v
	}
	if v := os.Getenv(exchangeENV + "_SECRET_KEY"); v != "" {
		config.Exchange.SecretKey = v
	}

	if token := os.Getenv(tokenTelegramENV); token != "" {
		config.Telegram.Token = token
	}
	if v := os.Getenv(chatIDTelegramENV); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Telegram.ChatID = n
		}
	}
	if dsn := os.Getenv(databaseDSNENV); dsn != "" {
		config.Recorder.DBDSN = dsn
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if strings.Count(c.Symbol, "/") != 1 {
		return fmt.Errorf("symbol must look like BASE/QUOTE, got %q", c.Symbol)
	}
	if c.Budget <= 0 {
		return fmt.Errorf("budget must be positive, got %v", c.Budget)
	}
	if c.SafetyFactor <= 0 || c.SafetyFactor > 1 {
		return fmt.Errorf("safety_factor must be in (0, 1], got %v", c.SafetyFactor)
	}
	if c.ResetHour < 0 || c.ResetHour > 23 {
		return fmt.Errorf("reset_hour must be in [0, 23], got %d", c.ResetHour)
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("poll_interval must not be negative")
	}
	return nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "1" || v == "true" || v == "TRUE" {
			return true
		}
		if v == "0" || v == "false" || v == "FALSE" {
			return false
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
