package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"signal_bot/pkg/logger"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDir         = "configs"
	defaultConfigFile = "values_local.yaml"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB      string `yaml:"db_dsn"`
	Service struct {
		Name       string `yaml:"name"`
		HealthAddr string `yaml:"health_addr"`
	} `yaml:"service"`

	Exchange struct {
		Name       string `yaml:"name"` // paper | okx | binance
		APIKey     string `yaml:"api_key"`
		APISecret  string `yaml:"api_secret"`
		Passphrase string `yaml:"passphrase"` // только okx
		Testnet    bool   `yaml:"testnet"`
		BaseURL    string `yaml:"base_url"`

		PaperBalance float64 `yaml:"paper_balance"`
	} `yaml:"exchange"`

	Trading struct {
		QuoteAsset             string  `yaml:"quote_asset"`
		MaxPositionSize        float64 `yaml:"max_position_size"`        // потолок на сделку в quote
		PositionSizePercentage float64 `yaml:"position_size_percentage"` // 10 => 10% баланса
		EnableStopLoss         bool    `yaml:"enable_stop_loss"`
		EnableTakeProfit       bool    `yaml:"enable_take_profit"`
	} `yaml:"trading"`

	Log logger.Config `yaml:"log"`

	Tracing struct {
		Host string `yaml:"host"` // пусто => трейсинг выключен
		Port int    `yaml:"port"`
	} `yaml:"tracing"`
}

func defaults() Config {
	var c Config
	c.Service.Name = "signal_bot"
	c.Service.HealthAddr = ":8080"
	c.Exchange.Name = "paper"
	c.Exchange.PaperBalance = 1000
	c.Trading.QuoteAsset = "USDT"
	c.Trading.MaxPositionSize = 100
	c.Trading.PositionSizePercentage = 10
	c.Trading.EnableStopLoss = true
	c.Trading.EnableTakeProfit = true
	c.Log.Level = "info"
	c.Tracing.Port = 6831
	return c
}

// NewConfig .env -> configs/$CONFIG_FILE -> переменные окружения.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	name := os.Getenv(configFilePathENV)
	if name == "" {
		name = defaultConfigFile
	}
	return Load(filepath.Join(configDir, name))
}

// Load файла может не быть: тогда дефолты + env. Битый файл это ошибка.
func Load(path string) (*Config, error) {
	config := defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, errors.Wrapf(err, "decode %s", path)
		}
	case os.IsNotExist(err):
		logger.Warn("config file %s not found, using defaults and env", path)
	default:
		return nil, errors.Wrapf(err, "read %s", path)
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyEnv() {
	c.Telegram.Token = getenvDefault("TELEGRAM_TOKEN", c.Telegram.Token)
	c.Telegram.ChatID = int64FromEnv("TELEGRAM_CHAT_ID", c.Telegram.ChatID)
	c.DB = getenvDefault("DATABASE_DSN", c.DB)

	c.Exchange.Name = getenvDefault("EXCHANGE_NAME", c.Exchange.Name)
	c.Exchange.APIKey = getenvDefault("EXCHANGE_API_KEY", c.Exchange.APIKey)
	c.Exchange.APISecret = getenvDefault("EXCHANGE_API_SECRET", c.Exchange.APISecret)
	c.Exchange.Passphrase = getenvDefault("EXCHANGE_PASSPHRASE", c.Exchange.Passphrase)
	c.Exchange.Testnet = boolFromEnv("USE_TESTNET", c.Exchange.Testnet)

	c.Trading.QuoteAsset = getenvDefault("DEFAULT_QUOTE_ASSET", c.Trading.QuoteAsset)
	c.Trading.MaxPositionSize = floatFromEnv("MAX_POSITION_SIZE", c.Trading.MaxPositionSize)
	c.Trading.PositionSizePercentage = floatFromEnv("POSITION_SIZE_PERCENTAGE", c.Trading.PositionSizePercentage)
	c.Trading.EnableStopLoss = boolFromEnv("ENABLE_STOP_LOSS", c.Trading.EnableStopLoss)
	c.Trading.EnableTakeProfit = boolFromEnv("ENABLE_TAKE_PROFIT", c.Trading.EnableTakeProfit)

	c.Log.Level = getenvDefault("LOG_LEVEL", c.Log.Level)
}

func (c *Config) Validate() error {
	t := c.Trading
	if t.PositionSizePercentage <= 0 || t.PositionSizePercentage > 100 {
		return errors.Errorf("trading.position_size_percentage must be in (0,100], got %v", t.PositionSizePercentage)
	}
	if t.MaxPositionSize <= 0 {
		return errors.Errorf("trading.max_position_size must be > 0, got %v", t.MaxPositionSize)
	}
	if strings.TrimSpace(t.QuoteAsset) == "" {
		return errors.New("trading.quote_asset is empty")
	}
	if strings.TrimSpace(c.Exchange.Name) == "" {
		return errors.New("exchange.name is empty")
	}
	c.Trading.QuoteAsset = strings.ToUpper(strings.TrimSpace(t.QuoteAsset))
	c.Exchange.Name = strings.ToLower(strings.TrimSpace(c.Exchange.Name))
	return nil
}

func int64FromEnv(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
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
