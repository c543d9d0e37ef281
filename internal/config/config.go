package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env              string                  `env:"ENV,default=local"`
	Logger           LoggerConfig            `env:",prefix=LOGGER_"`
	Observability    ObservabilityHTTPConfig `env:",prefix=OBSERVABILITY_"`
	ShutdownDuration time.Duration           `env:"SHUTDOWN_DURATION,default=30s"`
	DB               SQLiteConfig            `env:",prefix=DB_"`
	Telegram         TelegramConfig          `env:",prefix=TELEGRAM_"`
	Shop             ShopConfig              `env:",prefix=SHOP_"`
	Workers          WorkersConfig           `env:",prefix=WORKERS_"`
}

type TelegramConfig struct {
	BotToken string        `env:"BOT_TOKEN,required"`
	Timeout  time.Duration `env:"TIMEOUT,default=30s"`
	AdminID  int64         `env:"ADMIN_ID,required"`
	RateRPS  float64       `env:"RATE_LIMIT_RPS,default=30"`
}

// ShopConfig holds the static commerce settings. Amounts are kept as text and
// parsed into decimals at setup so no precision is lost on the way in.
type ShopConfig struct {
	MinimumDeposit   string            `env:"MINIMUM_DEPOSIT,default=10"`
	PaymentAddresses map[string]string `env:"PAYMENT_ADDRESSES,default=BTC:YOUR_BTC_ADDRESS,USDT:YOUR_USDT_ADDRESS,ETH:YOUR_ETH_ADDRESS,BNB:YOUR_BNB_ADDRESS"`
	DepositPresets   []string          `env:"DEPOSIT_PRESETS,default=10,20,50,100,150,200,300,500"`
	CatalogPath      string            `env:"CATALOG_PATH"`
	Language         string            `env:"LANGUAGE,default=en"`
	DispatchShards   int               `env:"DISPATCH_SHARDS,default=16"`
}

type WorkersConfig struct {
	PendingDepositsSchedule string        `env:"PENDING_DEPOSITS_SCHEDULE,default=0 * * * *"`
	PendingDepositsMinAge   time.Duration `env:"PENDING_DEPOSITS_MIN_AGE,default=30m"`
}

type LoggerConfig struct {
	Level string `env:"LEVEL,default=debug"`
}

type ObservabilityHTTPConfig struct {
	Host         string        `env:"HOST,default=127.0.0.1"`
	Port         uint16        `env:"PORT,default=8383"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=1m"`
}

func (a ObservabilityHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

type SQLiteConfig struct {
	Path         string `env:"PATH,default=./data/smm.db"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS,default=8"`
	MaxIdleConns int    `env:"MAX_IDLE_CONNS,default=4"`
	MaxLifetime  string `env:"MAX_LIFETIME,default=5m"`
	BusyTimeout  int    `env:"BUSY_TIMEOUT_MS,default=5000"`
}
