package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/kopilka/internal/service"
)

const (
	defaultRunAddress        = "localhost:8080"
	defaultMigrationsDir     = "internal/db/migrations"
	defaultEnvFile           = ".env"
	defaultStatementWorkers  = 4
	defaultStatementInterval = time.Minute
)

type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`
	APIKey        string `env:"API_KEY"`
	LogLevel      string `env:"LOG_LEVEL"`

	// StoreTimeout ограничение на одну транзакцию unit of work.
	StoreTimeout time.Duration `env:"STORE_TIMEOUT"`

	FundAccountID      int64           `env:"FUND_ACCOUNT_ID"`
	FundName           string          `env:"FUND_NAME"`
	CollectionsPartyID int64           `env:"COLLECTIONS_PARTY_ID"`
	MaintenanceFee     decimal.Decimal `env:"MAINTENANCE_FEE"`

	// StatementInterval период запуска закрытия выписок. 0 - отключено.
	StatementInterval time.Duration `env:"STATEMENT_INTERVAL"`
	StatementWorkers  uint          `env:"STATEMENT_WORKERS"`
}

// String скрывает секреты при выводе конфигурации в лог.
func (c Config) String() string {
	return fmt.Sprintf(
		"{RunAddress:%s DatabaseDSN:%s MigrationsDir:%s APIKey:%s LogLevel:%s StoreTimeout:%s FundAccountID:%d "+
			"FundName:%s CollectionsPartyID:%d MaintenanceFee:%s StatementInterval:%s StatementWorkers:%d}",
		c.RunAddress, mask(c.DatabaseDSN), c.MigrationsDir, mask(c.APIKey), c.LogLevel, c.StoreTimeout,
		c.FundAccountID, c.FundName, c.CollectionsPartyID, c.MaintenanceFee, c.StatementInterval, c.StatementWorkers,
	)
}

// LoadConfig собирает конфигурацию из флагов, .env файла и переменных окружения.
//
// Алгоритм работы:
//  1. Флаги задают значения по умолчанию. Флагом -e можно указать путь к .env файлу.
//  2. .env файл, если он есть, дополняет окружение. Уже заданные переменные он не перезаписывает.
//  3. Переменные окружения перекрывают флаги.
func LoadConfig(args []string) (*Config, error) {
	var conf Config

	envFile, flagErr := loadFlags(&conf, args)
	if flagErr != nil {
		return nil, fmt.Errorf("parse flags: %s", flagErr.Error())
	}

	if dotenvErr := godotenv.Load(envFile); dotenvErr != nil && !errors.Is(dotenvErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %s", envFile, dotenvErr.Error())
	}

	if envParseErr := env.Parse(&conf); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return config
}

func loadFlags(conf *Config, args []string) (string, error) {
	flags := flag.NewFlagSet("kopilka", flag.ContinueOnError)

	var envFile string
	flags.StringVar(&envFile, "e", defaultEnvFile, "Path to .env file")

	flags.StringVar(&conf.RunAddress, "a", defaultRunAddress, "Run address in format host:port")
	flags.StringVar(&conf.DatabaseDSN, "d", "", "Database DSN")
	flags.StringVar(&conf.MigrationsDir, "m", defaultMigrationsDir, "Database migrations directory")
	flags.StringVar(&conf.APIKey, "k", "", "API key expected in the apiKey header")
	flags.StringVar(&conf.LogLevel, "l", "", "Log level, overrides the GIN_MODE based default")

	flags.DurationVar(&conf.StoreTimeout, "store-timeout", service.DefaultStoreTimeout, "Timeout of one store unit of work")

	flags.Int64Var(&conf.FundAccountID, "fund-account", service.DefaultFundAccountID, "Fund account id")
	flags.StringVar(&conf.FundName, "fund-name", service.DefaultFundName, "Fund name used in transfer comments")
	flags.Int64Var(&conf.CollectionsPartyID, "collections-party", service.DefaultCollectionsPartyID,
		"External party receiving the maintenance fee")
	flags.TextVar(&conf.MaintenanceFee, "fee", service.DefaultMaintenanceFee, "Maintenance fee charged on statement")

	flags.DurationVar(&conf.StatementInterval, "statement-interval", defaultStatementInterval,
		"Statement processor interval, 0 disables it")
	flags.UintVar(&conf.StatementWorkers, "statement-workers", defaultStatementWorkers, "Statement processor workers")

	if err := flags.Parse(args); err != nil {
		return "", err //nolint:wrapcheck
	}
	return envFile, nil
}

func (c *Config) validate() error {
	switch {
	case c.DatabaseDSN == "":
		return errors.New("database DSN is not set")
	case c.APIKey == "":
		return errors.New("API key is not set")
	case c.StoreTimeout <= 0:
		return fmt.Errorf("store timeout must be positive, got %s", c.StoreTimeout)
	case c.MaintenanceFee.IsNegative():
		return fmt.Errorf("maintenance fee must not be negative, got %s", c.MaintenanceFee)
	case c.StatementInterval < 0:
		return fmt.Errorf("statement interval must not be negative, got %s", c.StatementInterval)
	case c.StatementWorkers == 0:
		return errors.New("statement workers must be positive")
	}
	return nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}
