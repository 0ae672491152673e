package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "paybridge/internal/shared/config"
)

type Config struct {
	Server   sharedConfig.ServerConfig   `mapstructure:"server"`
	Logger   sharedConfig.LoggerConfig   `mapstructure:"logger"`
	Database sharedConfig.DatabaseConfig `mapstructure:"database"`
	ECPay    sharedConfig.ECPayConfig    `mapstructure:"ecpay"`
	EZPay    sharedConfig.EZPayConfig    `mapstructure:"ezpay"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables. A missing
// config file is fine; the defaults describe a working stage setup.
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("PAYBRIDGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration.
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.mode", "debug")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Archive database defaults
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.path", "paybridge.db")

	// ECPay defaults point at the stage environment.
	viper.SetDefault("ecpay.base_url", "https://payment-stage.ecpay.com.tw")
	viper.SetDefault("ecpay.merchant_id", "")
	viper.SetDefault("ecpay.hash_key", "")
	viper.SetDefault("ecpay.hash_iv", "")
	viper.SetDefault("ecpay.server_host", "http://localhost:3000")
	viper.SetDefault("ecpay.callback_path", "/payments/ecpay/callback")
	viper.SetDefault("ecpay.checkout_path", "/payments/ecpay/checkout")
	viper.SetDefault("ecpay.language", "")
	viper.SetDefault("ecpay.order_ttl_minutes", 10)
	viper.SetDefault("ecpay.request_timeout_ms", 10000)

	// EZPay defaults point at the development platform.
	viper.SetDefault("ezpay.base_url", "https://cinv.ezpay.com.tw")
	viper.SetDefault("ezpay.merchant_id", "")
	viper.SetDefault("ezpay.hash_key", "")
	viper.SetDefault("ezpay.hash_iv", "")
	viper.SetDefault("ezpay.request_timeout_ms", 10000)
}
