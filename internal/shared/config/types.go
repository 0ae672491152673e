package config

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// DatabaseConfig holds the committed-order archive database configuration
type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	Enabled bool   `mapstructure:"enabled"`
}

// ECPayConfig holds the ECPay payment gateway configuration.
// ServerHost is the externally reachable base URL of this service; the
// gateway redirects end users to ServerHost+CheckoutPath and delivers
// asynchronous payment results to ServerHost+CallbackPath.
type ECPayConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	MerchantID       string `mapstructure:"merchant_id"`
	HashKey          string `mapstructure:"hash_key"`
	HashIV           string `mapstructure:"hash_iv"`
	ServerHost       string `mapstructure:"server_host"`
	CallbackPath     string `mapstructure:"callback_path"`
	CheckoutPath     string `mapstructure:"checkout_path"`
	Language         string `mapstructure:"language"`
	OrderTTLMinutes  int    `mapstructure:"order_ttl_minutes"`
	RequestTimeoutMS int    `mapstructure:"request_timeout_ms"`
}

// EZPayConfig holds the EZPay e-invoice gateway configuration
type EZPayConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	MerchantID       string `mapstructure:"merchant_id"`
	HashKey          string `mapstructure:"hash_key"`
	HashIV           string `mapstructure:"hash_iv"`
	RequestTimeoutMS int    `mapstructure:"request_timeout_ms"`
}
