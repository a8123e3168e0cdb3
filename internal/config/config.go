package config

import "github.com/spf13/viper"

// Config holds everything the process reads from the environment.
type Config struct {
	AppPort  string
	DBDriver string // "sqlite" or "postgres"
	DBDSN    string

	JWTSecret string

	// RabbitMQURL enables checkout event publication when non-empty.
	RabbitMQURL string

	// OpenBrowser opens a browser tab once per process start. Cosmetic.
	OpenBrowser bool
}

// Load reads configuration from environment variables with sensible demo
// defaults, via Viper.
func Load() *Config {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DB_DRIVER", "sqlite")
	// Busy timeout makes concurrent writers queue on SQLite's write lock
	// instead of erroring.
	viper.SetDefault("DB_DSN", "file:shop.db?_busy_timeout=5000")
	viper.SetDefault("JWT_SECRET", "mysecretkey")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("OPEN_BROWSER", false)
	viper.AutomaticEnv()

	return &Config{
		AppPort:     viper.GetString("APP_PORT"),
		DBDriver:    viper.GetString("DB_DRIVER"),
		DBDSN:       viper.GetString("DB_DSN"),
		JWTSecret:   viper.GetString("JWT_SECRET"),
		RabbitMQURL: viper.GetString("RABBITMQ_URL"),
		OpenBrowser: viper.GetBool("OPEN_BROWSER"),
	}
}
