package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	StoreTimeout      time.Duration `mapstructure:"store_timeout" yaml:"store_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogJSON           bool          `mapstructure:"log_json" yaml:"log_json"`

	// DBDriver selects the storage backend: "sqlite" or "postgres".
	DBDriver    string `mapstructure:"db_driver" yaml:"db_driver"`
	SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	PostgresURL string `mapstructure:"postgres_url" yaml:"postgres_url"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`

	WSMessageLimit int64 `mapstructure:"ws_message_limit" yaml:"ws_message_limit"`
	FeedLimit      int   `mapstructure:"feed_limit" yaml:"feed_limit"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		StoreTimeout:      5 * time.Second,
		LogLevel:          "info",
		LogJSON:           false,
		DBDriver:          "sqlite",
		SQLitePath:        "social.db",
		PostgresURL:       "",
		JWTSecret:         "change-me-in-production",
		JWTIssuer:         "social-api",
		JWTAudience:       "social-clients",
		JWTTTL:            24 * time.Hour,
		WSMessageLimit:    32 * 1024,
		FeedLimit:         50,
	}
}
