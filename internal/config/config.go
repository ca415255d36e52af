package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	JWTSecret         string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer         string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience       string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL            time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`
	BcryptCost        int           `mapstructure:"bcrypt_cost" yaml:"bcrypt_cost"`
}

// Default returns configuration with reasonable starter defaults. The JWT
// secret has no default; it must come from the config file or environment.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "messagely.db",
		LogLevel:          "info",
		JWTIssuer:         "messagely",
		JWTAudience:       "messagely",
		JWTTTL:            24 * time.Hour,
		BcryptCost:        10,
	}
}
