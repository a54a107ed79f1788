package auth

import "time"

type Config struct {
	Secret          string `mapstructure:"secret"`
	ExpirationHours int    `mapstructure:"expiration_hours"`
	Issuer          string `mapstructure:"issuer"`
}

func (c Config) ttl() time.Duration {
	if c.ExpirationHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.ExpirationHours) * time.Hour
}
