package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/EternisAI/silo-license/internal/api/http"
	"github.com/EternisAI/silo-license/internal/auth"
	"github.com/EternisAI/silo-license/internal/db"
	"github.com/EternisAI/silo-license/internal/keys"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log   LogConfig
	Http  http.Config
	Grpc  GrpcConfig
	Db    db.Config
	Keys  keys.Config
	Jwt   auth.Config
	Redis RedisConfig
}

type GrpcConfig struct {
	Port int       `mapstructure:"port"`
	TLS  TLSConfig `mapstructure:"tls"`
}

type TLSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	CertFile   string `mapstructure:"cert_file"`
	KeyFile    string `mapstructure:"key_file"`
	CAFile     string `mapstructure:"ca_file"`
	ClientAuth string `mapstructure:"client_auth"`
}

type RedisConfig struct {
	Url string `mapstructure:"url"`
}

var config Config

func InitConfig() {
	_ = godotenv.Load()

	viper.SetConfigName("application")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./cmd/silo-license-server")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.BindEnv("keys.private_key_jwk", "LICENSE_SIGNING_PRIVATE_KEY_JWK")
	_ = viper.BindEnv("keys.public_key_jwk", "LICENSE_SIGNING_PUBLIC_KEY_JWK")
	_ = viper.BindEnv("db.url", "DATABASE_URL")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")

	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		panic(err)
	}

	initLogger(config.Log.Level)

	if strings.ToUpper(config.Log.Level) == LOG_LEVEL_DEBUG {
		configJSON, err := json.MarshalIndent(redacted(config), "", "  ")
		if err == nil {
			fmt.Println("Config loaded:")
			fmt.Println(string(configJSON))
		}
	}
}

// redacted blanks secrets before the config is printed.
func redacted(c Config) Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}
	c.Http.AdminAPIKey = mask(c.Http.AdminAPIKey)
	c.Db.Url = mask(c.Db.Url)
	c.Keys.PrivateKeyJWK = mask(c.Keys.PrivateKeyJWK)
	c.Jwt.Secret = mask(c.Jwt.Secret)
	c.Redis.Url = mask(c.Redis.Url)
	return c
}
