package configs

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Env development 模式下错误详情透传给客户端, production 模式下隐藏
	Env string `mapstructure:"env"`

	Server    ServerConfig    `mapstructure:"server"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Refresh   RefreshConfig   `mapstructure:"refresh"`
}

type ServerConfig struct {
	Addr       string `mapstructure:"addr"`
	CORSOrigin string `mapstructure:"cors_origin"` // dashboard origin
}

type ProvidersConfig struct {
	CoinGeckoBaseURL   string              `mapstructure:"coingecko_base_url"`
	BinanceBaseURL     string              `mapstructure:"binance_base_url"`
	AlternativeBaseURL string              `mapstructure:"alternative_base_url"`
	CoinMarketCap      CoinMarketCapConfig `mapstructure:"coinmarketcap"`
}

type CoinMarketCapConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"` // empty = memory-only cache
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type RefreshConfig struct {
	Capitulation time.Duration `mapstructure:"capitulation"` // warm-refresh interval
	Alerts       time.Duration `mapstructure:"alerts"`       // recheck pass interval
}

// Load reads configs/config.yaml (config.local.yaml preferred when present)
// with env-var override and defaults for every key.
func Load() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()

	viper.SetConfigName("config.local")
	if err := viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("env", "development")
	viper.SetDefault("server.addr", ":3000")
	viper.SetDefault("server.cors_origin", "http://localhost:5173")
	viper.SetDefault("providers.coingecko_base_url", "")
	viper.SetDefault("providers.binance_base_url", "")
	viper.SetDefault("providers.alternative_base_url", "")
	viper.SetDefault("providers.coinmarketcap.base_url", "")
	viper.SetDefault("providers.coinmarketcap.api_key", "")
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("cache.ttl", time.Minute)
	viper.SetDefault("refresh.capitulation", 10*time.Minute)
	viper.SetDefault("refresh.alerts", 10*time.Minute)
}
