package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 服务全局配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Loyalty  LoyaltyConfig  `mapstructure:"loyalty"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"` // gin mode: debug/release
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres | sqlite
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type PaymentConfig struct {
	// WebhookSecret 网关对回调原始请求体做 HMAC-SHA256 签名的共享密钥
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type LoyaltyConfig struct {
	// PointValue 每积分可抵扣的货币金额
	PointValue float64 `mapstructure:"point_value"`
}

// Load 读取配置：config.yaml 可选，环境变量（POS_ 前缀）覆盖
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("POS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "host=localhost user=pos password=pos dbname=pos port=5432 sslmode=disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 5*time.Minute)
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("loyalty.point_value", 0.10)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
