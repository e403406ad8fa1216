package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
)

// MoMo決済の設定。MOMO_プレフィックスの環境変数から読む
type MoMoConfig struct {
	PartnerCode string `envconfig:"PARTNER_CODE" required:"true"`
	AccessKey   string `envconfig:"ACCESS_KEY" required:"true"`
	SecretKey   string `envconfig:"SECRET_KEY" required:"true"`
	Endpoint    string `envconfig:"ENDPOINT" required:"true"`
	RedirectURL string `envconfig:"REDIRECT_URL" required:"true"`
	NotifyURL   string `envconfig:"NOTIFY_URL" required:"true"`
}

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     string // DBポート

	JWTSecret string // JWT署名シークレット

	MoMo MoMoConfig
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     os.Getenv("POSTGRES_PORT"),

		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	//必須チェック
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	if err := envconfig.Process("MOMO", &cfg.MoMo); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
