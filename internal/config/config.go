// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек трекера прогресса.
type Config struct {
	Env             string `yaml:"env" env-default:"local"`
	RabbitMQURL     string `yaml:"rabbitmq_url"`
	RedisConnection `yaml:"redis_connection"`
	HTTPServer      `yaml:"http_server"`
	JWTToken        `yaml:"jwttoken"`
	Sweeps          `yaml:"sweeps"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	Address     string        `yaml:"address" env-default:":8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis,
// где хранятся все записи прогресса и действий пользователей.
type RedisConnection struct {
	Address     string        `yaml:"address" env-default:"localhost:6379"`
	Password    string        `yaml:"password"`
	User        string        `yaml:"user"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries" env-default:"3"`
	DialTimeout time.Duration `yaml:"dial_timeout" env-default:"5s"`
	Timeout     time.Duration `yaml:"timeout" env-default:"5s"`
}

// JWTToken структура для проверки jwt-токена, из которого берётся uid владельца.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Sweeps структура с параметрами фоновых проходов по хранилищу:
// ежедневный сброс прогресса, протухание подсказок и публикация несинхронизированных действий.
type Sweeps struct {
	// ResetHourUTC — час по UTC, раньше которого суточный сброс не запускается,
	// чтобы не обнулять прогресс пользователю посреди сессии сразу после полуночи.
	ResetHourUTC int `yaml:"reset_hour_utc" env-default:"6"`
	// PromptTTL — срок жизни подсказки с момента первого просмотра.
	PromptTTL time.Duration `yaml:"prompt_ttl" env-default:"24h"`
	// ExpiryCheckDisabled отключает только чтение признака протухания,
	// сам механизм записи состояний продолжает работать.
	ExpiryCheckDisabled bool          `yaml:"expiry_check_disabled" env-default:"false"`
	SyncInterval        time.Duration `yaml:"sync_interval" env-default:"1m"`
	ExpiryInterval      time.Duration `yaml:"expiry_interval" env-default:"15m"`
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"RabbitMQURL: %s\n"+
			"RedisConnection:\n"+
			"  Address: %s\n"+
			"  User: %s\n"+
			"  DB: %d\n"+
			"  MaxRetries: %d\n"+
			"  DialTimeout: %s\n"+
			"  Timeout: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Sweeps:\n"+
			"  ResetHourUTC: %d\n"+
			"  PromptTTL: %s\n"+
			"  ExpiryCheckDisabled: %t\n"+
			"  SyncInterval: %s\n"+
			"  ExpiryInterval: %s\n",
		c.Env,
		c.RabbitMQURL,
		c.RedisConnection.Address,
		c.User,
		c.DB,
		c.MaxRetries,
		c.DialTimeout,
		c.RedisConnection.Timeout,
		c.HTTPServer.Address,
		c.HTTPServer.Timeout,
		c.IdleTimeout,
		c.ResetHourUTC,
		c.PromptTTL,
		c.ExpiryCheckDisabled,
		c.SyncInterval,
		c.ExpiryInterval,
	)
}
