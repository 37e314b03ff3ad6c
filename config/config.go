// Ininicializing common application configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	App     AppConfig     `mapstructure:"app"`
	Captcha CaptchaConfig `mapstructure:"captcha"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
}

type ServerConfig struct {
	AppVersion   string `json:"appVersion"`
	Host         string `json:"host" validate:"required"`
	Port         string `json:"port" validate:"required"`
	Timeout      time.Duration
	Idle_timeout time.Duration
	Env          string `json:"environment"`
	Mode         string `mapstructure:"mode"`
}

type AppConfig struct {
	SourceRoot         string        `mapstructure:"source_root"`
	FetchTimeout       time.Duration `mapstructure:"fetch_timeout"`
	CacheSweepInterval time.Duration `mapstructure:"cache_sweep_interval"`
	LogLevel           string        `mapstructure:"log_level"`
}

type CaptchaConfig struct {
	Secret   string `mapstructure:"secret"`
	Alphabet string `mapstructure:"alphabet"`
	Length   int    `mapstructure:"length"`
	Width    int    `mapstructure:"width"`
	Height   int    `mapstructure:"height"`
}

type KafkaConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	Brokers     []string `mapstructure:"brokers"`
	EventsTopic string   `mapstructure:"events_topic"`
	WarmTopic   string   `mapstructure:"warm_topic"`
	GroupID     string   `mapstructure:"group_id"`
}

// LoadConfig reads ./config/config.yaml on top of the defaults. A missing
// file is not an error.
func LoadConfig() (*viper.Viper, error) {

	viperInstance := viper.New()
	setDefaults(viperInstance)

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	err := viperInstance.ReadInConfig()

	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return nil, err
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	c.Captcha.Secret = GetEnv("CAPTCHA_SECRET", c.Captcha.Secret)
	if brokers := GetEnv("KAFKA_BROKERS", ""); brokers != "" {
		c.Kafka.Brokers = strings.Split(brokers, ",")
	}

	if c.Captcha.Secret == "" {
		return nil, errors.New("captcha.secret must not be empty")
	}
	if c.App.CacheSweepInterval <= 0 {
		return nil, errors.New("app.cache_sweep_interval must be positive")
	}
	return &c, nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.appVersion", "1.0.0")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")

	// App defaults
	v.SetDefault("app.source_root", "./images")
	v.SetDefault("app.fetch_timeout", 10*time.Second)
	v.SetDefault("app.cache_sweep_interval", time.Minute)
	v.SetDefault("app.log_level", "info")

	// Captcha defaults
	v.SetDefault("captcha.secret", "change-me-in-production")
	v.SetDefault("captcha.alphabet", "ABCDEFHKLMNPRTVXYZ234789")
	v.SetDefault("captcha.length", 5)
	v.SetDefault("captcha.width", 100)
	v.SetDefault("captcha.height", 30)

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9094"})
	v.SetDefault("kafka.events_topic", "dynimage.renders")
	v.SetDefault("kafka.warm_topic", "dynimage.warmup")
	v.SetDefault("kafka.group_id", "dynimage")
}
