// Package config loads the service configuration from config.yaml and
// the environment, with working defaults for every key.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	Buffer struct {
		Capacity int `mapstructure:"capacity"`
	} `mapstructure:"buffer"`
	Producer struct {
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"producer"`
	Bootstrap struct {
		Count   int           `mapstructure:"count"`
		Spacing time.Duration `mapstructure:"spacing"`
	} `mapstructure:"bootstrap"`
	Anomaly struct {
		Threshold float64 `mapstructure:"threshold"`
	} `mapstructure:"anomaly"`
	Stream struct {
		QueueLen int `mapstructure:"queue_len"`
	} `mapstructure:"stream"`
	MQTT struct {
		Enabled         bool   `mapstructure:"enabled"`
		Broker          string `mapstructure:"broker"`
		Port            int    `mapstructure:"port"`
		Topic           string `mapstructure:"topic"`
		Username        string `mapstructure:"username"`
		Password        string `mapstructure:"password"`
		UseTLS          bool   `mapstructure:"use_tls"`
		InsecureSkipTLS bool   `mapstructure:"insecure_skip_tls"`
	} `mapstructure:"mqtt"`
}

// Load reads config.yaml from path (missing file is fine, defaults
// apply) and overlays matching environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.SetEnvPrefix("envirostream")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("buffer.capacity", 100)
	v.SetDefault("producer.interval", "3s")
	v.SetDefault("bootstrap.count", 50)
	v.SetDefault("bootstrap.spacing", "12s")
	v.SetDefault("anomaly.threshold", 2.0)
	v.SetDefault("stream.queue_len", 16)
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "localhost")
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.topic", "sensors/environment")
	v.SetDefault("mqtt.use_tls", false)
	v.SetDefault("mqtt.insecure_skip_tls", false)
}
