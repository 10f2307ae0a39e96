package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "TESTIMONIALS"

type Config struct {
	HTTP   HTTPConfig   `mapstructure:"http"`
	Sync   SyncConfig   `mapstructure:"sync"`
	GRPC   GRPCConfig   `mapstructure:"grpc"`
	Log    LogConfig    `mapstructure:"log"`
	Store  StoreConfig  `mapstructure:"store"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
	Notify NotifyConfig `mapstructure:"notify"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type SyncConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// NotifyConfig controls the UDP event notifier.
type NotifyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type GRPCConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// StoreConfig selects the key-value backend holding the review collection.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // memory, file, sqlite, postgres, s3
	Key    string `mapstructure:"key"`
	Path   string `mapstructure:"path"` // file dir or sqlite db path
	DSN    string `mapstructure:"dsn"`
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
}

type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"` // comma separated
	Topic   string `mapstructure:"topic"`
}

func (k KafkaConfig) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("sync.enabled", true)
	v.SetDefault("sync.addr", ":7070")
	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.addr", ":7071")
	v.SetDefault("grpc.addr", ":9090")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.key", "reviews")
	v.SetDefault("store.path", "")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.bucket", "")
	v.SetDefault("store.prefix", "testimonials/")
	v.SetDefault("store.region", "us-east-1")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "reviews.events")
}

// LoadConfig merges defaults, an optional YAML file and TESTIMONIALS_* env
// vars (store.driver -> TESTIMONIALS_STORE_DRIVER). An explicit path must
// exist; the default lookup (./testimonials.yaml, ~/.testimonials/) may not.
func LoadConfig(path string, opts ...func(*viper.Viper)) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("testimonials")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".testimonials"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	for _, opt := range opts {
		opt(v)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if strings.TrimSpace(cfg.Store.Key) == "" {
		cfg.Store.Key = "reviews"
	}
	return cfg, nil
}
