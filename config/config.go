package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Driver string
		URL    string
	}
	Server struct {
		Port int
	}
	Discovery struct {
		UserAgent                string
		RefreshInterval          string
		MaxPages                 int
		AllowedDomains           []string
		MaxConcurrentDiscoveries int
	}
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.url", "rsl.db")
	viper.SetDefault("discovery.useragent", "RSL Server Bot v1.0")
	viper.SetDefault("discovery.refreshinterval", "24h")
	viper.SetDefault("discovery.maxpages", 500)
	viper.SetDefault("discovery.maxconcurrentdiscoveries", 5)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) GetRefreshDuration() time.Duration {
	duration, err := time.ParseDuration(c.Discovery.RefreshInterval)
	if err != nil {
		return 24 * time.Hour
	}
	return duration
}
