package configs

import (
	"log"
	"sync"

	"github.com/spf13/viper"
)

var (
	config *Config
	once   sync.Once
)

type Config struct {
	Viper *viper.Viper
}

func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AutomaticEnv()

		setDefaults(v)

		if err := v.ReadInConfig(); err != nil {
			log.Printf("No config file found, falling back to defaults and environment: %v", err)
		}

		config = &Config{
			Viper: v,
		}
	})
	return config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl", "disable")
	v.SetDefault("database.timezone", "UTC")

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("canvas.frame_width", 1920)
	v.SetDefault("canvas.frame_height", 1080)
	v.SetDefault("canvas.boundary_padding", 4000)
	v.SetDefault("canvas.broadcast_interval_ms", 16)

	v.SetDefault("jwt.expiration_time", 86400)
}
