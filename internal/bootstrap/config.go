package bootstrap

import (
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	RedisUrl      string `mapstructure:"REDIS_URL"`
	MongoUri      string `mapstructure:"MONGO_URI"`
	IsLocalCors   bool   `mapstructure:"LOCAL_CORS"`
	MistralApiKey string `mapstructure:"MISTRAL_API_KEY"`
	MistralModel  string `mapstructure:"MISTRAL_MODEL"`
}

func Setup(cfgPath string) (*Config, error) {
	viper.SetConfigFile(cfgPath)

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.MistralModel == "" {
		cfg.MistralModel = "mistral-large-latest"
	}

	return &cfg, nil
}
