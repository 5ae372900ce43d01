package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type GameConfig struct {
	Quorum       int `mapstructure:"quorum"`
	JokerCount   int `mapstructure:"joker_count"`
	QueueSize    int `mapstructure:"queue_size"`
	MailboxSize  int `mapstructure:"mailbox_size"`
	OutboundSize int `mapstructure:"outbound_size"`
}

type AuthConfig struct {
	JWTSecret       string `mapstructure:"jwt_secret"`
	TokenTTLMinutes int    `mapstructure:"token_ttl_minutes"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8000")
	viper.SetDefault("server.rpc_address", ":8001")
	viper.SetDefault("server.metrics_address", ":9100")
	viper.SetDefault("game.quorum", 4)
	viper.SetDefault("game.joker_count", 2)
	viper.SetDefault("game.queue_size", 1024)
	viper.SetDefault("game.mailbox_size", 256)
	viper.SetDefault("game.outbound_size", 64)
	viper.SetDefault("auth.token_ttl_minutes", 60)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
