package env

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Addr      string        `env:"TSQUERY_ADDR,default=localhost:10011"`
	User      string        `env:"TSQUERY_USER"`
	Password  string        `env:"TSQUERY_PASSWORD"`
	ServerID  uint64        `env:"TSQUERY_SID,default=1"`
	KeepAlive time.Duration `env:"TSQUERY_KEEPALIVE,default=60s"`
	LogLevel  string        `env:"TSQUERY_LOG_LEVEL,default=info"`
	DebugHTTP bool          `env:"TSQUERY_DEBUG_HTTP"`
}

func LoadConfig(ctx context.Context) (*Config, error) {
	config := Config{}

	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
