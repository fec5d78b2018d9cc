package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const Prefix = "TASKVIEW"

type Config struct {
	ListenAddr      string        `default:":5555" split_words:"true"`
	QueueHostPorts  []string      `required:"true" split_words:"true"`
	EventsTopic     string        `required:"true" split_words:"true"`
	DbConnectionUri string        `split_words:"true"`
	ReloadInterval  time.Duration `default:"30s" split_words:"true"`
	NotifyChannel   string        `default:"tasks_updated" split_words:"true"`
	MaxTasks        int           `default:"10000" split_words:"true"`
	TracingEnabled  bool          `split_words:"true"`
}

// Load reads the optional dotenv files, then the environment.
func Load(files ...string) (Config, error) {
	var cfg Config
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load env file: %w", err)
	}
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return cfg, fmt.Errorf("process env: %w", err)
	}
	if len(cfg.QueueHostPorts) == 0 {
		return cfg, errors.New("queue host ports must not be empty")
	}
	if cfg.MaxTasks < 0 {
		return cfg, fmt.Errorf("max tasks must not be negative, got %d", cfg.MaxTasks)
	}
	if cfg.ReloadInterval <= 0 {
		return cfg, fmt.Errorf("reload interval must be positive, got %s", cfg.ReloadInterval)
	}
	return cfg, nil
}
