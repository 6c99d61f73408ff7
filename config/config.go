package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string        `env:"FITLOG_ADDR" envDefault:"127.0.0.1:8080"`
	DBDriver      string        `env:"FITLOG_DB_DRIVER" envDefault:"sqlite"`
	DBDSN         string        `env:"FITLOG_DB_DSN" envDefault:"file:fitlog.db"`
	SessionSecret string        `env:"FITLOG_SESSION_SECRET,required"`
	SessionDir    string        `env:"FITLOG_SESSION_DIR" envDefault:"sess"`
	SessionMaxAge int           `env:"FITLOG_SESSION_MAX_AGE" envDefault:"3600"`
	SecureCookies bool          `env:"FITLOG_SECURE_COOKIES" envDefault:"true"`
	AdminToken    string        `env:"FITLOG_ADMIN_TOKEN"`
	DefaultLocale string        `env:"FITLOG_DEFAULT_LOCALE" envDefault:"en-US"`
	ShutdownWait  time.Duration `env:"FITLOG_SHUTDOWN_WAIT" envDefault:"5s"`
	LogFile       string        `env:"FITLOG_LOG_FILE"`
	LogStacks     bool          `env:"FITLOG_LOG_STACKS" envDefault:"false"`
}

// Load reads the optional dotenv files, then parses the environment.
// Values already present in the environment win over the files.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.DBDriver {
	case "mysql", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
	return cfg, nil
}
