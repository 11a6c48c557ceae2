// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Defaults
const (
	DefaultPort         = 3318
	DefaultDatabaseType = "sqlite"
	DefaultMaxImageSize = "8 MB"
	DefaultRankMethod   = "average"
	DefaultSubmitRate   = 5.0
	DefaultSubmitBurst  = 10
)

type Config struct {
	Port          int     `validate:"min=1,max=65535"`
	DatabaseURL   string  `validate:"required"`
	DatabaseType  string  `validate:"oneof=sqlite postgres"`
	IPHashSalt    string  `validate:"required"`
	RoundTitle    string  `validate:"max=200"`
	MaxImageBytes int64   `validate:"min=1"`
	RankMethod    string  `validate:"oneof=average wilson"`
	SubmitRate    float64 `validate:"gt=0"`
	SubmitBurst   int     `validate:"min=1"`
}

// LoadEnvFile copies variables from a dotenv file into the process
// environment without overriding ones already set. A missing file is fine.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags parses CLI flags, falls back to environment variables, and
// validates the result. Flags win over the environment.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var maxImage string

	fs := flag.NewFlagSet("votedeck", flag.ContinueOnError)

	// Network and storage (CLI or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Round settings
	fs.StringVar(&cfg.RoundTitle, "title", "", "Round title shown to voters")
	fs.StringVar(&maxImage, "max-image", "", "Largest accepted image upload, e.g. 8MB")
	fs.StringVar(&cfg.RankMethod, "rank", "", "Rank column method (average or wilson)")
	fs.Float64Var(&cfg.SubmitRate, "submit-rate", 0, "Vote submissions allowed per second")
	fs.IntVar(&cfg.SubmitBurst, "submit-burst", 0, "Vote submission burst size")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.IPHashSalt, "ip-salt", "", "IP hash salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = getenv("DATABASE_TYPE", DefaultDatabaseType)
	}
	if cfg.RoundTitle == "" {
		cfg.RoundTitle = os.Getenv("ROUND_TITLE")
	}
	if maxImage == "" {
		maxImage = getenv("MAX_IMAGE_SIZE", DefaultMaxImageSize)
	}
	size, err := humanize.ParseBytes(maxImage)
	if err != nil {
		return Config{}, fmt.Errorf("invalid max image size %q: %w", maxImage, err)
	}
	cfg.MaxImageBytes = int64(size)

	if cfg.RankMethod == "" {
		cfg.RankMethod = getenv("RANK_METHOD", DefaultRankMethod)
	}
	if cfg.SubmitRate == 0 {
		cfg.SubmitRate = DefaultSubmitRate
		if v := os.Getenv("SUBMIT_RATE"); v != "" {
			rate, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return Config{}, errors.New("invalid SUBMIT_RATE env variable")
			}
			cfg.SubmitRate = rate
		}
	}
	if cfg.SubmitBurst == 0 {
		cfg.SubmitBurst = DefaultSubmitBurst
		if v := os.Getenv("SUBMIT_BURST"); v != "" {
			burst, err := strconv.Atoi(v)
			if err != nil {
				return Config{}, errors.New("invalid SUBMIT_BURST env variable")
			}
			cfg.SubmitBurst = burst
		}
	}

	// Secrets - MUST be provided
	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = os.Getenv("IP_HASH_SALT")
	}
	if cfg.IPHashSalt == "" {
		return Config{}, errors.New("IP_HASH_SALT required")
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints on an assembled Config.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", fe.Field(), fe.ActualTag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
