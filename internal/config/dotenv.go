package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Rounds                   int
	TurnSeconds              int
	VoteSeconds              int
	GenerationSeconds        int
	RoomGraceSeconds         int
	UploadTTLSeconds         int
	MaxUploadBytes           int64
	WorkerURL                string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
}

func Default() Config {
	return Config{
		Rounds:                   4,
		TurnSeconds:              60,
		VoteSeconds:              60,
		GenerationSeconds:        45,
		RoomGraceSeconds:         300,
		UploadTTLSeconds:         600,
		MaxUploadBytes:           2 << 20,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("GAME_ROUNDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.Rounds = value
		}
	}
	if raw := os.Getenv("TURN_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.TurnSeconds = value
		}
	}
	if raw := os.Getenv("VOTE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.VoteSeconds = value
		}
	}
	if raw := os.Getenv("GENERATION_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.GenerationSeconds = value
		}
	}
	if raw := os.Getenv("ROOM_GRACE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.RoomGraceSeconds = value
		}
	}
	if raw := os.Getenv("UPLOAD_TTL_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.UploadTTLSeconds = value
		}
	}
	if raw := os.Getenv("MAX_UPLOAD_BYTES"); raw != "" {
		if value, err := strconv.ParseInt(raw, 10, 64); err == nil && value > 0 {
			cfg.MaxUploadBytes = value
		}
	}
	if raw := os.Getenv("AI_WORKER_URL"); raw != "" {
		cfg.WorkerURL = raw
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	return cfg
}
