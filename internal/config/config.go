package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hotseatlive/hotseat-backend/internal/engine"
)

// classic fifteen-rung ladder with safe havens at 5, 10 and 15
var defaultAmounts = []int64{
	100, 200, 300, 500, 1000,
	2000, 4000, 8000, 16000, 32000,
	64000, 125000, 250000, 500000, 1000000,
}

var defaultMilestones = []int{5, 10, 15}

type Config struct {
	Port          string
	DatabaseURL   string
	QuestionsFile string
	Ladder        engine.Ladder
	PhoneTimerSec int
}

// Load reads the environment, with a .env file as an optional
// convenience for local runs.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:          getenv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		QuestionsFile: getenv("QUESTIONS_FILE", "questions.json"),
		PhoneTimerSec: engine.DefaultPhoneTimerSec,
	}

	amounts := defaultAmounts
	if raw := os.Getenv("PRIZE_LADDER"); raw != "" {
		parsed, err := parseInt64List(raw)
		if err != nil {
			return Config{}, fmt.Errorf("PRIZE_LADDER: %w", err)
		}
		amounts = parsed
	}
	milestones := defaultMilestones
	if raw := os.Getenv("MILESTONES"); raw != "" {
		parsed, err := parseIntList(raw)
		if err != nil {
			return Config{}, fmt.Errorf("MILESTONES: %w", err)
		}
		milestones = parsed
	}
	ladder, err := engine.NewLadder(amounts, milestones)
	if err != nil {
		return Config{}, fmt.Errorf("prize ladder: %w", err)
	}
	cfg.Ladder = ladder

	if raw := os.Getenv("PHONE_TIMER_SEC"); raw != "" {
		sec, err := strconv.Atoi(raw)
		if err != nil || sec <= 0 {
			return Config{}, fmt.Errorf("PHONE_TIMER_SEC: invalid value %q", raw)
		}
		cfg.PhoneTimerSec = sec
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt64List(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseIntList(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}
