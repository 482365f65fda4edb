package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	ViewAs   ViewAsConfig
	Sync     SyncConfig
	Troop    TroopConfig
	Fixtures FixturesConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all (e.g. http://localhost:3000,http://localhost:3001)
}

// RedisConfig holds Redis connection settings. An empty Addr runs without Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// ViewAsConfig holds signing settings for role switcher tokens.
type ViewAsConfig struct {
	Secret      string
	ExpireHours int
}

// SyncConfig tunes the simulated archive sync.
type SyncConfig struct {
	Speed float64 // multiplier applied to every step delay; 0 plays instantly
}

// TroopConfig holds troop identity and the meeting schedule.
type TroopConfig struct {
	Name          string
	MeetingRRule  string // RFC 5545 recurrence, e.g. FREQ=WEEKLY;BYDAY=TH;BYHOUR=19;BYMINUTE=30
	MeetingStart  string // first meeting date, YYYY-MM-DD
	MeetingTZ     string
	MeetingsShown int
}

// FixturesConfig points at an alternative fixture file.
type FixturesConfig struct {
	Path string // empty = embedded fixtures
}

// Schedule parses the meeting recurrence in the configured time zone.
func (c TroopConfig) Schedule() (*rrule.RRule, error) {
	loc, err := time.LoadLocation(c.MeetingTZ)
	if err != nil {
		return nil, fmt.Errorf("meeting tz %q: %w", c.MeetingTZ, err)
	}
	r, err := rrule.StrToRRule(c.MeetingRRule)
	if err != nil {
		return nil, fmt.Errorf("meeting rrule %q: %w", c.MeetingRRule, err)
	}
	start, err := time.ParseInLocation("2006-01-02", c.MeetingStart, loc)
	if err != nil {
		return nil, fmt.Errorf("meeting start %q: %w", c.MeetingStart, err)
	}
	r.DTStart(start)
	return r, nil
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	speed, err := strconv.ParseFloat(getEnv("SYNC_SPEED", "1"), 64)
	if err != nil || speed < 0 {
		return nil, fmt.Errorf("invalid SYNC_SPEED %q", os.Getenv("SYNC_SPEED"))
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		ViewAs: ViewAsConfig{
			Secret:      getEnv("VIEW_AS_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("VIEW_AS_EXPIRE_HOURS", 24),
		},
		Sync: SyncConfig{
			Speed: speed,
		},
		Troop: TroopConfig{
			Name:          getEnv("TROOP_NAME", "Troop 78"),
			MeetingRRule:  getEnv("MEETING_RRULE", "FREQ=WEEKLY;BYDAY=TH;BYHOUR=19;BYMINUTE=30;BYSECOND=0"),
			MeetingStart:  getEnv("MEETING_START", "2024-09-05"),
			MeetingTZ:     getEnv("MEETING_TZ", "America/New_York"),
			MeetingsShown: getEnvInt("MEETINGS_SHOWN", 4),
		},
		Fixtures: FixturesConfig{
			Path: getEnv("FIXTURES_PATH", ""),
		},
	}
	if _, err := cfg.Troop.Schedule(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Origins splits CORSAllowedOrigins into a list.
func (c ServerConfig) Origins() []string {
	return splitTrim(c.CORSAllowedOrigins, ",")
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
