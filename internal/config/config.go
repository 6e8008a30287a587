package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"srcdsbot/internal/status"
)

type Config struct {
	MatrixHomeserver  string
	MatrixAccessToken string
	MatrixUser        string
	MatrixPassword    string
	MatrixUserID      string
	MatrixRoomID      string
	AllowedMXIDs      map[string]struct{}

	DockerContainerName string

	RCONHost    string
	RCONPort    int
	RCONPass    string
	RCONTimeout time.Duration

	PreferTrailingNumericFields bool
	RequirePlayerState          bool

	CommandPrefix string
	DataDir       string
	MetricsAddr   string
	LogLevel      string
	LogJSON       bool
}

// Load reads the environment, after applying an optional .env file from the
// working directory. Variables already set win over the file.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		MatrixHomeserver:            strings.TrimSpace(os.Getenv("MATRIX_HOMESERVER")),
		MatrixAccessToken:           strings.TrimSpace(os.Getenv("MATRIX_ACCESS_TOKEN")),
		MatrixUser:                  strings.TrimSpace(os.Getenv("MATRIX_USER")),
		MatrixPassword:              strings.TrimSpace(os.Getenv("MATRIX_PASSWORD")),
		MatrixUserID:                strings.TrimSpace(os.Getenv("MATRIX_USER_ID")),
		MatrixRoomID:                strings.TrimSpace(os.Getenv("MATRIX_ROOM_ID")),
		DockerContainerName:         envOrDefault("DOCKER_CONTAINER_NAME", "srcds"),
		RCONHost:                    envOrDefault("RCON_HOST", "127.0.0.1"),
		RCONPort:                    intEnvOrDefault("RCON_PORT", 27015),
		RCONPass:                    strings.TrimSpace(os.Getenv("RCON_PASS")),
		RCONTimeout:                 durationEnvOrDefault("RCON_TIMEOUT", 5*time.Second),
		PreferTrailingNumericFields: boolEnvOrDefault("STATUS_PREFER_TRAILING_NUMERIC", true),
		RequirePlayerState:          boolEnvOrDefault("STATUS_REQUIRE_STATE", false),
		CommandPrefix:               envOrDefault("COMMAND_PREFIX", "!"),
		DataDir:                     envOrDefault("DATA_DIR", "./data"),
		MetricsAddr:                 strings.TrimSpace(os.Getenv("METRICS_ADDR")),
		LogLevel:                    envOrDefault("LOG_LEVEL", "info"),
		LogJSON:                     strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_FORMAT")), "json"),
	}

	cfg.AllowedMXIDs = parseAllowlist(os.Getenv("ALLOWED_MXIDS"))

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) StatusOptions() status.Options {
	return status.Options{
		PreferTrailingNumericFields: c.PreferTrailingNumericFields,
		RequireState:                c.RequirePlayerState,
	}
}

func (c Config) StatePath() string {
	return filepath.Join(c.DataDir, "sync_state.json")
}

func (c Config) AccessTokenPath() string {
	return filepath.Join(c.DataDir, "matrix_access.token")
}

func (c Config) validate() error {
	if c.MatrixHomeserver == "" {
		return errors.New("MATRIX_HOMESERVER is required")
	}
	if c.MatrixRoomID == "" {
		return errors.New("MATRIX_ROOM_ID is required")
	}
	if len(c.AllowedMXIDs) == 0 {
		return errors.New("ALLOWED_MXIDS must include at least one MXID")
	}
	if c.MatrixAccessToken == "" {
		if c.MatrixUser == "" || c.MatrixPassword == "" {
			return errors.New("set MATRIX_ACCESS_TOKEN or both MATRIX_USER and MATRIX_PASSWORD")
		}
	}
	if c.RCONPass == "" {
		return errors.New("RCON_PASS is required")
	}
	if c.RCONPort <= 0 || c.RCONPort > 65535 {
		return fmt.Errorf("invalid RCON_PORT: %d", c.RCONPort)
	}
	if c.RCONTimeout <= 0 {
		return fmt.Errorf("invalid RCON_TIMEOUT: %s", c.RCONTimeout)
	}
	if strings.TrimSpace(c.CommandPrefix) == "" {
		return errors.New("COMMAND_PREFIX must not be empty")
	}
	return nil
}

func parseAllowlist(input string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, raw := range strings.Split(input, ",") {
		mxid := strings.TrimSpace(raw)
		if mxid == "" {
			continue
		}
		out[mxid] = struct{}{}
	}
	return out
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func intEnvOrDefault(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func boolEnvOrDefault(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func durationEnvOrDefault(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
