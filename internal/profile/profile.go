package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/hrygo/spotmatch/internal/version"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where spotmatch stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your spotmatch instance.
	InstanceURL string
	// Timezone is the IANA timezone weekday names in partner responses are
	// resolved against. Defaults to UTC.
	Timezone string // SPOTMATCH_TIMEZONE

	// AI Configuration (escalation of unclear partner responses)
	AIEnabled bool   // SPOTMATCH_AI_ENABLED
	AIAPIKey  string // SPOTMATCH_AI_API_KEY
	AIBaseURL string // SPOTMATCH_AI_BASE_URL (default: https://api.openai.com/v1)
	AIModel   string // SPOTMATCH_AI_MODEL (default: gpt-4o-mini)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if escalation is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from SPOTMATCH_* environment variables.
func (p *Profile) FromEnv() {
	p.AIEnabled = os.Getenv("SPOTMATCH_AI_ENABLED") == "true"
	p.AIAPIKey = os.Getenv("SPOTMATCH_AI_API_KEY")
	p.AIBaseURL = getEnvOrDefault("SPOTMATCH_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIModel = getEnvOrDefault("SPOTMATCH_AI_MODEL", "gpt-4o-mini")
	p.Timezone = getEnvOrDefault("SPOTMATCH_TIMEZONE", "")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "spotmatch")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/spotmatch"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("spotmatch_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}

// GetProfile builds a profile from viper-bound flags and SPOTMATCH_*
// environment variables, then validates it.
func GetProfile() (*Profile, error) {
	profile := Profile{}
	if err := viper.Unmarshal(&profile); err != nil {
		return nil, err
	}
	profile.Version = version.GetCurrentVersion(profile.Mode)
	profile.FromEnv()
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}
