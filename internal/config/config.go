package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"ticket-agent/internal/github"
	"ticket-agent/internal/scoring"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	GitHub      github.Config
	Owner       string
	Repo        string
	DatabaseURL string
	DataPath    string
	LogDir      string
	ExportDir   string
	Scoring     *scoring.Config
}

// RepoIdentifier returns "owner/repo".
func (c *AppConfig) RepoIdentifier() string {
	return fmt.Sprintf("%s/%s", c.Owner, c.Repo)
}

// Load loads the configuration from .env files, environment variables and
// the optional TOML scoring policy file.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory first
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	exportDir := filepath.Join(dataPath, "exports")

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", exportDir).Msg("Failed to create export directory")
	}

	owner, repo, err := splitRepo(getEnv("TICKET_REPO", ""))
	if err != nil {
		return nil, err
	}

	scoringCfg, err := loadScoringConfig(dataPath)
	if err != nil {
		return nil, err
	}

	delaySecs, _ := strconv.ParseFloat(getEnv("GITHUB_REQUEST_DELAY_SECONDS", "1"), 64)

	cfg := &AppConfig{
		GitHub: github.Config{
			BaseURL:      getEnv("GITHUB_API_URL", ""),
			Token:        getEnv("GITHUB_TOKEN", ""),
			RequestDelay: time.Duration(delaySecs * float64(time.Second)),
		},
		Owner:       owner,
		Repo:        repo,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DataPath:    dataPath,
		LogDir:      logDir,
		ExportDir:   exportDir,
		Scoring:     scoringCfg,
	}

	return cfg, nil
}

// loadScoringConfig returns the built-in policy, overlaid with the TOML file
// from SCORING_CONFIG (or <data path>/scoring.toml) when one exists.
func loadScoringConfig(dataPath string) (*scoring.Config, error) {
	cfg := scoring.DefaultConfig()

	path := os.Getenv("SCORING_CONFIG")
	if path == "" {
		candidate := filepath.Join(dataPath, "scoring.toml")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse scoring config %q: %w", path, err)
		}
		log.Debug().Str("path", path).Msg("Loaded scoring policy")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWeights parses a standalone TOML weight file for simulation runs.
// The file holds a [weights] table in the same shape as the scoring policy.
func LoadWeights(path string) (map[string]float64, error) {
	var doc struct {
		Weights map[string]float64 `toml:"weights"`
	}
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse weight file %q: %w", path, err)
	}
	if len(doc.Weights) == 0 {
		return nil, fmt.Errorf("weight file %q contains no [weights] table", path)
	}
	if err := scoring.ValidateWeights(doc.Weights); err != nil {
		return nil, err
	}
	return doc.Weights, nil
}

func splitRepo(identifier string) (string, string, error) {
	if identifier == "" {
		return "", "", nil // sync/rank commands validate presence themselves
	}
	parts := strings.SplitN(identifier, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("TICKET_REPO must look like owner/repo, got %q", identifier)
	}
	return parts[0], parts[1], nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
