// Package config loads the daemon configuration from the environment. A
// .env file in the working directory is honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the daemon configuration.
type Config struct {
	APIHost       string
	APIPort       int
	DataDir       string // storage directory for the key-value database
	LogLevel      string
	LogOutput     string
	SubmissionFee uint64 // proposal submission fee in base units, 0 selects the default
	SplitReset    bool   // archive and reset as two separate operations
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvUint64(key string, def uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

// Load reads the configuration from the environment, loading a .env file
// first if one exists in the working directory.
func Load() Config {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
	home, _ := os.UserHomeDir()
	return Config{
		APIHost:       getenv("MURAL_API_HOST", "0.0.0.0"),
		APIPort:       getenvInt("MURAL_API_PORT", 9090),
		DataDir:       getenv("MURAL_DATADIR", home+"/.mural"),
		LogLevel:      getenv("MURAL_LOG_LEVEL", "info"),
		LogOutput:     getenv("MURAL_LOG_OUTPUT", "stdout"),
		SubmissionFee: getenvUint64("MURAL_SUBMISSION_FEE", 0),
		SplitReset:    getenvBool("MURAL_SPLIT_RESET", false),
	}
}

func (c Config) String() string {
	return fmt.Sprintf("api=%s:%d datadir=%s log=%s fee=%d splitReset=%v",
		c.APIHost, c.APIPort, c.DataDir, c.LogLevel, c.SubmissionFee, c.SplitReset)
}
