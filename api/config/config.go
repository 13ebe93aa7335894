/* config.go
 * Contains the application configuration, read from an optional .env file and the environment
 * Authors: Zachary Bower
 */

package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting of the importer. Zero values mean "not configured"
type Config struct {
	MongoURI string
	MongoDB  string

	RedisURL string
	CacheTTL time.Duration

	HTTPAddr string

	DiscordToken     string
	DiscordChannelID string
	DiscordNotify    bool
	NotifyInterval   time.Duration
	NotifyBurst      int

	SheetFilter  string
	ProfilesFile string

	LogLevel  slog.Level
	LogFormat string
}

// Defaults returns the configuration used for unset variables
func Defaults() Config {
	return Config{
		MongoDB:        "tournament_importer",
		CacheTTL:       24 * time.Hour,
		HTTPAddr:       ":8080",
		NotifyInterval: 2 * time.Second,
		NotifyBurst:    5,
		LogLevel:       slog.LevelInfo,
		LogFormat:      "text",
	}
}

// Load reads the .env files (missing files are ignored), then the environment, and validates the result
// Preconditions: Receives the .env files to read, none reads ".env"
// Postconditions: Returns the configuration or the first invalid variable
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("error loading %s: %w", file, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds the configuration from a variable lookup function
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Defaults()
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("MONGO_URI"); ok {
		c.MongoURI = v
	}
	if v, ok := get("MONGO_DB"); ok {
		c.MongoDB = v
	}
	if v, ok := get("REDIS_URL"); ok {
		c.RedisURL = v
	}
	if v, ok := get("HTTP_ADDR"); ok {
		c.HTTPAddr = v
	}
	if v, ok := get("DISCORD_TOKEN"); ok {
		c.DiscordToken = v
	}
	if v, ok := get("DISCORD_CHANNEL_ID"); ok {
		c.DiscordChannelID = v
	}
	if v, ok := get("SHEET_FILTER"); ok {
		c.SheetFilter = v
	}
	if v, ok := get("PROFILES_FILE"); ok {
		c.ProfilesFile = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		c.LogFormat = strings.ToLower(v)
	}

	var err error
	if v, ok := get("CACHE_TTL"); ok {
		if c.CacheTTL, err = time.ParseDuration(v); err != nil {
			return Config{}, fmt.Errorf("invalid CACHE_TTL: %w", err)
		}
	}
	if v, ok := get("NOTIFY_INTERVAL"); ok {
		if c.NotifyInterval, err = time.ParseDuration(v); err != nil {
			return Config{}, fmt.Errorf("invalid NOTIFY_INTERVAL: %w", err)
		}
	}
	if v, ok := get("NOTIFY_BURST"); ok {
		if c.NotifyBurst, err = strconv.Atoi(v); err != nil {
			return Config{}, fmt.Errorf("invalid NOTIFY_BURST: %w", err)
		}
	}
	if v, ok := get("DISCORD_NOTIFY"); ok {
		if c.DiscordNotify, err = ConvertStrToBool(v); err != nil {
			return Config{}, fmt.Errorf("invalid DISCORD_NOTIFY: %w", err)
		}
	}
	if v, ok := get("LOG_LEVEL"); ok {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}

	return c, c.Validate()
}

// Validate checks the combinations of settings
func (c Config) Validate() error {
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid LOG_FORMAT %q: expected text or json", c.LogFormat)
	}
	if c.NotifyBurst < 1 {
		return fmt.Errorf("NOTIFY_BURST must be positive")
	}
	if c.NotifyInterval <= 0 {
		return fmt.Errorf("NOTIFY_INTERVAL must be positive")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL cannot be negative")
	}
	if c.DiscordNotify && (c.DiscordToken == "" || c.DiscordChannelID == "") {
		return fmt.Errorf("DISCORD_NOTIFY requires DISCORD_TOKEN and DISCORD_CHANNEL_ID")
	}
	return nil
}

// Logger builds the slog logger described by the configuration
func (c Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
