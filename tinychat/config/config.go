package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrEmptyRoom     = errors.New("room is required")
	ErrEmptyNickname = errors.New("nickname is required")
)

// Config holds everything needed to start one session
type Config struct {
	Room        string        `env:"TINYCHAT_ROOM"`
	Nickname    string        `env:"TINYCHAT_NICK"`
	TokenURL    string        `env:"TINYCHAT_TOKEN_URL" envDefault:"https://tinychat.com/api/v1.0/room/token"`
	TokenPath   string        `env:"TINYCHAT_TOKEN_PATH" envDefault:"result"`
	SocketURL   string        `env:"TINYCHAT_SOCKET_URL" envDefault:"wss://wss.tinychat.com"`
	HTTPTimeout time.Duration `env:"TINYCHAT_HTTP_TIMEOUT" envDefault:"10s"`
	RecordPath  string        `env:"TINYCHAT_RECORD"`
	Debug       bool          `env:"TINYCHAT_DEBUG"`
}

// Load reads the given dotenv files (".env" when none are given) and then
// the process environment. Missing dotenv files are not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Validate checks the whole configuration and reports every problem found.
func (c *Config) Validate() error {
	var problems []string

	if err := ValidateRoom(c.Room); err != nil {
		problems = append(problems, err.Error())
	}
	if err := ValidateNickname(c.Nickname); err != nil {
		problems = append(problems, err.Error())
	}
	if err := validateURL(c.TokenURL, "http", "https"); err != nil {
		problems = append(problems, fmt.Sprintf("token URL: %v", err))
	}
	if err := validateURL(c.SocketURL, "ws", "wss"); err != nil {
		problems = append(problems, fmt.Sprintf("socket URL: %v", err))
	}
	if strings.TrimSpace(c.TokenPath) == "" {
		problems = append(problems, "token path is empty")
	}
	if c.HTTPTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("HTTP timeout must be positive, got %s", c.HTTPTimeout))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ValidateRoom checks a room name. Room names become a URL path segment of
// the token endpoint, so slashes and whitespace are rejected.
func ValidateRoom(room string) error {
	if room == "" {
		return ErrEmptyRoom
	}
	if strings.ContainsRune(room, '/') {
		return fmt.Errorf("room %q contains '/'", room)
	}
	if strings.IndexFunc(room, unicode.IsSpace) >= 0 {
		return fmt.Errorf("room %q contains whitespace", room)
	}
	return nil
}

// ValidateNickname checks a nickname.
func ValidateNickname(nick string) error {
	if strings.TrimSpace(nick) == "" {
		return ErrEmptyNickname
	}
	if strings.IndexFunc(nick, unicode.IsControl) >= 0 {
		return fmt.Errorf("nickname %q contains control characters", nick)
	}
	return nil
}

func validateURL(raw string, schemes ...string) error {
	if raw == "" {
		return errors.New("empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("%q must use one of %v", raw, schemes)
}
