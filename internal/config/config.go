package config

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	envConfigPath   = "MAILSWEEP_CONFIG"
	envIMAPHost     = "MAILSWEEP_IMAP_HOST"
	envIMAPPort     = "MAILSWEEP_IMAP_PORT"
	envIMAPUser     = "MAILSWEEP_IMAP_USER"
	envIMAPPassword = "MAILSWEEP_IMAP_PASSWORD"
	envIMAPToken    = "MAILSWEEP_IMAP_TOKEN"
	envIMAPTLS      = "MAILSWEEP_IMAP_TLS"
	envWebhookURL   = "MAILSWEEP_WEBHOOK_URL"
)

const (
	AuthPassword = "password"
	AuthXOAuth2  = "xoauth2"

	DefaultHost      = "127.0.0.1"
	DefaultTLSPort   = 993
	DefaultPlainPort = 1143
	DefaultTrash     = "Trash"
	DefaultFolder    = "INBOX"
)

// Config holds the optional settings read from the YAML file. Secrets never
// live here.
type Config struct {
	Host          *string `yaml:"host"`
	Port          *int    `yaml:"port"`
	TLS           *bool   `yaml:"tls"`
	User          *string `yaml:"user"`
	Auth          string  `yaml:"auth"`
	TrashFolder   string  `yaml:"trash_folder"`
	DefaultFolder string  `yaml:"default_folder"`
}

// Overrides are the connection flags given on the command line. Zero values
// mean "not set".
type Overrides struct {
	Host string
	Port int
	TLS  *bool
	User string
}

// Settings is the resolved configuration a command runs with.
type Settings struct {
	Host          string
	Port          int
	TLS           bool
	User          string
	Password      string
	Token         string
	Auth          string
	TrashFolder   string
	DefaultFolder string
	WebhookURL    string
}

func (s Settings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Load reads configuration from a YAML file. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// LoadDefault loads the explicit path, then $MAILSWEEP_CONFIG, then the
// per-user default. Only the implicit default may be missing.
func LoadDefault(explicit string) (Config, string, error) {
	path := strings.TrimSpace(explicit)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(envConfigPath))
	}
	if path != "" {
		cfg, err := Load(path)
		return cfg, path, err
	}

	path, err := DefaultPath()
	if err != nil {
		return Config{}, "", nil
	}
	if _, err := os.Stat(path); err != nil {
		return Config{}, "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}

func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mailsweep", "config.yaml"), nil
}

// LoadDotEnv loads .env files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrapf(err, "load %s", p)
		}
	}
	return nil
}

// Validate checks values that can be checked without the environment.
func Validate(cfg Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Auth)) {
	case "", AuthPassword, AuthXOAuth2:
	default:
		return fmt.Errorf("auth must be %q or %q, got %q", AuthPassword, AuthXOAuth2, cfg.Auth)
	}
	if cfg.Port != nil && (*cfg.Port < 1 || *cfg.Port > 65535) {
		return fmt.Errorf("port %d out of range", *cfg.Port)
	}
	return nil
}

// Resolve merges flags, environment, file and defaults in that order.
func Resolve(cfg Config, flags Overrides) (Settings, error) {
	s := Settings{
		Auth:          AuthPassword,
		TrashFolder:   defaultIfEmpty(cfg.TrashFolder, DefaultTrash),
		DefaultFolder: defaultIfEmpty(cfg.DefaultFolder, DefaultFolder),
		Password:      os.Getenv(envIMAPPassword),
		Token:         strings.TrimSpace(os.Getenv(envIMAPToken)),
		WebhookURL:    strings.TrimSpace(os.Getenv(envWebhookURL)),
	}
	if a := strings.ToLower(strings.TrimSpace(cfg.Auth)); a != "" {
		s.Auth = a
	}

	switch {
	case flags.TLS != nil:
		s.TLS = *flags.TLS
	case strings.TrimSpace(os.Getenv(envIMAPTLS)) != "":
		v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(envIMAPTLS)))
		if err != nil {
			return Settings{}, fmt.Errorf("invalid %s: %w", envIMAPTLS, err)
		}
		s.TLS = v
	case cfg.TLS != nil:
		s.TLS = *cfg.TLS
	}

	s.Host = firstNonEmpty(flags.Host, os.Getenv(envIMAPHost), deref(cfg.Host), DefaultHost)
	s.User = firstNonEmpty(flags.User, os.Getenv(envIMAPUser), deref(cfg.User))

	switch {
	case flags.Port != 0:
		s.Port = flags.Port
	case strings.TrimSpace(os.Getenv(envIMAPPort)) != "":
		port, err := strconv.Atoi(strings.TrimSpace(os.Getenv(envIMAPPort)))
		if err != nil {
			return Settings{}, fmt.Errorf("invalid %s: %w", envIMAPPort, err)
		}
		s.Port = port
	case cfg.Port != nil:
		s.Port = *cfg.Port
	case s.TLS:
		s.Port = DefaultTLSPort
	default:
		s.Port = DefaultPlainPort
	}
	if s.Port < 1 || s.Port > 65535 {
		return Settings{}, fmt.Errorf("port %d out of range", s.Port)
	}

	if s.User == "" {
		return Settings{}, fmt.Errorf("IMAP username required (use -u/--user or %s)", envIMAPUser)
	}
	if s.Auth == AuthXOAuth2 && s.Token == "" {
		return Settings{}, fmt.Errorf("auth %q requires %s", AuthXOAuth2, envIMAPToken)
	}
	return s, nil
}

// Summary returns a one-screen description without secrets.
func Summary(s Settings) string {
	reporting := "disabled"
	if s.WebhookURL != "" {
		reporting = "enabled"
	}
	return fmt.Sprintf(
		"Config summary\n"+
			"- server: %s (tls: %t)\n"+
			"- user: %s (auth: %s)\n"+
			"- default folder: %s\n"+
			"- trash folder: %s\n"+
			"- reporting webhook: %s",
		s.Addr(), s.TLS, s.User, s.Auth, s.DefaultFolder, s.TrashFolder, reporting,
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func defaultIfEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
