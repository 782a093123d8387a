package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		envConfigPath, envIMAPHost, envIMAPPort, envIMAPUser,
		envIMAPPassword, envIMAPToken, envIMAPTLS, envWebhookURL,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadValid(t *testing.T) {
	path := writeTempFile(t, `
host: imap.example.com
port: 993
tls: true
user: me@example.com
auth: xoauth2
trash_folder: Deleted Items
default_folder: Archive
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Host == nil || *cfg.Host != "imap.example.com" {
		t.Fatalf("unexpected host: %v", cfg.Host)
	}
	if cfg.Port == nil || *cfg.Port != 993 {
		t.Fatalf("unexpected port: %v", cfg.Port)
	}
	if cfg.TLS == nil || !*cfg.TLS {
		t.Fatalf("expected tls true")
	}
	if cfg.Auth != AuthXOAuth2 {
		t.Fatalf("unexpected auth: %q", cfg.Auth)
	}
	if cfg.TrashFolder != "Deleted Items" || cfg.DefaultFolder != "Archive" {
		t.Fatalf("unexpected folders: %q %q", cfg.TrashFolder, cfg.DefaultFolder)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeTempFile(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Host != nil || cfg.Port != nil {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeTempFile(t, "hostname: imap.example.com\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestLoadRejectsBadAuth(t *testing.T) {
	path := writeTempFile(t, "auth: kerberos\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "auth must be") {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	path := writeTempFile(t, "port: 70000\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected port error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadDefaultExplicitMissingFails(t *testing.T) {
	clearEnv(t)
	if _, _, err := LoadDefault(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for explicit missing file")
	}
}

func TestLoadDefaultFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeTempFile(t, "user: env@example.com\n")
	t.Setenv(envConfigPath, path)

	cfg, used, err := LoadDefault("")
	if err != nil {
		t.Fatalf("LoadDefault returned error: %v", err)
	}
	if used != path {
		t.Fatalf("expected path %q, got %q", path, used)
	}
	if cfg.User == nil || *cfg.User != "env@example.com" {
		t.Fatalf("unexpected user: %v", cfg.User)
	}
}

func TestLoadDefaultImplicitMissingIsOptional(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, used, err := LoadDefault("")
	if err != nil {
		t.Fatalf("LoadDefault returned error: %v", err)
	}
	if used != "" || cfg.Host != nil {
		t.Fatalf("expected empty config, got %q %+v", used, cfg)
	}
}

func TestResolveDefaults(t *testing.T) {
	clearEnv(t)

	s, err := Resolve(Config{}, Overrides{User: "me"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if s.Host != DefaultHost || s.Port != DefaultPlainPort || s.TLS {
		t.Fatalf("unexpected connection defaults: %+v", s)
	}
	if s.TrashFolder != DefaultTrash || s.DefaultFolder != DefaultFolder {
		t.Fatalf("unexpected folder defaults: %+v", s)
	}
	if s.Auth != AuthPassword {
		t.Fatalf("unexpected auth: %q", s.Auth)
	}
	if s.Addr() != "127.0.0.1:1143" {
		t.Fatalf("unexpected addr: %q", s.Addr())
	}
}

func TestResolveTLSDefaultPort(t *testing.T) {
	clearEnv(t)
	on := true

	s, err := Resolve(Config{}, Overrides{User: "me", TLS: &on})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if s.Port != DefaultTLSPort {
		t.Fatalf("expected port %d, got %d", DefaultTLSPort, s.Port)
	}
}

func TestResolvePrecedence(t *testing.T) {
	clearEnv(t)
	fileHost, filePort, fileUser, fileTLS := "file.example.com", 1000, "file-user", false
	cfg := Config{Host: &fileHost, Port: &filePort, User: &fileUser, TLS: &fileTLS}

	s, err := Resolve(cfg, Overrides{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if s.Host != fileHost || s.Port != filePort || s.User != fileUser {
		t.Fatalf("expected file values, got %+v", s)
	}

	t.Setenv(envIMAPHost, "env.example.com")
	t.Setenv(envIMAPPort, "2000")
	t.Setenv(envIMAPUser, "env-user")
	t.Setenv(envIMAPTLS, "true")
	s, err = Resolve(cfg, Overrides{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if s.Host != "env.example.com" || s.Port != 2000 || s.User != "env-user" || !s.TLS {
		t.Fatalf("expected env values, got %+v", s)
	}

	off := false
	s, err = Resolve(cfg, Overrides{Host: "flag.example.com", Port: 3000, User: "flag-user", TLS: &off})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if s.Host != "flag.example.com" || s.Port != 3000 || s.User != "flag-user" || s.TLS {
		t.Fatalf("expected flag values, got %+v", s)
	}
}

func TestResolveSecretsFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(envIMAPPassword, "secret")
	t.Setenv(envWebhookURL, "https://hooks.example.com")

	s, err := Resolve(Config{}, Overrides{User: "me"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if s.Password != "secret" {
		t.Fatalf("expected password from env")
	}
	if s.WebhookURL != "https://hooks.example.com" {
		t.Fatalf("unexpected webhook: %q", s.WebhookURL)
	}
}

func TestResolveErrors(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		cfg     Config
		wantErr string
	}{
		{name: "missing user", wantErr: "username required"},
		{name: "bad port env", env: map[string]string{envIMAPUser: "me", envIMAPPort: "abc"}, wantErr: envIMAPPort},
		{name: "bad tls env", env: map[string]string{envIMAPUser: "me", envIMAPTLS: "maybe"}, wantErr: envIMAPTLS},
		{name: "xoauth2 without token", env: map[string]string{envIMAPUser: "me"}, cfg: Config{Auth: AuthXOAuth2}, wantErr: envIMAPToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Resolve(tc.cfg, Overrides{})
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("MAILSWEEP_IMAP_HOST=dotenv.example.com\n"), 0o600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Setenv(envIMAPHost, "")
	os.Unsetenv(envIMAPHost)

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}
	if got := os.Getenv(envIMAPHost); got != "dotenv.example.com" {
		t.Fatalf("expected host from .env, got %q", got)
	}
}

func TestSummaryHidesSecrets(t *testing.T) {
	s := Settings{Host: "h", Port: 993, TLS: true, User: "u", Password: "hunter2", Auth: AuthPassword, TrashFolder: "Trash", DefaultFolder: "INBOX"}
	out := Summary(s)
	if strings.Contains(out, "hunter2") {
		t.Fatalf("summary leaked password: %s", out)
	}
	if !strings.Contains(out, "h:993") || !strings.Contains(out, "reporting webhook: disabled") {
		t.Fatalf("unexpected summary: %s", out)
	}
}

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}
