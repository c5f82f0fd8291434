package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeConfig(t, `
hostname: irc.example.org
motd: "line one\nline two"
listeners:
  plain:
    address: ":6667"
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if c.Hostname != "irc.example.org" {
		t.Errorf("Hostname = %q", c.Hostname)
	}
	lines := c.MOTDLines()
	if len(lines) != 2 || lines[0] != "line one" || lines[1] != "line two" {
		t.Errorf("MOTDLines = %v", lines)
	}
	if l, ok := c.Listeners["plain"]; !ok || l.Address != ":6667" {
		t.Errorf("Listeners[plain] = %+v, ok=%v", l, ok)
	}
}

func TestLoadMissingHostname(t *testing.T) {
	path := writeConfig(t, `
listeners:
  plain:
    address: ":6667"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing hostname")
	}
}

func TestLoadMissingListeners(t *testing.T) {
	path := writeConfig(t, `
hostname: irc.example.org
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing listeners")
	}
}

func TestLoadTLSListenerRequiresCertAndKey(t *testing.T) {
	path := writeConfig(t, `
hostname: irc.example.org
listeners:
  secure:
    address: ":6697"
    tls: true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for tls listener missing cert/key")
	}
}
