package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/yourusername/wise/internal/layout"
)

func TestParseBundleID(t *testing.T) {
	tests := []struct {
		input string
		want  string
		index int // -1 when valid
		char  rune
	}{
		{"com.apple.Safari", "com.apple.Safari", -1, 0},
		{"org.mozilla.firefox", "org.mozilla.firefox", -1, 0},
		{"com.example.my-app2", "com.example.my-app2", -1, 0},
		{"  com.apple.finder  ", "com.apple.finder", -1, 0},
		{"com.apple.Safari!", "", 16, '!'},
		{"com apple", "", 3, ' '},
		{"com.exämple", "", 6, 'ä'},
		{"com_example", "", 3, '_'},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBundleID(tt.input)
			if tt.index < 0 {
				if err != nil || got != tt.want {
					t.Errorf("ParseBundleID(%q) = (%q, %v), want %q", tt.input, got, err, tt.want)
				}
				return
			}
			var idErr *BundleIDError
			if !errors.As(err, &idErr) {
				t.Fatalf("ParseBundleID(%q) error = %v, want *BundleIDError", tt.input, err)
			}
			if idErr.Index != tt.index || idErr.Char != tt.char {
				t.Errorf("error at (%d, %q), want (%d, %q)", idErr.Index, idErr.Char, tt.index, tt.char)
			}
		})
	}

	if _, err := ParseBundleID("   "); err == nil {
		t.Error("empty bundle ID should be rejected")
	}
}

func TestReadBundleIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.txt")
	content := "# managed apps\ncom.apple.Safari\n\n  org.mozilla.firefox # browser\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	ids, err := ReadBundleIDs(path)
	if err != nil {
		t.Fatalf("ReadBundleIDs() error = %v", err)
	}
	if len(ids) != 2 || ids[0] != "com.apple.Safari" || ids[1] != "org.mozilla.firefox" {
		t.Errorf("ReadBundleIDs() = %v", ids)
	}
}

func TestReadBundleIDs_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.txt")
	os.WriteFile(path, []byte("com.apple.Safari\ncom/apple\n"), 0644)

	_, err := ReadBundleIDs(path)
	var idErr *BundleIDError
	if !errors.As(err, &idErr) || idErr.Index != 3 {
		t.Errorf("ReadBundleIDs() error = %v, want invalid character at index 3", err)
	}

	if _, err := ReadBundleIDs(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestMergeBundleIDs(t *testing.T) {
	got := MergeBundleIDs(
		[]string{"com.apple.Safari", "com.apple.finder"},
		[]string{"com.apple.safari", "org.mozilla.firefox"},
	)
	want := []string{"com.apple.Safari", "com.apple.finder", "org.mozilla.firefox"}
	if len(got) != len(want) {
		t.Fatalf("MergeBundleIDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MergeBundleIDs()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLoadConfigFromBytes_YAML(t *testing.T) {
	data := []byte(`
apps:
  - com.apple.Safari
  - org.mozilla.firefox
bridge:
  socket: /tmp/test-bridge.sock
  timeout: 2s
prompt: false
insets:
  left: 10
  right: 10
  top: 0
  bottom: 10
  innerSpacing: 20
  notch: 0
`)
	cfg, err := LoadConfigFromBytes(data, "yaml")
	if err != nil {
		t.Fatalf("LoadConfigFromBytes() error = %v", err)
	}
	if len(cfg.Apps) != 2 || cfg.Apps[1] != "org.mozilla.firefox" {
		t.Errorf("Apps = %v", cfg.Apps)
	}
	if cfg.Bridge.Socket != "/tmp/test-bridge.sock" {
		t.Errorf("Socket = %q", cfg.Bridge.Socket)
	}
	if cfg.Bridge.Timeout.Std() != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", cfg.Bridge.Timeout.Std())
	}
	if cfg.ShouldPrompt() {
		t.Error("ShouldPrompt() = true, want false")
	}
	want := layout.Insets{Left: 10, Right: 10, Bottom: 10, InnerSpacing: 20}
	if got := cfg.GetInsets(); got != want {
		t.Errorf("GetInsets() = %+v, want %+v", got, want)
	}
}

func TestLoadConfigFromBytes_JSON(t *testing.T) {
	data := []byte(`{"apps": ["com.apple.Safari"], "bridge": {"timeout": "750ms"}}`)

	cfg, err := LoadConfigFromBytes(data, "json")
	if err != nil {
		t.Fatalf("LoadConfigFromBytes() error = %v", err)
	}
	if cfg.Bridge.Timeout.Std() != 750*time.Millisecond {
		t.Errorf("Timeout = %v, want 750ms", cfg.Bridge.Timeout.Std())
	}
	// Omitted fields keep their defaults.
	if !cfg.ShouldPrompt() {
		t.Error("ShouldPrompt() should default to true")
	}
	if cfg.GetInsets() != layout.DefaultInsets() {
		t.Errorf("GetInsets() = %+v, want defaults", cfg.GetInsets())
	}
}

func TestLoadConfigFromBytes_TOML(t *testing.T) {
	data := []byte(`
apps = ["com.apple.Safari", "com.apple.finder"]
prompt = false

[bridge]
timeout = "1s"

[insets]
left = 4.0
right = 4.0
top = 0.0
bottom = 4.0
innerSpacing = 8.0
notch = 24.0
`)
	cfg, err := LoadConfigFromBytes(data, "toml")
	if err != nil {
		t.Fatalf("LoadConfigFromBytes() error = %v", err)
	}
	if len(cfg.Apps) != 2 || cfg.Apps[1] != "com.apple.finder" {
		t.Errorf("Apps = %v", cfg.Apps)
	}
	if cfg.Bridge.Timeout.Std() != time.Second {
		t.Errorf("Timeout = %v, want 1s", cfg.Bridge.Timeout.Std())
	}
	if cfg.ShouldPrompt() {
		t.Error("ShouldPrompt() = true, want false")
	}
	want := layout.Insets{Left: 4, Right: 4, Bottom: 4, InnerSpacing: 8, Notch: 24}
	if got := cfg.GetInsets(); got != want {
		t.Errorf("GetInsets() = %+v, want %+v", got, want)
	}
}

func TestLoadConfigFromBytes_PartialInsets(t *testing.T) {
	cfg, err := LoadConfigFromBytes([]byte("insets:\n  notch: 0\n"), "yaml")
	if err != nil {
		t.Fatalf("LoadConfigFromBytes() error = %v", err)
	}
	want := layout.DefaultInsets()
	want.Notch = 0
	if got := cfg.GetInsets(); got != want {
		t.Errorf("GetInsets() = %+v, want %+v", got, want)
	}
}

func TestLoadConfigFromBytes_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{"invalid bundle id", "apps: [com.apple.Safari, 'bad id']", "yaml"},
		{"duplicate app", "apps: [com.apple.Safari, com.apple.safari]", "yaml"},
		{"negative inset", "insets: {left: -1}", "yaml"},
		{"bad duration", "bridge: {timeout: soon}", "yaml"},
		{"negative timeout", "bridge: {timeout: -1s}", "yaml"},
		{"malformed json", "{", "json"},
		{"unknown format", "apps: []", "ini"},
		{"malformed toml", "apps = [", "toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfigFromBytes([]byte(tt.data), tt.format); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wise.yml")
	os.WriteFile(path, []byte("apps: [com.apple.Safari]\n"), 0644)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.Apps) != 1 {
		t.Errorf("Apps = %v", cfg.Apps)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("explicit missing path should fail")
	}
}

func TestLoadConfig_DefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.Apps) != 0 || !cfg.ShouldPrompt() {
		t.Errorf("LoadConfig() without a file = %+v, want defaults", cfg)
	}

	dir := filepath.Join(home, DefaultConfigDir)
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"apps": ["com.apple.finder"]}`), 0644)

	cfg, err = LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.Apps) != 1 || cfg.Apps[0] != "com.apple.finder" {
		t.Errorf("Apps = %v, want the JSON file's", cfg.Apps)
	}
}

func TestApplyOverrides_Env(t *testing.T) {
	t.Setenv("WISE_SOCKET", "/tmp/env.sock")
	t.Setenv("WISE_TIMEOUT", "3s")

	cfg := Default()
	cfg.Bridge.Socket = "/tmp/file.sock"
	if err := cfg.ApplyOverrides(NewViper()); err != nil {
		t.Fatalf("ApplyOverrides() error = %v", err)
	}
	if cfg.Bridge.Socket != "/tmp/env.sock" {
		t.Errorf("Socket = %q, want the environment value", cfg.Bridge.Socket)
	}
	if cfg.Bridge.Timeout.Std() != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cfg.Bridge.Timeout.Std())
	}
}

func TestApplyOverrides_Flags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("socket", "", "")
	flags.Duration("timeout", 0, "")
	flags.Bool("prompt", true, "")

	v := NewViper()
	if err := v.BindPFlags(flags); err != nil {
		t.Fatal(err)
	}
	if err := flags.Parse([]string{"--prompt=false"}); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Bridge.Socket = "/tmp/file.sock"
	if err := cfg.ApplyOverrides(v); err != nil {
		t.Fatalf("ApplyOverrides() error = %v", err)
	}
	if cfg.Bridge.Socket != "/tmp/file.sock" {
		t.Errorf("unset flag overrode the file: %q", cfg.Bridge.Socket)
	}
	if cfg.ShouldPrompt() {
		t.Error("--prompt=false was not applied")
	}
}
