// Package config tests configuration loading.
package config

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate points HOME and the working directory at fresh temp dirs so the
// developer's own config files do not leak into tests.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, k := range []string{"TODOLIST_SEED", "TODOLIST_EXPORT", "TODOLIST_SCHEMA", "TODOLIST_LOG_DIR", "TODOLIST_LOG_LEVEL", "TODOLIST_LOG_FORMAT", "TODOLIST_ALT_SCREEN"} {
		t.Setenv(k, "")
	}

	work := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
	// Resolve symlinks (macOS /var -> /private/var) so paths compare equal.
	if wd, err := os.Getwd(); err == nil {
		work = wd
	}
	return work
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.LogDir != DefaultLogDir {
		t.Errorf("LogDir: got %q, want %q", cfg.LogDir, DefaultLogDir)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging: got %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if !cfg.AltScreen {
		t.Error("AltScreen: got false, want true")
	}
	if cfg.Theme.Accent != DefaultAccent {
		t.Errorf("Theme.Accent: got %q", cfg.Theme.Accent)
	}
}

func TestLoadDefaults(t *testing.T) {
	work := isolate(t)
	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WorkDir != work {
		t.Errorf("WorkDir: got %q, want %q", cfg.WorkDir, work)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".todolist", "logs"); cfg.LogDir != want {
		t.Errorf("LogDir: got %q, want %q", cfg.LogDir, want)
	}
	if cfg.ConfigFile != "" {
		t.Errorf("ConfigFile: got %q, want none", cfg.ConfigFile)
	}
}

func TestLoadPriority(t *testing.T) {
	work := isolate(t)
	home, _ := os.UserHomeDir()

	userDir := filepath.Join(home, ".todolist")
	if err := os.MkdirAll(userDir, 0755); err != nil {
		t.Fatal(err)
	}
	userToml := "seed_file = \"user.json\"\nlog_level = \"warn\"\nlog_format = \"json\"\n\n[theme]\naccent = \"#000000\"\n"
	if err := os.WriteFile(filepath.Join(userDir, "todolist.toml"), []byte(userToml), 0644); err != nil {
		t.Fatal(err)
	}
	projectToml := "seed_file = \"project.json\"\nalt_screen = false\n"
	if err := os.WriteFile(filepath.Join(work, "todolist.toml"), []byte(projectToml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TODOLIST_LOG_LEVEL", "debug")

	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), []string{"--export", "out.json"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if want := filepath.Join(work, "project.json"); cfg.SeedFile != want {
		t.Errorf("SeedFile: got %q, want %q", cfg.SeedFile, want)
	}
	if want := filepath.Join(work, "out.json"); cfg.ExportFile != want {
		t.Errorf("ExportFile: got %q, want %q", cfg.ExportFile, want)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want debug (env beats files)", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: got %q, want json", cfg.LogFormat)
	}
	if cfg.AltScreen {
		t.Error("AltScreen: got true, want false from project file")
	}
	if cfg.Theme.Accent != "#000000" || cfg.Theme.Done != DefaultDone {
		t.Errorf("Theme: got %+v", cfg.Theme)
	}
	if cfg.ConfigFile != filepath.Join(work, "todolist.toml") {
		t.Errorf("ConfigFile: got %q", cfg.ConfigFile)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	work := isolate(t)
	if err := os.WriteFile(filepath.Join(work, ".todolist.toml"), []byte("max_iterations = 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err == nil || !strings.Contains(err.Error(), "max_iterations") {
		t.Errorf("got %v, want unknown key error", err)
	}
}

func TestLoadValidatesLogSettings(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad level", []string{"--log-level", "loud"}},
		{"bad format", []string{"--log-format", "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			if _, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TODOLIST_SEED", "/abs/seed.json")
	t.Setenv("TODOLIST_ALT_SCREEN", "no")
	t.Setenv("TODOLIST_LOG_FORMAT", "LOGFMT")

	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SeedFile != "/abs/seed.json" {
		t.Errorf("SeedFile: got %q", cfg.SeedFile)
	}
	if cfg.AltScreen {
		t.Error("AltScreen: got true")
	}
	if cfg.LogFormat != "logfmt" {
		t.Errorf("LogFormat: got %q, want logfmt", cfg.LogFormat)
	}
}

func TestStdinPathsStayAsIs(t *testing.T) {
	if got := resolvePath("/work", "-"); got != "-" {
		t.Errorf("resolvePath(-): got %q", got)
	}
	if got := resolvePath("/work", ""); got != "" {
		t.Errorf("resolvePath(empty): got %q", got)
	}
}

func TestResolvePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TODOLIST_TEST_DIR", "snaps")
	cfg := &Config{WorkDir: "/work"}

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"-", "-"},
		{"~/seed.json", filepath.Join(home, "seed.json")},
		{"out.json", filepath.Join("/work", "out.json")},
		{"$TODOLIST_TEST_DIR/out.json", filepath.Join("/work", "snaps", "out.json")},
	}
	for _, tt := range tests {
		if got := cfg.ResolvePath(tt.in); got != tt.want {
			t.Errorf("ResolvePath(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncode(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"log_level = \"info\"", "[theme]", "alt_screen = true"} {
		if !strings.Contains(out, want) {
			t.Errorf("encoded config missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "WorkDir") {
		t.Errorf("derived fields leaked into encoding:\n%s", out)
	}
}

func TestBoolFromString(t *testing.T) {
	for in, want := range map[string]bool{"1": true, "TRUE": true, " yes ": true, "on": true, "0": false, "off": false, "": false} {
		if got := boolFromString(in); got != want {
			t.Errorf("boolFromString(%q): got %v, want %v", in, got, want)
		}
	}
}
