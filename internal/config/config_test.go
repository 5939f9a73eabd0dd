package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestLoadResolvesAgainstConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wield.json")
	body := `{
  "model": "cowboy.json",
  "short_prop": "short-stick.json",
  "long_prop": "/abs/long-stick.json",
  "range_start": 2,
  "range_end": 4,
  "clamp": true,
  "held": "long",
  "toggle_every": 15
}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	cfg.Resolve(Flags{Frames: 12})

	if cfg.Model != filepath.Join(dir, "cowboy.json") {
		t.Fatalf("model path mismatch: %s", cfg.Model)
	}
	if cfg.LongProp != "/abs/long-stick.json" {
		t.Fatalf("absolute path should be kept: %s", cfg.LongProp)
	}
	if cfg.OutputDir != filepath.Join(dir, "renders") {
		t.Fatalf("output dir mismatch: %s", cfg.OutputDir)
	}
	if cfg.RangeStart != 2 || cfg.RangeEnd != 4 || !cfg.Clamp || cfg.ToggleEvery != 15 {
		t.Fatalf("animation settings mismatch: %+v", cfg)
	}
	if cfg.Frames != 12 || cfg.FPS != 30 || cfg.Held != "long" {
		t.Fatalf("frame settings mismatch: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
}

func TestResolveKeepsFlagPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wield.json")
	body := `{"model": "cowboy.json", "short_prop": "short-stick.json", "long_prop": "long-stick.json"}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	cfg.Resolve(Flags{Model: "assets/other.json", OutputDir: "out", Texture: "cowboy.png"})

	// Flag paths are relative to the working directory, not the config file.
	if cfg.Model != "assets/other.json" {
		t.Fatalf("flag model path should be kept: %s", cfg.Model)
	}
	if cfg.OutputDir != "out" {
		t.Fatalf("flag output dir should be kept: %s", cfg.OutputDir)
	}
	if cfg.Texture != "cowboy.png" {
		t.Fatalf("flag texture path should be kept: %s", cfg.Texture)
	}
	if cfg.ShortProp != filepath.Join(dir, "short-stick.json") {
		t.Fatalf("config path should resolve against config dir: %s", cfg.ShortProp)
	}
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{Model: "m.json", Held: "monkey", Workers: 3})

	if cfg.HandJoint != "Hand_R" || cfg.RangeStart != 6 || cfg.RangeEnd != 17 {
		t.Fatalf("animation defaults mismatch: %+v", cfg)
	}
	if cfg.RenderSize != 400 || cfg.Supersample != 2 || cfg.Frames != 60 {
		t.Fatalf("render defaults mismatch: %+v", cfg)
	}
	if cfg.Workers != 3 || cfg.Model != "m.json" || cfg.Held != "monkey" {
		t.Fatalf("flag overrides mismatch: %+v", cfg)
	}

	var auto Config
	auto.Resolve(Flags{})
	if auto.Workers != runtime.NumCPU() || auto.Held != "short" || auto.OutputDir != "renders" {
		t.Fatalf("auto defaults mismatch: %+v", auto)
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := Config{RangeStart: 5, RangeEnd: 2, Held: "sword"}
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"model", "short_prop", "long_prop", "range 5..2", "sword"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q should mention %q", err, want)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
