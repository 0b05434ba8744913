package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "chatd.yaml", "port: 9000\nctx_size: 4096\ngpu_layers: 0\nresponse_mode: json\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9000 || cfg.CtxSize != 4096 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.GPULayers == nil || *cfg.GPULayers != 0 {
		t.Fatalf("gpu_layers=%v, want explicit 0", cfg.GPULayers)
	}
	if cfg.ResponseMode != "json" {
		t.Fatalf("response_mode=%q", cfg.ResponseMode)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "chatd.json", `{"port": 8001, "threads": 8, "max_wait_seconds": 60}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8001 || cfg.Threads != 8 || cfg.MaxWaitSeconds != 60 {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "chatd.toml", "port = 8002\nlog_level = \"debug\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8002 || cfg.LogLevel != "debug" {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoadUnsetGPULayersIsNil(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "chatd.yaml", "port: 9000\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GPULayers != nil {
		t.Fatalf("gpu_layers=%v, want nil", cfg.GPULayers)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "chatd.ini", "port=1")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error for .ini")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
