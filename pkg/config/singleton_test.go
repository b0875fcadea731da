package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func resetSingleton() {
	initOnce = *new(sync.Once)
	SetConfig(nil)
}

func TestInitialize(t *testing.T) {
	resetSingleton()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  listen_address: "127.0.0.1:7700"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if err := Initialize(configPath); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after Initialize")
	}
	if cfg.Server.ListenAddress != "127.0.0.1:7700" {
		t.Errorf("expected listen address %q, got %q", "127.0.0.1:7700", cfg.Server.ListenAddress)
	}
}

func TestInitialize_MultipleCallsIgnored(t *testing.T) {
	resetSingleton()

	tmpDir := t.TempDir()
	firstPath := filepath.Join(tmpDir, "first.yaml")
	secondPath := filepath.Join(tmpDir, "second.yaml")

	if err := os.WriteFile(firstPath, []byte(`server: {listen_address: "127.0.0.1:7701"}`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	if err := os.WriteFile(secondPath, []byte(`server: {listen_address: "127.0.0.1:7702"}`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if err := Initialize(firstPath); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := Initialize(secondPath); err != nil {
		t.Fatalf("second Initialize returned error: %v", err)
	}

	if got := GetConfig().Server.ListenAddress; got != "127.0.0.1:7701" {
		t.Errorf("second Initialize should be ignored, got listen address %q", got)
	}
}

func TestGetConfig_BeforeInitialize(t *testing.T) {
	resetSingleton()

	if cfg := GetConfig(); cfg != nil {
		t.Errorf("expected nil config before Initialize, got %+v", cfg)
	}
}

func TestSetConfig(t *testing.T) {
	resetSingleton()

	testCfg := DefaultConfig()
	testCfg.Server.ListenAddress = "10.0.0.1:1234"
	SetConfig(testCfg)

	got := GetConfig()
	if got == nil {
		t.Fatal("expected non-nil config after SetConfig")
	}
	if got.Server.ListenAddress != "10.0.0.1:1234" {
		t.Errorf("expected listen address %q, got %q", "10.0.0.1:1234", got.Server.ListenAddress)
	}
}

func TestReloadConfig(t *testing.T) {
	resetSingleton()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(`server: {listen_address: "127.0.0.1:7703"}`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	if err := Initialize(configPath); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	// Rewrite the file and reload
	if err := os.WriteFile(configPath, []byte(`server: {listen_address: "127.0.0.1:7704"}`), 0644); err != nil {
		t.Fatalf("failed to rewrite config file: %v", err)
	}
	if err := ReloadConfig(configPath); err != nil {
		t.Fatalf("ReloadConfig failed: %v", err)
	}

	if got := GetConfig().Server.ListenAddress; got != "127.0.0.1:7704" {
		t.Errorf("expected reloaded listen address %q, got %q", "127.0.0.1:7704", got)
	}
}

func TestReloadConfig_KeepsOldConfigOnFailure(t *testing.T) {
	resetSingleton()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(`server: {listen_address: "127.0.0.1:7705"}`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	if err := Initialize(configPath); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	// Break the file
	if err := os.WriteFile(configPath, []byte(`history: {backend: "redis"}`), 0644); err != nil {
		t.Fatalf("failed to rewrite config file: %v", err)
	}

	err := ReloadConfig(configPath)
	if err == nil {
		t.Fatal("expected reload to fail for invalid config")
	}
	if !strings.Contains(err.Error(), "failed to reload configuration") {
		t.Errorf("unexpected error: %v", err)
	}

	if got := GetConfig().Server.ListenAddress; got != "127.0.0.1:7705" {
		t.Errorf("expected old config to survive failed reload, got listen address %q", got)
	}
}

func TestMustGetConfig_PanicsWhenUninitialized(t *testing.T) {
	resetSingleton()

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected MustGetConfig to panic before Initialize")
		}
	}()
	MustGetConfig()
}

func TestMustGetConfig_AfterSetConfig(t *testing.T) {
	resetSingleton()
	SetConfig(DefaultConfig())

	cfg := MustGetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
}
