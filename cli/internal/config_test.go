package cli

import (
	"testing"
)

func TestParseVerifySSL(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"true", true},
		{"1", true},
		{"yes", true},
		{"anything", true},
		{"false", false},
		{"FALSE", false},
		{"0", false},
		{"no", false},
		{"off", false},
	}
	for _, tt := range tests {
		if got := parseVerifySSL(tt.value); got != tt.want {
			t.Errorf("parseVerifySSL(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestConfigContexts(t *testing.T) {
	config := DefaultConfig()

	if config.CurrentContext != "default" {
		t.Fatalf("current context = %q, want default", config.CurrentContext)
	}

	staging := &Context{}
	staging.Server.URL = "https://gims.staging.example.com"
	config.AddContext("staging", staging)

	if err := config.SetCurrentContext("staging"); err != nil {
		t.Fatalf("SetCurrentContext: %v", err)
	}
	url, err := config.ServerURL()
	if err != nil {
		t.Fatalf("ServerURL: %v", err)
	}
	if url != "https://gims.staging.example.com" {
		t.Errorf("url = %q, want the staging URL", url)
	}

	if err := config.SetCurrentContext("nope"); err == nil {
		t.Error("SetCurrentContext to unknown context should fail")
	}
	if err := config.DeleteContext("staging"); err == nil {
		t.Error("deleting the current context should fail")
	}
	if err := config.DeleteContext("default"); err != nil {
		t.Errorf("DeleteContext(default): %v", err)
	}
}

func TestConfigSaveLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	config := DefaultConfig()
	prod := &Context{}
	prod.Server.URL = "https://gims.example.com"
	prod.Server.InsecureSkipVerify = true
	prod.Rendering.Theme = "dark"
	config.AddContext("prod", prod)
	if err := config.SetCurrentContext("prod"); err != nil {
		t.Fatalf("SetCurrentContext: %v", err)
	}

	if err := SaveConfig(config); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.CurrentContext != "prod" {
		t.Errorf("current context = %q, want prod", loaded.CurrentContext)
	}
	ctx, err := loaded.GetCurrentContext()
	if err != nil {
		t.Fatalf("GetCurrentContext: %v", err)
	}
	if ctx.Server.URL != "https://gims.example.com" || !ctx.Server.InsecureSkipVerify || ctx.Rendering.Theme != "dark" {
		t.Errorf("loaded context = %+v, want saved values", ctx)
	}
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config.CurrentContext != "default" {
		t.Errorf("current context = %q, want default", config.CurrentContext)
	}
	if _, ok := config.Contexts["default"]; !ok {
		t.Error("default context missing from freshly created config")
	}
}
