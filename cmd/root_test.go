package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestConfigDefaults(t *testing.T) {
	v := viper.New()
	if err := setupViper(v); err != nil {
		t.Fatalf("setup viper: %v", err)
	}

	config, err := getConfig(v)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}

	if config.Server.Address != ":5000" {
		t.Fatalf("unexpected address %q", config.Server.Address)
	}
	if config.Server.MaxBodyBytes != 20<<20 {
		t.Fatalf("unexpected max body %d", config.Server.MaxBodyBytes)
	}
	if config.Render.DPI != 150 || config.Render.JPEGQuality != 90 || config.Render.MaxPixels != 16<<20 {
		t.Fatalf("unexpected render config %+v", config.Render)
	}
	if config.Gemini.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected model %q", config.Gemini.Model)
	}
	if config.Gemini.Timeout != time.Minute {
		t.Fatalf("unexpected timeout %s", config.Gemini.Timeout)
	}
	if config.Gemini.MaxAttempts != 1 {
		t.Fatalf("unexpected attempts %d", config.Gemini.MaxAttempts)
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("RESUME_ANALYZER_SERVER_ADDRESS", "127.0.0.1:8080")
	t.Setenv("RESUME_ANALYZER_GEMINI_MAX_ATTEMPTS", "3")
	t.Setenv("RESUME_ANALYZER_RENDER_JPEG_QUALITY", "75")
	t.Setenv("GOOGLE_API_KEY", "from-google-env")

	v := viper.New()
	if err := setupViper(v); err != nil {
		t.Fatalf("setup viper: %v", err)
	}

	config, err := getConfig(v)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}

	if config.Server.Address != "127.0.0.1:8080" {
		t.Fatalf("unexpected address %q", config.Server.Address)
	}
	if config.Gemini.MaxAttempts != 3 {
		t.Fatalf("unexpected attempts %d", config.Gemini.MaxAttempts)
	}
	if config.Render.JPEGQuality != 75 {
		t.Fatalf("unexpected quality %d", config.Render.JPEGQuality)
	}
	if config.Gemini.APIKey != "from-google-env" {
		t.Fatalf("unexpected api key %q", config.Gemini.APIKey)
	}
}

func TestModeIDs(t *testing.T) {
	ids := modeIDs()
	if len(ids) != 2 || ids[0] != "tell_me_about_resume" || ids[1] != "percentage_match" {
		t.Fatalf("unexpected mode ids %v", ids)
	}
}

func TestResolveMode(t *testing.T) {
	picked := func() (string, error) { return "percentage_match", nil }
	failing := func() (string, error) {
		t.Fatal("picker must not run")
		return "", nil
	}

	tests := []struct {
		name        string
		mode        string
		interactive bool
		pick        func() (string, error)
		want        string
		wantErr     error
	}{
		{name: "flag wins", mode: " tell_me_about_resume ", interactive: true, pick: failing, want: "tell_me_about_resume"},
		{name: "flag without terminal", mode: "percentage_match", pick: failing, want: "percentage_match"},
		{name: "asks on terminal", interactive: true, pick: picked, want: "percentage_match"},
		{name: "job read from stdin", pick: failing, wantErr: errModeRequired},
	}

	for _, tt := range tests {
		got, err := resolveMode(tt.mode, tt.interactive, tt.pick)
		if !errors.Is(err, tt.wantErr) {
			t.Fatalf("%s: expected error %v, got %v", tt.name, tt.wantErr, err)
		}
		if got != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}
