package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}

	if got := f.PollInterval(); got != 10*time.Second {
		t.Errorf("PollInterval() = %v, want 10s", got)
	}
	if got := f.Source(); got != "auto" {
		t.Errorf("Source() = %v, want auto", got)
	}
	if f.AutoRegister() {
		t.Errorf("AutoRegister() should default to false")
	}
	if got := f.HistorySize(); got != 360 {
		t.Errorf("HistorySize() = %v, want 360", got)
	}
	if got := f.MQTTBroker(); got != "" {
		t.Errorf("MQTTBroker() = %v, want empty", got)
	}
}

func TestFileLoad(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		wantErr      bool
		wantInterval time.Duration
		wantAuto     bool
	}{
		{name: "empty file", content: "  \n", wantInterval: 10 * time.Second},
		{name: "values", content: `{"pollInterval":"2s","autoRegister":true}`, wantInterval: 2 * time.Second, wantAuto: true},
		{name: "bad interval falls back", content: `{"pollInterval":"soon"}`, wantInterval: 10 * time.Second},
		{name: "negative interval falls back", content: `{"pollInterval":"-5s"}`, wantInterval: 10 * time.Second},
		{name: "broken json", content: `{"pollInterval":`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "battstat.json")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			f, err := NewFile(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := f.PollInterval(); got != tt.wantInterval {
				t.Errorf("PollInterval() = %v, want %v", got, tt.wantInterval)
			}
			if got := f.AutoRegister(); got != tt.wantAuto {
				t.Errorf("AutoRegister() = %v, want %v", got, tt.wantAuto)
			}
		})
	}
}

func TestFileSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battstat.json")
	f := NewFileFromConfig(nil, path)
	f.SetPollInterval(30 * time.Second)
	f.SetSource("sysfs")
	f.SetAutoRegister(true)
	f.SetHistorySize(12)

	if err := f.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	if loaded.PollInterval() != 30*time.Second || loaded.Source() != "sysfs" || !loaded.AutoRegister() || loaded.HistorySize() != 12 {
		t.Errorf("reloaded config = %#v", loaded.LogrusFields())
	}

	raw, err := NewRawFileConfigFromConfig(loaded)
	if err != nil {
		t.Fatalf("NewRawFileConfigFromConfig() error = %v", err)
	}
	if *raw.PollInterval != "30s" || *raw.MQTTTopic != "battstat/battery" {
		t.Errorf("raw config = %+v", raw)
	}
}

func TestNewRawFileConfigFromNil(t *testing.T) {
	if _, err := NewRawFileConfigFromConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
