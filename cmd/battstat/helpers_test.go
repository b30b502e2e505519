package main

import (
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/charlie0129/battstat/pkg/config"
)

func TestConfigFlagsApply(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantErr      bool
		wantInterval time.Duration
		wantSource   string
		wantHistory  int
		wantAuto     bool
	}{
		{name: "no flags keeps config", args: nil, wantInterval: 10 * time.Second, wantSource: "auto", wantHistory: 360},
		{
			name:         "all flags",
			args:         []string{"--interval", "2s", "--source", "sysfs", "--history-size", "12", "--auto-register"},
			wantInterval: 2 * time.Second,
			wantSource:   "sysfs",
			wantHistory:  12,
			wantAuto:     true,
		},
		{name: "zero interval", args: []string{"--interval", "0s"}, wantErr: true},
		{name: "unknown source", args: []string{"--source", "smc"}, wantErr: true},
		{name: "empty history", args: []string{"--history-size", "0"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var flags configFlags
			cmd := &cobra.Command{Use: "test"}
			flags.register(cmd, true)
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			conf := config.NewFileFromConfig(nil, "")
			err := flags.apply(cmd, conf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("apply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := conf.PollInterval(); got != tt.wantInterval {
				t.Errorf("PollInterval() = %v, want %v", got, tt.wantInterval)
			}
			if got := conf.Source(); got != tt.wantSource {
				t.Errorf("Source() = %v, want %v", got, tt.wantSource)
			}
			if got := conf.HistorySize(); got != tt.wantHistory {
				t.Errorf("HistorySize() = %v, want %v", got, tt.wantHistory)
			}
			if got := conf.AutoRegister(); got != tt.wantAuto {
				t.Errorf("AutoRegister() = %v, want %v", got, tt.wantAuto)
			}
		})
	}
}

func TestConfigFlagsWithoutHistory(t *testing.T) {
	var flags configFlags
	cmd := &cobra.Command{Use: "watch"}
	flags.register(cmd, false)

	if cmd.Flags().Lookup("history-size") != nil {
		t.Error("watch should not take --history-size")
	}
	if err := cmd.Flags().Parse([]string{"--interval", "5s"}); err != nil {
		t.Fatal(err)
	}
	conf := config.NewFileFromConfig(nil, "")
	if err := flags.apply(cmd, conf); err != nil {
		t.Fatalf("apply() error = %v", err)
	}
	if conf.PollInterval() != 5*time.Second {
		t.Errorf("PollInterval() = %v", conf.PollInterval())
	}
}
