package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/charlie0129/battstat/pkg/config"
	"github.com/charlie0129/battstat/pkg/source"
)

// configFlags override config file values for a single run. Only flags set
// on the command line are applied.
type configFlags struct {
	interval     time.Duration
	source       string
	historySize  int
	autoRegister bool
}

func (f *configFlags) register(cmd *cobra.Command, withHistory bool) {
	fs := cmd.Flags()
	fs.DurationVar(&f.interval, "interval", source.DefaultInterval, "how often the battery is read")
	fs.StringVar(&f.source, "source", source.KindAuto, "battery source (auto, sysfs, distatus)")
	fs.BoolVar(&f.autoRegister, "auto-register", false, "subscribe to battery events as soon as the screen is shown")
	if withHistory {
		fs.IntVar(&f.historySize, "history-size", 360, "number of battery readings kept in history")
	}
}

func (f *configFlags) apply(cmd *cobra.Command, conf config.Config) error {
	fs := cmd.Flags()

	if fs.Changed("interval") {
		if f.interval <= 0 {
			return fmt.Errorf("invalid interval %s: must be positive", f.interval)
		}
		conf.SetPollInterval(f.interval)
	}
	if fs.Changed("source") {
		switch f.source {
		case source.KindAuto, source.KindSysfs, source.KindDistatus:
		default:
			return fmt.Errorf("unknown battery source %q", f.source)
		}
		conf.SetSource(f.source)
	}
	if fs.Changed("history-size") {
		if f.historySize < 1 {
			return fmt.Errorf("invalid history size %d: must be at least 1", f.historySize)
		}
		conf.SetHistorySize(f.historySize)
	}
	if fs.Changed("auto-register") {
		conf.SetAutoRegister(f.autoRegister)
	}

	return nil
}
