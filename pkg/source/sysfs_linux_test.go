//go:build linux

package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charlie0129/battstat/pkg/battery"
)

func writeSupply(t *testing.T, root, name string, attrs map[string]string) {
	t.Helper()
	dir := filepath.Join(root, "class", "power_supply", name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for k, v := range attrs {
		if err := os.WriteFile(filepath.Join(dir, k), []byte(v+"\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSysfsRead(t *testing.T) {
	root := t.TempDir()
	writeSupply(t, root, "BAT0", map[string]string{
		"type":        "Battery",
		"status":      "Charging",
		"health":      "Good",
		"capacity":    "80",
		"voltage_now": "4200000",
		"temp":        "250",
		"technology":  "Li-ion",
		"present":     "1",
	})
	writeSupply(t, root, "AC", map[string]string{
		"type":   "Mains",
		"online": "1",
	})
	writeSupply(t, root, "usb", map[string]string{
		"type":   "USB",
		"online": "0",
	})

	s, err := NewSysfs(root, "")
	if err != nil {
		t.Fatalf("NewSysfs() error = %v", err)
	}
	extras, err := s.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	snap := battery.Decode(extras)
	if snap.Level != 80 || snap.VoltageMillivolts != 4200 || snap.TemperatureTenthsCelsius != 250 {
		t.Errorf("level/voltage/temp = %d/%d/%d", snap.Level, snap.VoltageMillivolts, snap.TemperatureTenthsCelsius)
	}
	if snap.Status != battery.StatusCharging || snap.Health != battery.HealthGood || snap.Source != battery.SourceAC {
		t.Errorf("status/health/source = %v/%v/%v", snap.Status, snap.Health, snap.Source)
	}
	if snap.Technology != "Li-ion" || !snap.IsCharging {
		t.Errorf("technology = %q, charging = %v", snap.Technology, snap.IsCharging)
	}
	if extras[battery.ExtraPresent] != true {
		t.Errorf("present = %v", extras[battery.ExtraPresent])
	}
}

func TestSysfsUnplugged(t *testing.T) {
	root := t.TempDir()
	writeSupply(t, root, "BAT1", map[string]string{
		"type":     "Battery",
		"status":   "Discharging",
		"health":   "Something new",
		"capacity": "42",
	})

	s, err := NewSysfs(root, "BAT1")
	if err != nil {
		t.Fatalf("NewSysfs() error = %v", err)
	}
	extras, err := s.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	snap := battery.Decode(extras)
	if snap.Source != battery.SourceNone || snap.Status != battery.StatusDischarging || snap.Health != battery.HealthUnknown {
		t.Errorf("source/status/health = %v/%v/%v", snap.Source, snap.Status, snap.Health)
	}
}

func TestSysfsNoBattery(t *testing.T) {
	root := t.TempDir()
	writeSupply(t, root, "AC", map[string]string{"type": "Mains", "online": "1"})

	if _, err := NewSysfs(root, ""); err == nil {
		t.Fatal("NewSysfs() should fail without a battery")
	}
	if _, err := NewSysfs(root, "BAT9"); err == nil {
		t.Fatal("NewSysfs() should fail for a missing supply")
	}
}
