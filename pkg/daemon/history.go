package daemon

import (
	"math"
	"sync"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/charlie0129/battstat/pkg/battery"
	"github.com/charlie0129/battstat/pkg/events"
)

// HistoryRecord is one battery reading kept by History.
type HistoryRecord struct {
	Time                     time.Time `json:"time"`
	Level                    int       `json:"level"`
	Status                   string    `json:"status"`
	VoltageMillivolts        int       `json:"voltageMillivolts"`
	TemperatureTenthsCelsius *int      `json:"temperatureTenthsCelsius,omitempty"`
}

// HistorySummary is what GET /history returns.
type HistorySummary struct {
	Count                  int             `json:"count"`
	LevelMin               *float64        `json:"levelMin,omitempty"`
	LevelMax               *float64        `json:"levelMax,omitempty"`
	LevelMean              *float64        `json:"levelMean,omitempty"`
	TemperatureMeanCelsius *float64        `json:"temperatureMeanCelsius,omitempty"`
	TemperatureMaxCelsius  *float64        `json:"temperatureMaxCelsius,omitempty"`
	Records                []HistoryRecord `json:"records"`
}

// History records the last N battery-changed events.
type History struct {
	MaxRecordCount int

	mu      *sync.Mutex
	records []HistoryRecord
}

func NewHistory(maxRecordCount int) *History {
	if maxRecordCount < 1 {
		maxRecordCount = 1
	}
	return &History{
		MaxRecordCount: maxRecordCount,
		records:        make([]HistoryRecord, 0),
		mu:             &sync.Mutex{},
	}
}

func (h *History) Name() string { return "history" }

func (h *History) OnReceive(e events.Event) {
	snap := battery.Decode(e.Extras)

	r := HistoryRecord{
		// Round to strip monotonic clock reading.
		Time:              e.Time.Round(0),
		Level:             snap.Level,
		Status:            snap.Status.String(),
		VoltageMillivolts: snap.VoltageMillivolts,
	}
	if snap.Has(battery.ExtraTemperature) {
		t := snap.TemperatureTenthsCelsius
		r.TemperatureTenthsCelsius = &t
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.records) >= h.MaxRecordCount {
		h.records = h.records[1:]
	}
	h.records = append(h.records, r)
}

// Records returns a copy of the records, oldest first.
func (h *History) Records() []HistoryRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]HistoryRecord(nil), h.records...)
}

// Summary computes level and temperature statistics over the records.
func (h *History) Summary() HistorySummary {
	records := h.Records()
	s := HistorySummary{Count: len(records), Records: records}

	var levels, temps stats.Float64Data
	for _, r := range records {
		levels = append(levels, float64(r.Level))
		if r.TemperatureTenthsCelsius != nil {
			temps = append(temps, float64(*r.TemperatureTenthsCelsius)/10)
		}
	}

	s.LevelMin = stat(stats.Min, levels)
	s.LevelMax = stat(stats.Max, levels)
	s.LevelMean = stat(stats.Mean, levels)
	s.TemperatureMeanCelsius = stat(stats.Mean, temps)
	s.TemperatureMaxCelsius = stat(stats.Max, temps)

	return s
}

// stat applies fn and drops the result when there is no data.
func stat(fn func(stats.Float64Data) (float64, error), data stats.Float64Data) *float64 {
	v, err := fn(data)
	if err != nil {
		return nil
	}
	v = math.Round(v*100) / 100
	return &v
}
