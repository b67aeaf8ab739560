package obs

import (
	"sort"
	"strings"
	"sync"
)

// Label is a key/value pair attached to measurements.
type Label struct {
	Key   string
	Value string
}

// Meter is a very small interface for emitting counters/histograms.
// Implementations may no-op or bridge to a metrics system.
type Meter interface {
	Counter(name string, value float64, labels ...Label)
	Histogram(name string, value float64, labels ...Label)
}

// NopMeter is a Meter that discards all measurements.
type NopMeter struct{}

func (NopMeter) Counter(name string, value float64, labels ...Label)   {}
func (NopMeter) Histogram(name string, value float64, labels ...Label) {}

// MemMeter keeps running totals in memory. Counters are summed; histograms
// record the number of observations and their sum. Safe for concurrent use.
type MemMeter struct {
	mu       sync.Mutex
	counters map[string]float64
	hcount   map[string]int
	hsum     map[string]float64
}

// NewMemMeter returns an empty MemMeter.
func NewMemMeter() *MemMeter {
	return &MemMeter{
		counters: make(map[string]float64),
		hcount:   make(map[string]int),
		hsum:     make(map[string]float64),
	}
}

func (m *MemMeter) Counter(name string, value float64, labels ...Label) {
	k := seriesKey(name, labels)
	m.mu.Lock()
	m.counters[k] += value
	m.mu.Unlock()
}

func (m *MemMeter) Histogram(name string, value float64, labels ...Label) {
	k := seriesKey(name, labels)
	m.mu.Lock()
	m.hcount[k]++
	m.hsum[k] += value
	m.mu.Unlock()
}

// Count returns the counter total for name and labels.
func (m *MemMeter) Count(name string, labels ...Label) float64 {
	k := seriesKey(name, labels)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[k]
}

// Observations returns how many histogram values were recorded.
func (m *MemMeter) Observations(name string, labels ...Label) int {
	k := seriesKey(name, labels)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hcount[k]
}

// seriesKey renders name{k=v,...} with labels sorted by key.
func seriesKey(name string, labels []Label) string {
	if len(labels) == 0 {
		return name
	}
	ls := make([]Label, len(labels))
	copy(ls, labels)
	sort.Slice(ls, func(i, j int) bool { return ls[i].Key < ls[j].Key })
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, l := range ls {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(l.Key)
		b.WriteByte('=')
		b.WriteString(l.Value)
	}
	b.WriteByte('}')
	return b.String()
}
