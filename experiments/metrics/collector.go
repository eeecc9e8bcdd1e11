package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	SearchID       string
	Duration       time.Duration
	Iterations     int
	Expansions     int
	FullPlayouts   int
	CutoffPlayouts int
	TreeSize       int
	Skipped        bool
}

type MoveMetric struct {
	Step   int
	Player int // Player ID
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int // Player ID
	Winner         int // Final status: player ID or draw marker
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(searchID string)
	SetSkipped()
	AddIteration()
	AddExpansion()
	AddFullPlayout()
	AddCutoffPlayout()
	Complete(treeSize int) SearchMetric
}

type collector struct {
	searchID       string
	startTime      time.Time
	iterations     atomic.Int32
	expansions     atomic.Int32
	fullPlayouts   atomic.Int32
	cutoffPlayouts atomic.Int32
	skipped        atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

// Start resets the counters for a new search.
func (m *collector) Start(searchID string) {
	m.searchID = searchID
	m.startTime = time.Now()
	m.iterations.Store(0)
	m.expansions.Store(0)
	m.fullPlayouts.Store(0)
	m.cutoffPlayouts.Store(0)
	m.skipped.Store(false)
}

func (m *collector) SetSkipped() {
	m.skipped.Store(true)
}

func (m *collector) AddIteration() {
	m.iterations.Add(1)
}

func (m *collector) AddExpansion() {
	m.expansions.Add(1)
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) AddCutoffPlayout() {
	m.cutoffPlayouts.Add(1)
}

func (m *collector) Complete(treeSize int) SearchMetric {
	return SearchMetric{
		SearchID:       m.searchID,
		Duration:       time.Since(m.startTime),
		Iterations:     int(m.iterations.Load()),
		Expansions:     int(m.expansions.Load()),
		FullPlayouts:   int(m.fullPlayouts.Load()),
		CutoffPlayouts: int(m.cutoffPlayouts.Load()),
		TreeSize:       treeSize,
		Skipped:        m.skipped.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(searchID string)              {}
func (m *dummyCollector) SetSkipped()                        {}
func (m *dummyCollector) AddIteration()                      {}
func (m *dummyCollector) AddExpansion()                      {}
func (m *dummyCollector) AddFullPlayout()                    {}
func (m *dummyCollector) AddCutoffPlayout()                  {}
func (m *dummyCollector) Complete(treeSize int) SearchMetric { return SearchMetric{} }
