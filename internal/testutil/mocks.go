package testutil

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"nena/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (e LogEntry) Message() string {
	return fmt.Sprintf(e.Format, e.Args...)
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Contains reports whether a message at level contains substr.
func (m *MockLogger) Contains(level, substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Logs {
		if e.Level == level && strings.Contains(e.Message(), substr) {
			return true
		}
	}
	return false
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// MockCompressor implements persistence.Compressor with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       bool
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() { m.Closed = true }

// MockMetrics implements providers.MetricsProviderInterface and counts the
// domain events it receives.
type MockMetrics struct {
	mu               sync.Mutex
	Recordings       map[string]int
	BadgeUnlocks     map[string]int
	CoachingInsights map[string]int
	Persistence      int
	UsersTotal       int
	QueueDepth       int
}

func (m *MockMetrics) bump(target *map[string]int, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if *target == nil {
		*target = make(map[string]int)
	}
	(*target)[key]++
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                       {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration)       {}
func (m *MockMetrics) IncCacheHits()                                          {}
func (m *MockMetrics) IncCacheMisses()                                        {}
func (m *MockMetrics) ObserveTranscriptionDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persistence++
}

func (m *MockMetrics) SetUsersTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UsersTotal = count
}

func (m *MockMetrics) SetCoachingQueueDepth(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueueDepth = depth
}

func (m *MockMetrics) IncRecordings(outcome string)      { m.bump(&m.Recordings, outcome) }
func (m *MockMetrics) IncBadgeUnlocks(badge string)      { m.bump(&m.BadgeUnlocks, badge) }
func (m *MockMetrics) IncCoachingInsights(source string) { m.bump(&m.CoachingInsights, source) }

func (m *MockMetrics) get(pick func() map[string]int, key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return pick()[key]
}

func (m *MockMetrics) RecordingCount(outcome string) int {
	return m.get(func() map[string]int { return m.Recordings }, outcome)
}

func (m *MockMetrics) UnlockCount(badge string) int {
	return m.get(func() map[string]int { return m.BadgeUnlocks }, badge)
}

func (m *MockMetrics) CoachingCount(source string) int {
	return m.get(func() map[string]int { return m.CoachingInsights }, source)
}
