package memory

import (
	"sync"
	"time"

	"lowlight-enhancer/internal/logger"
)

// Manager accounts for native Mat allocations across a batch run. OpenCV
// buffers live outside the Go heap, so leaked Mats are invisible to the
// runtime; the batch driver logs Stats at the end of every run to catch
// them.
type Manager struct {
	mu           sync.RWMutex
	logger       logger.Logger
	usedMemory   int64
	peakMemory   int64
	allocCount   int64
	deallocCount int64
	activeMats   map[uint64]*MatInfo
}

type MatInfo struct {
	ID        uint64
	Tag       string
	Size      int64
	Timestamp time.Time
}

// Stats is a point-in-time snapshot of allocation accounting.
type Stats struct {
	Allocations   int64
	Deallocations int64
	UsedBytes     int64
	PeakBytes     int64
	ActiveMats    int
}

func NewManager(log logger.Logger) *Manager {
	return &Manager{
		logger:     log,
		activeMats: make(map[uint64]*MatInfo),
	}
}

func (m *Manager) TrackAllocation(id uint64, size int64, tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.allocCount++
	m.usedMemory += size
	if m.usedMemory > m.peakMemory {
		m.peakMemory = m.usedMemory
	}
	m.activeMats[id] = &MatInfo{
		ID:        id,
		Tag:       tag,
		Size:      size,
		Timestamp: time.Now(),
	}
}

func (m *Manager) TrackDeallocation(id uint64, tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deallocCount++
	if info, exists := m.activeMats[id]; exists {
		m.usedMemory -= info.Size
		delete(m.activeMats, id)
	}
}

func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		Allocations:   m.allocCount,
		Deallocations: m.deallocCount,
		UsedBytes:     m.usedMemory,
		PeakBytes:     m.peakMemory,
		ActiveMats:    len(m.activeMats),
	}
}

// LogSummary reports allocation totals and warns about Mats that were
// never released.
func (m *Manager) LogSummary() {
	stats := m.GetStats()

	m.logger.Info("MemoryManager", "allocation summary", map[string]interface{}{
		"allocations":   stats.Allocations,
		"deallocations": stats.Deallocations,
		"peak_bytes":    stats.PeakBytes,
		"active_mats":   stats.ActiveMats,
	})

	if stats.ActiveMats == 0 {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, info := range m.activeMats {
		m.logger.Warning("MemoryManager", "unreleased Mat", map[string]interface{}{
			"tag":  info.Tag,
			"size": info.Size,
			"age":  time.Since(info.Timestamp).String(),
		})
	}
}
