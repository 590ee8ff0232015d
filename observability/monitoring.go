// Package observability aggregates chat and process metrics for the debug endpoint.
package observability

import (
	"chat-store/contract"
	"chat-store/domain/event"
	"context"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

var _ contract.CommentSink = (*MonitoringManager)(nil)

// MonitoringStats is the snapshot served to the UI.
type MonitoringStats struct {
	// --- CHAT METRICS ---
	Rooms            int    `json:"rooms"`
	Comments         int    `json:"comments"`
	CommentsAppended uint64 `json:"comments_appended"`
	SendRejected     uint64 `json:"send_rejected"`
	Searches         uint64 `json:"searches"`

	// --- PROCESS METRICS ---
	Pid        int32   `json:"pid"`
	RssBytes   uint64  `json:"rss_bytes"`
	CpuPercent float64 `json:"cpu_percent"`

	// --- RUNTIME METRICS ---
	AllocMemMb   uint64 `json:"alloc_mem_mb"`
	NumGC        uint32 `json:"num_gc"`
	NumGoroutine int    `json:"num_goroutine"`
	UpdatedAt    string `json:"updated_at"`
}

// CountFunc reports the current number of rooms and comments held by the store.
// It is only called once Listen or Refresh runs.
type CountFunc func() (rooms int, comments int)

// MonitoringManager handles live telemetry.
type MonitoringManager struct {
	log         *slog.Logger
	counts      CountFunc
	proc        *process.Process
	mu          sync.RWMutex
	latestStats MonitoringStats

	appended atomic.Uint64
	rejected atomic.Uint64
	searches atomic.Uint64
}

func NewMonitoringManager(log *slog.Logger, counts CountFunc) *MonitoringManager {
	mm := &MonitoringManager{log: log, counts: counts}
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("Process metrics unavailable", "error", err)
	} else {
		mm.proc = p
	}
	return mm
}

// Consume counts appended comments.
func (mm *MonitoringManager) Consume(event.CommentAppended) error {
	mm.appended.Add(1)
	return nil
}

func (mm *MonitoringManager) IncrRejected() {
	mm.rejected.Add(1)
}

func (mm *MonitoringManager) IncrSearches() {
	mm.searches.Add(1)
}

// Listen refreshes the snapshot every interval until ctx is done.
func (mm *MonitoringManager) Listen(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			mm.log.Debug("Monitoring manager stopped")
			return
		case <-ticker.C:
			mm.updateStats()
		}
	}
}

// Refresh recomputes the snapshot immediately and returns it.
func (mm *MonitoringManager) Refresh() MonitoringStats {
	mm.updateStats()
	return mm.GetLatest()
}

func (mm *MonitoringManager) updateStats() {
	stats := MonitoringStats{
		CommentsAppended: mm.appended.Load(),
		SendRejected:     mm.rejected.Load(),
		Searches:         mm.searches.Load(),
		NumGoroutine:     runtime.NumGoroutine(),
		UpdatedAt:        time.Now().UTC().Format(time.RFC3339),
	}
	if mm.counts != nil {
		stats.Rooms, stats.Comments = mm.counts()
	}
	if mm.proc != nil {
		stats.Pid = mm.proc.Pid
		if memInfo, err := mm.proc.MemoryInfo(); err == nil {
			stats.RssBytes = memInfo.RSS
		}
		if cpu, err := mm.proc.CPUPercent(); err == nil {
			stats.CpuPercent = cpu
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.AllocMemMb = m.Alloc / 1024 / 1024
	stats.NumGC = m.NumGC

	mm.mu.Lock()
	mm.latestStats = stats
	mm.mu.Unlock()

	mm.log.Debug("Stats updated",
		"rooms", stats.Rooms,
		"comments", stats.Comments,
		"appended", stats.CommentsAppended,
		"rss", stats.RssBytes,
	)
}

func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.latestStats
}
