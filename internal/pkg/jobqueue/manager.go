package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/LukasBrandt/PaperFig/internal/pkg/config"
	"github.com/LukasBrandt/PaperFig/internal/pkg/diagram"
	metrics "github.com/LukasBrandt/PaperFig/internal/pkg/metrics/counter"
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue            *Queue
	usageStatsTicker *time.Ticker
	stopCh           chan struct{}
	wg               sync.WaitGroup
	mu               sync.Mutex
	running          bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		cfg := config.MustLoad()

		globalManager = &Manager{
			queue:  NewQueue(cfg.JobWorkers, diagram.NewClientFromConfig(cfg)),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	// Start the job queue
	m.queue.Start()

	// Periodic usage-stats log so operators see generation volume without a dashboard
	m.usageStatsTicker = time.NewTicker(15 * time.Minute)
	m.wg.Add(1)
	go m.usageStatsWorker()

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.usageStatsTicker != nil {
		m.usageStatsTicker.Stop()
	}

	// Signal workers to stop
	close(m.stopCh)
	m.running = false

	// Wait for background workers to finish
	m.wg.Wait()

	// Stop the job queue
	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// usageStatsWorker periodically logs the per-plan usage counters and the
// queue depths
func (m *Manager) usageStatsWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Usage stats worker stopping")
			return
		case <-m.usageStatsTicker.C:
			ctx := context.Background()
			generations, downloads, err := metrics.Snapshot()
			if err != nil {
				log.Errorf("[JobQueue Manager] Usage snapshot error: %v", err)
				continue
			}
			pending, _ := m.queue.GetQueueSize(ctx)
			processing, _ := m.queue.GetProcessingSize(ctx)
			jobStats, err := m.queue.GetJobStats(ctx)
			if err != nil {
				log.Errorf("[JobQueue Manager] Job stats error: %v", err)
			}
			log.Infof("[JobQueue Manager] Usage: generations=%v downloads=%v queue=%d processing=%d jobs=%v",
				generations, downloads, pending, processing, jobStats)
		}
	}
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
