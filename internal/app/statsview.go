package app

import (
	"log"
	"sync"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// statsViewURL is the page served by the statistics server
const statsViewURL = "/debug/statsview"

// StatsServer serves runtime statistics (heap, goroutines, GC pauses) as
// live charts while the emulator runs
type StatsServer struct {
	mu      sync.Mutex
	manager *statsview.ViewManager
	address string
	logger  *log.Logger
}

// NewStatsServer creates a stopped statistics server
func NewStatsServer(logger *log.Logger) *StatsServer {
	if logger == nil {
		logger = log.Default()
	}
	return &StatsServer{logger: logger}
}

// Start launches the server on address in its own goroutine
func (s *StatsServer) Start(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.manager != nil {
		return
	}

	viewer.SetConfiguration(viewer.WithAddr(address))
	s.manager = statsview.New()
	s.address = address

	go func(manager *statsview.ViewManager) {
		manager.Start()
	}(s.manager)

	s.logger.Printf("[STATS] Stats server available at http://%s%s", address, statsViewURL)
}

// Stop shuts the server down
func (s *StatsServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.manager == nil {
		return
	}
	s.manager.Stop()
	s.manager = nil
}

// Running reports whether the server has been started
func (s *StatsServer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager != nil
}

// URL returns the statistics page address, or "" when stopped
func (s *StatsServer) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.manager == nil {
		return ""
	}
	return "http://" + s.address + statsViewURL
}
