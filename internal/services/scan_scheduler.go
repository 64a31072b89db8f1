package services

import (
	"context"
	"log"
	"sync"
	"time"
)

// ScanScheduler runs the automatic mailbox scan at the user-configured
// interval. Cycles never overlap: if a scan is still running when the ticker
// fires, the cycle is skipped rather than queued.
type ScanScheduler struct {
	scanService *ScanService
	settings    *SettingsService
	stopChan    chan struct{}
	running     bool
	mu          sync.Mutex
	scanning    sync.Mutex
}

// NewScanScheduler creates a new scan scheduler
func NewScanScheduler(scanService *ScanService, settings *SettingsService) *ScanScheduler {
	return &ScanScheduler{
		scanService: scanService,
		settings:    settings,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the automatic scan loop. The interval is read from settings
// at start; auto-scan on/off is re-read every cycle.
func (s *ScanScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	settings, err := s.settings.Get()
	if err != nil {
		log.Printf("[ScanScheduler] Failed to read settings: %v", err)
		return
	}
	interval := time.Duration(settings.ScanIntervalMinutes) * time.Minute
	if interval < 5*time.Minute {
		interval = 5 * time.Minute
	}

	log.Printf("[ScanScheduler] Starting with interval: %v", interval)

	go func() {
		// Give the service a moment to come fully up before the first scan.
		select {
		case <-time.After(10 * time.Second):
			s.runCycle()
		case <-s.stopChan:
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runCycle()
			case <-s.stopChan:
				log.Println("[ScanScheduler] Stopping")
				return
			}
		}
	}()
}

// Stop stops the automatic scan loop.
func (s *ScanScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	close(s.stopChan)
	s.running = false
}

// runCycle executes one scan unless disabled or a previous cycle is still
// in flight.
func (s *ScanScheduler) runCycle() {
	settings, err := s.settings.Get()
	if err != nil || !settings.AutoScan {
		return
	}

	if !s.scanning.TryLock() {
		log.Println("[ScanScheduler] Previous scan still running, skipping this cycle")
		return
	}
	defer s.scanning.Unlock()

	result, err := s.scanService.Scan(context.Background())
	if err != nil {
		log.Printf("[ScanScheduler] Scheduled scan failed: %v", err)
		return
	}
	log.Printf("[ScanScheduler] Scheduled scan done: %d found, %d new, %d updated",
		result.Found, result.New, result.Updated)
}
