package service

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// Interval for cleaning up stale mutexes
	lockCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	lockStaleThreshold = 10 * time.Minute
)

// SlotLockService serializes booking writes per (doctor, date) pair. The
// availability check is check-then-act: between reading free slots and
// inserting the appointment a second request could claim the same hour.
// Holding the pair's lock across re-validation and insert closes that
// window, so at most one appointment lands on a (doctor, hour, date)
// even under concurrent requests.
//
// Lock ordering: acquire the slot lock FIRST, then open the transaction.
type SlotLockService struct {
	log *logrus.Logger

	// Per-(doctor,date) mutex
	slotMu sync.Map // map[string]*mutexWithTimestamp

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewSlotLockService creates a SlotLockService and starts the background
// mutex cleanup goroutine. Call Stop() during graceful shutdown.
func NewSlotLockService(log *logrus.Logger) *SlotLockService {
	svc := &SlotLockService{
		log:      log,
		stopChan: make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.cleanupMutexMapLoop()

	return svc
}

// Stop gracefully shuts down the service. Safe to call multiple times.
func (s *SlotLockService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("SlotLockService stopped")
	}
}

// Lock acquires the mutex for a (doctor, date) pair and returns the unlock
// function. Date is keyed by calendar day.
func (s *SlotLockService) Lock(doctorID uuid.UUID, date time.Time) func() {
	mt := s.getSlotMutex(slotKey(doctorID, date))
	mt.mu.Lock()
	return mt.mu.Unlock
}

func slotKey(doctorID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s:%s", doctorID, date.Format("2006-01-02"))
}

// getSlotMutex returns the mutex for a specific (doctor, date) key
func (s *SlotLockService) getSlotMutex(key string) *mutexWithTimestamp {
	mt, _ := s.slotMu.LoadOrStore(key, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

// cleanupMutexMapLoop runs in background to clean stale mutexes
func (s *SlotLockService) cleanupMutexMapLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(lockCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Slot lock cleanup goroutine stopping")
			return
		case <-ticker.C:
			s.cleanupStaleMutexes()
		}
	}
}

// cleanupStaleMutexes removes unused mutexes using TryLock for safety.
// The lastUsed check happens inside the lock so a concurrent user cannot
// refresh the timestamp between check and delete.
func (s *SlotLockService) cleanupStaleMutexes() {
	cutoffTime := time.Now().Add(-lockStaleThreshold).Unix()
	var cleaned int

	s.slotMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffTime {
				s.slotMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		s.log.Debugf("Cleaned up %d stale slot locks", cleaned)
	}
}
