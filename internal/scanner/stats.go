package scanner

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats holds the scan's shared mutable aggregates. Counters are atomic;
// the forbidden-URL list is guarded by a mutex held only for the append.
type Stats struct {
	Total           int64
	Processed       int64
	Retained        int64
	Errors5xx       int64
	TransportErrors int64
	Findings        int64
	StartTime       time.Time

	mu        sync.Mutex
	forbidden []string
}

func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

func (s *Stats) SetTotal(n int64) {
	atomic.StoreInt64(&s.Total, n)
}

func (s *Stats) IncrementProcessed() {
	atomic.AddInt64(&s.Processed, 1)
}

func (s *Stats) IncrementRetained() {
	atomic.AddInt64(&s.Retained, 1)
}

func (s *Stats) IncrementErrors5xx() {
	atomic.AddInt64(&s.Errors5xx, 1)
}

func (s *Stats) IncrementTransportErrors() {
	atomic.AddInt64(&s.TransportErrors, 1)
}

func (s *Stats) AddFindings(n int64) {
	atomic.AddInt64(&s.Findings, n)
}

func (s *Stats) AddForbidden(url string) {
	s.mu.Lock()
	s.forbidden = append(s.forbidden, url)
	s.mu.Unlock()
}

func (s *Stats) GetTotal() int64 {
	return atomic.LoadInt64(&s.Total)
}

func (s *Stats) GetProcessed() int64 {
	return atomic.LoadInt64(&s.Processed)
}

func (s *Stats) GetRetained() int64 {
	return atomic.LoadInt64(&s.Retained)
}

func (s *Stats) GetErrors5xx() int64 {
	return atomic.LoadInt64(&s.Errors5xx)
}

func (s *Stats) GetTransportErrors() int64 {
	return atomic.LoadInt64(&s.TransportErrors)
}

func (s *Stats) GetFindings() int64 {
	return atomic.LoadInt64(&s.Findings)
}

// ForbiddenURLs returns a copy of the forbidden-URL list.
func (s *Stats) ForbiddenURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.forbidden))
	copy(out, s.forbidden)
	return out
}

// ForbiddenCount returns the number of recorded forbidden URLs.
func (s *Stats) ForbiddenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forbidden)
}
