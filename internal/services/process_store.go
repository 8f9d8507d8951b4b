package services

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"alfredoptarigan/career-assistant/internal/models"
)

// ProcessStore is the in-memory table of process records. It is bounded both
// by capacity (least recently used entries go first) and by age.
type ProcessStore interface {
	Create(id string) models.ProcessRecord
	Get(id string) (models.ProcessRecord, bool)
	MarkTask(id string, task models.ProcessTask) bool
	Complete(id string, results *models.ProcessResults, report []byte, content *models.ReportContent) bool
	Fail(id string, message string) bool
	Len() int
}

type processStore struct {
	mu      sync.Mutex
	records *expirable.LRU[string, *models.ProcessRecord]
	now     func() time.Time
}

func NewProcessStore(capacity int, ttl time.Duration) ProcessStore {
	if capacity <= 0 {
		capacity = 1000
	}
	return &processStore{
		records: expirable.NewLRU[string, *models.ProcessRecord](capacity, nil, ttl),
		now:     time.Now,
	}
}

// Create implements ProcessStore.
func (s *processStore) Create(id string) models.ProcessRecord {
	record := models.NewProcessRecord(id, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records.Add(id, record)

	return *record
}

// Get implements ProcessStore. The returned record is a copy.
func (s *processStore) Get(id string) (models.ProcessRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records.Get(id)
	if !ok {
		return models.ProcessRecord{}, false
	}
	return *record, true
}

// MarkTask implements ProcessStore.
func (s *processStore) MarkTask(id string, task models.ProcessTask) bool {
	return s.update(id, func(r *models.ProcessRecord) bool {
		r.Tasks.Mark(task)
		return true
	})
}

// Complete implements ProcessStore.
func (s *processStore) Complete(id string, results *models.ProcessResults, report []byte, content *models.ReportContent) bool {
	return s.update(id, func(r *models.ProcessRecord) bool {
		return r.Complete(results, report, content)
	})
}

// Fail implements ProcessStore.
func (s *processStore) Fail(id string, message string) bool {
	return s.update(id, func(r *models.ProcessRecord) bool {
		return r.Fail(message)
	})
}

// Len implements ProcessStore.
func (s *processStore) Len() int {
	return s.records.Len()
}

func (s *processStore) update(id string, fn func(*models.ProcessRecord) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records.Peek(id)
	if !ok {
		return false
	}
	if !fn(record) {
		return false
	}
	record.UpdatedAt = s.now()
	return true
}
