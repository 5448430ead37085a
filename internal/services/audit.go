package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/7pairs/twingo2/internal/models"
	"github.com/7pairs/twingo2/internal/store"
	"github.com/7pairs/twingo2/internal/util"
)

// AuditLogEntry represents the data needed to create an audit log entry
type AuditLogEntry struct {
	EventType       models.EventType
	ActorID         uint
	ActorScreenName string
	ActorIP         string
	Success         bool
	ErrorMessage    string
	UserAgent       string
	RequestPath     string
}

// AuditService handles audit logging. Entries are queued on a channel and
// written in batches by a background worker so request handling never
// blocks on the database.
type AuditService struct {
	store      *store.Store
	enabled    bool
	bufferSize int

	logChan chan *models.AuditLog

	batchBuffer []*models.AuditLog
	batchMutex  sync.Mutex
	batchTicker *time.Ticker

	wg         sync.WaitGroup
	shutdownCh chan struct{}
}

// NewAuditService creates a new audit service
func NewAuditService(s *store.Store, enabled bool, bufferSize int) *AuditService {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	service := &AuditService{
		store:       s,
		enabled:     enabled,
		bufferSize:  bufferSize,
		logChan:     make(chan *models.AuditLog, bufferSize),
		batchBuffer: make([]*models.AuditLog, 0, 100),
		shutdownCh:  make(chan struct{}),
	}

	if enabled {
		// The ticker only exists alongside the worker that consumes it
		service.batchTicker = time.NewTicker(1 * time.Second)
		service.wg.Add(1)
		go service.worker()
		log.Printf("Audit service started with buffer size %d", bufferSize)
	} else {
		log.Println("Audit service is disabled")
	}

	return service
}

func (s *AuditService) worker() {
	defer s.wg.Done()

	for {
		select {
		case entry := <-s.logChan:
			s.addToBatch(entry)

		case <-s.batchTicker.C:
			s.flushBatch()

		case <-s.shutdownCh:
			// Drain anything still queued, then flush
			for {
				select {
				case entry := <-s.logChan:
					s.addToBatch(entry)
				default:
					s.flushBatch()
					return
				}
			}
		}
	}
}

func (s *AuditService) addToBatch(entry *models.AuditLog) {
	s.batchMutex.Lock()
	defer s.batchMutex.Unlock()

	s.batchBuffer = append(s.batchBuffer, entry)

	// Flush if batch is full
	if len(s.batchBuffer) >= 100 {
		s.flushBatchUnsafe()
	}
}

func (s *AuditService) flushBatch() {
	s.batchMutex.Lock()
	defer s.batchMutex.Unlock()
	s.flushBatchUnsafe()
}

// flushBatchUnsafe flushes the batch buffer without locking (caller must hold lock)
func (s *AuditService) flushBatchUnsafe() {
	if len(s.batchBuffer) == 0 {
		return
	}

	toWrite := make([]*models.AuditLog, len(s.batchBuffer))
	copy(toWrite, s.batchBuffer)
	s.batchBuffer = s.batchBuffer[:0]

	if err := s.store.CreateAuditLogs(toWrite); err != nil {
		log.Printf("Failed to write audit log batch: %v", err)
	}
}

// Log records an audit log entry asynchronously
func (s *AuditService) Log(ctx context.Context, entry AuditLogEntry) {
	if !s.enabled {
		return
	}

	if entry.ActorIP == "" {
		entry.ActorIP = util.GetIPFromContext(ctx)
	}

	auditLog := &models.AuditLog{
		ID:              uuid.New().String(),
		EventType:       entry.EventType,
		ActorID:         entry.ActorID,
		ActorScreenName: entry.ActorScreenName,
		ActorIP:         entry.ActorIP,
		Success:         entry.Success,
		ErrorMessage:    entry.ErrorMessage,
		UserAgent:       entry.UserAgent,
		RequestPath:     entry.RequestPath,
		CreatedAt:       time.Now(),
	}

	select {
	case s.logChan <- auditLog:
	default:
		// Channel is full, drop the event rather than block the request
		log.Printf("WARNING: Audit log buffer full, dropping event: %s", entry.EventType)
	}
}

// Shutdown stops the worker and flushes any buffered entries
func (s *AuditService) Shutdown(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	s.batchTicker.Stop()
	close(s.shutdownCh)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Audit service shut down")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit service shutdown timed out: %w", ctx.Err())
	}
}

// CleanupOldLogs deletes audit logs older than the retention period
func (s *AuditService) CleanupOldLogs(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return s.store.DeleteAuditLogsBefore(cutoff)
}
