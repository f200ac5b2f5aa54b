package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/wellness-portal/internal/domain"
	"github.com/prperemyshlev/wellness-portal/internal/repository"
	"github.com/prperemyshlev/wellness-portal/pkg/observability"
	"go.uber.org/zap"
)

const (
	defaultBufferSize = 256
	maxBatchSize      = 64
	writeTimeout      = 5 * time.Second
)

// Sink buffers audit entries and persists them from a single background writer.
// Record never blocks a request: when the buffer is full the entry is dropped and counted.
type Sink struct {
	repo    repository.AuditRepository
	metrics *observability.AuthMetrics
	logger  *zap.Logger

	entries chan domain.AuditLogEntry
	done    chan struct{}

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

// NewSink starts the background writer. Call Close to flush pending entries.
func NewSink(repo repository.AuditRepository, bufferSize int, metrics *observability.AuthMetrics, logger *zap.Logger) *Sink {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Sink{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
		entries: make(chan domain.AuditLogEntry, bufferSize),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Record enqueues an entry and reports whether it was accepted
func (s *Sink) Record(ctx context.Context, entry domain.AuditLogEntry) bool {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.drop(ctx)
		return false
	}

	select {
	case s.entries <- entry:
		return true
	default:
		s.drop(ctx)
		return false
	}
}

// Dropped returns how many entries were discarded because the buffer was full or closed
func (s *Sink) Dropped() uint64 {
	return s.dropped.Load()
}

// Close stops accepting entries and waits until the buffered ones are written or ctx ends
func (s *Sink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sink) drop(ctx context.Context) {
	s.dropped.Add(1)
	s.metrics.AuditDropped(ctx)
}

func (s *Sink) run() {
	defer close(s.done)

	batch := make([]domain.AuditLogEntry, 0, maxBatchSize)
	for entry := range s.entries {
		batch = append(batch[:0], entry)

	fill:
		for len(batch) < maxBatchSize {
			select {
			case next, ok := <-s.entries:
				if !ok {
					break fill
				}
				batch = append(batch, next)
			default:
				break fill
			}
		}

		s.write(batch)
	}
}

func (s *Sink) write(batch []domain.AuditLogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := s.repo.Append(ctx, batch...); err != nil {
		s.logger.Error("Failed to write audit entries",
			zap.Int("count", len(batch)),
			zap.Error(err),
		)
	}
}
