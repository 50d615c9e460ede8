// workers/history_worker.go
package workers

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"game-platform/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

const historyBatchSize = 100

// HistoryWorker buffers audit records in memory and writes them to the
// database on a gocron schedule. Record never touches the database, so core
// operations are never slowed down by it.
type HistoryWorker struct {
	DB *gorm.DB

	mu      sync.Mutex
	pending []models.HistoryRecord

	sched gocron.Scheduler
}

func NewHistoryWorker(db *gorm.DB) *HistoryWorker {
	return &HistoryWorker{DB: db}
}

// Record queues one record for the next flush.
func (w *HistoryWorker) Record(rec models.HistoryRecord) {
	w.mu.Lock()
	w.pending = append(w.pending, rec)
	w.mu.Unlock()
}

// Pending is the number of records waiting for a flush.
func (w *HistoryWorker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Flush writes everything buffered so far. On failure the batch is put back
// in front of anything recorded meanwhile.
func (w *HistoryWorker) Flush(ctx context.Context) (int, error) {
	w.mu.Lock()
	batch := w.pending
	w.pending = nil
	w.mu.Unlock()

	if len(batch) == 0 {
		return 0, nil
	}
	if err := w.DB.WithContext(ctx).CreateInBatches(&batch, historyBatchSize).Error; err != nil {
		w.mu.Lock()
		w.pending = append(batch, w.pending...)
		w.mu.Unlock()
		return 0, fmt.Errorf("flush history: %w", err)
	}
	return len(batch), nil
}

// Start schedules Flush every interval.
func (w *HistoryWorker) Start(interval time.Duration) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("history scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			n, err := w.Flush(ctx)
			if err != nil {
				log.Printf("[HISTORY] ❌ %v", err)
				return
			}
			if n > 0 {
				log.Printf("[HISTORY] ✅ Flushed %d records", n)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("history job: %w", err)
	}
	sched.Start()
	w.sched = sched
	log.Printf("[HISTORY] Worker started, flushing every %s", interval)
	return nil
}

// Stop shuts the scheduler down and writes whatever is still buffered.
func (w *HistoryWorker) Stop(ctx context.Context) error {
	if w.sched != nil {
		if err := w.sched.Shutdown(); err != nil {
			log.Printf("[HISTORY] ⚠️ scheduler shutdown: %v", err)
		}
		w.sched = nil
	}
	n, err := w.Flush(ctx)
	if err != nil {
		return err
	}
	log.Printf("[HISTORY] Worker stopped, final flush wrote %d records", n)
	return nil
}

// Recent returns the newest persisted records, optionally filtered by kind.
// Records still buffered are not included.
func (w *HistoryWorker) Recent(ctx context.Context, kind models.HistoryKind, limit int) ([]models.HistoryRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	q := w.DB.WithContext(ctx).Order("occurred_at DESC").Limit(limit)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	var out []models.HistoryRecord
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return out, nil
}
