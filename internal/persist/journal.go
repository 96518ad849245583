package persist

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// BatchWriter is the storage side of a Journal; FailureRepo implements it.
type BatchWriter interface {
	InsertBatch(ctx context.Context, rows []FailureRow) error
}

const journalBatch = 64

// Journal writes failure rows off the frame goroutine. Record never blocks:
// when the queue is full the row is dropped and counted. Record and Close
// belong to the same goroutine.
type Journal struct {
	w       BatchWriter
	queue   chan FailureRow
	timeout time.Duration
	log     *zap.Logger

	dropped atomic.Int64
	closed  atomic.Bool
	once    sync.Once
	wg      sync.WaitGroup
}

func NewJournal(w BatchWriter, queueSize int, timeout time.Duration, log *zap.Logger) *Journal {
	if queueSize <= 0 {
		queueSize = 256
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	j := &Journal{
		w:       w,
		queue:   make(chan FailureRow, queueSize),
		timeout: timeout,
		log:     log,
	}
	j.wg.Add(1)
	go j.loop()
	return j
}

// Record enqueues row and reports whether it was accepted.
func (j *Journal) Record(row FailureRow) bool {
	if j.closed.Load() {
		return false
	}
	select {
	case j.queue <- row:
		return true
	default:
		n := j.dropped.Add(1)
		j.log.Warn("failure journal full, record dropped",
			zap.Uint64("entity", row.Entity),
			zap.Int64("dropped_total", n),
		)
		return false
	}
}

// Dropped returns how many rows were discarded because the queue was full.
func (j *Journal) Dropped() int64 { return j.dropped.Load() }

// Close stops accepting rows and waits for the queued ones to be written.
func (j *Journal) Close() {
	j.once.Do(func() {
		j.closed.Store(true)
		close(j.queue)
	})
	j.wg.Wait()
}

func (j *Journal) loop() {
	defer j.wg.Done()
	batch := make([]FailureRow, 0, journalBatch)
	for row := range j.queue {
		batch = append(batch[:0], row)
	fill:
		for len(batch) < journalBatch {
			select {
			case next, ok := <-j.queue:
				if !ok {
					break fill
				}
				batch = append(batch, next)
			default:
				break fill
			}
		}
		j.flush(batch)
	}
}

func (j *Journal) flush(batch []FailureRow) {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	if err := j.w.InsertBatch(ctx, batch); err != nil {
		j.log.Error("failure journal write failed", zap.Int("rows", len(batch)), zap.Error(err))
		return
	}
	j.log.Debug("failure journal flushed", zap.Int("rows", len(batch)))
}
