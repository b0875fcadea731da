package history

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// RecorderConfig contains configuration for the run recorder.
type RecorderConfig struct {
	// Enabled enables run recording.
	Enabled bool

	// BufferSize is the size of the async write channel buffer.
	// Default: 1000
	BufferSize int

	// WriteTimeout is the timeout for writing a record to the store.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		Enabled:      true,
		BufferSize:   1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder enqueues run records and writes them to a store from a
// background worker. Enqueueing never blocks the run that produced the
// record: when the buffer is full the record is dropped and counted.
type Recorder struct {
	store  Store
	config *RecorderConfig
	logger *slog.Logger

	recordChan chan *Record
	done       chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once

	dropped atomic.Int64
}

// NewRecorder creates a recorder backed by store and starts its worker.
// A nil config uses DefaultRecorderConfig and a nil logger discards
// everything.
func NewRecorder(store Store, config *RecorderConfig, logger *slog.Logger) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := &Recorder{
		store:      store,
		config:     config,
		logger:     logger.With("component", "history.recorder"),
		recordChan: make(chan *Record, config.BufferSize),
		done:       make(chan struct{}),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("run recorder initialized",
		"buffer_size", config.BufferSize,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// RecordRun enqueues a record for async writing. Records with an empty
// ID or zero timestamp are stamped here. The method returns immediately
// and never blocks on the store.
func (r *Recorder) RecordRun(record *Record) {
	if !r.config.Enabled {
		return
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	select {
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping record",
			"record_id", record.ID,
			"kind", record.Kind,
		)
		r.dropped.Add(1)
		return
	default:
	}

	select {
	case r.recordChan <- record:
	default:
		r.logger.Warn("record channel full, dropping record",
			"record_id", record.ID,
			"kind", record.Kind,
			"channel_capacity", r.config.BufferSize,
		)
		r.dropped.Add(1)
	}
}

// Dropped returns how many records were dropped because the buffer was
// full or the recorder was shutting down.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close drains the channel, waits for pending writes to finish and
// returns. It is safe to call more than once.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.logger.Info("shutting down run recorder")
		close(r.done)
		r.wg.Wait()
		r.logger.Info("run recorder shut down", "dropped_total", r.Dropped())
	})
	return nil
}

// worker drains the record channel and writes records to the store.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			// Drain remaining records before exit.
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) writeRecord(record *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	if err := r.store.Save(ctx, record); err != nil {
		r.logger.Error("failed to store run record",
			"record_id", record.ID,
			"kind", record.Kind,
			"error", err,
		)
		return
	}

	duration := time.Since(start)

	r.logger.Debug("run recorded",
		"record_id", record.ID,
		"kind", record.Kind,
		"spec_name", record.SpecName,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow history write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
