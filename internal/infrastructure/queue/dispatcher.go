package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mergington/activity-board/internal/core/domain"
	"github.com/mergington/activity-board/internal/core/ports"
	"github.com/mergington/activity-board/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	recordTimeout  = 5 * time.Second
)

// Dispatcher routes audit records to a fixed set of workers using consistent
// hashing on the client id, so one browser's actions are written in order.
// Enqueue never blocks a request: records are dropped when a worker is full.
type Dispatcher struct {
	workers []chan domain.ActionRecord
	service ports.AuditService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.AuditSink = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.AuditService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.ActionRecord, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ActionRecord, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain what is already queued
// and stop once ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands rec to the worker responsible for its client id.
func (d *Dispatcher) Enqueue(rec domain.ActionRecord) {
	idx := d.shardIndex(rec.ClientID)
	select {
	case d.workers[idx] <- rec:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditErrorsTotal.WithLabelValues("queue_full").Inc()
		d.log.Warn().
			Str("client_id", rec.ClientID).
			Str("command", string(rec.Command)).
			Int("worker_id", idx).
			Msg("audit queue full, record dropped")
	}
}

// shardIndex maps a client id deterministically to a worker index.
func (d *Dispatcher) shardIndex(clientID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(clientID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ActionRecord) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case rec := <-ch:
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(context.WithoutCancel(ctx), id, rec)
		}
	}
}

// drain writes whatever is left in ch after shutdown was requested.
func (d *Dispatcher) drain(id int, ch <-chan domain.ActionRecord) {
	for {
		select {
		case rec := <-ch:
			d.process(context.Background(), id, rec)
		default:
			return
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, rec domain.ActionRecord) {
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()
	if err := d.service.Record(ctx, rec); err != nil {
		d.log.Error().Err(err).
			Str("client_id", rec.ClientID).
			Str("command", string(rec.Command)).
			Int("worker_id", id).
			Msg("audit record failed")
	}
}
