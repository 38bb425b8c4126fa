package intercept

import (
	"context"

	"github.com/roach88/fauxwire/internal/entity"
	"github.com/roach88/fauxwire/internal/fault"
)

func (b *backend) registerQueue(reg *Registry) {
	reg.Register("GET", "/queue/stats", fault.Queue, b.getQueueStats)
	reg.Register("POST", "/queue/requeue", fault.Queue, b.requeueFailed)
}

func (b *backend) getQueueStats(ctx context.Context, req *Request) (*Response, error) {
	stats, ok := b.stores.Queue.Get(entity.QueueStatsID)
	if !ok {
		// An unseeded world has an empty queue, not a missing endpoint.
		stats = entity.QueueStats{ID: entity.QueueStatsID}
	}
	return OK(stats), nil
}

type requeueResult struct {
	Success       bool  `json:"success"`
	RequeuedCount int64 `json:"requeued_count"`
}

// requeueFailed moves every failed item back to pending and flips failed
// documents back to pending OCR status.
func (b *backend) requeueFailed(ctx context.Context, req *Request) (*Response, error) {
	var moved int64
	if _, ok := b.stores.Queue.Update(entity.QueueStatsID, func(q *entity.QueueStats) {
		moved = q.FailedCount
		q.PendingCount += q.FailedCount
		q.FailedCount = 0
	}); !ok {
		b.stores.Queue.Create(entity.QueueStats{ID: entity.QueueStatsID})
	}

	for _, doc := range b.stores.Documents.Snapshot() {
		if doc.OCRStatus != entity.OCRFailed {
			continue
		}
		b.stores.Documents.Update(doc.ID, func(d *entity.Document) {
			d.OCRStatus = entity.OCRPending
		})
	}

	return OK(requeueResult{Success: true, RequeuedCount: moved}), nil
}
