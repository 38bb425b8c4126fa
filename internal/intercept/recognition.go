package intercept

import (
	"context"

	"github.com/roach88/fauxwire/internal/entity"
	"github.com/roach88/fauxwire/internal/fault"
)

func (b *backend) registerRecognition(reg *Registry) {
	reg.Register("POST", "/recognition/:id/start", fault.Recognition, b.startRecognition)
	reg.Register("GET", "/recognition/:id/status", fault.Recognition, b.recognitionStatus)
}

// startRecognition queues a document for (re-)recognition. The live
// per-tick recognition_progress stream is emitted on the push channel.
func (b *backend) startRecognition(ctx context.Context, req *Request) (*Response, error) {
	id := req.Params["id"]

	doc, ok := b.stores.Documents.Get(id)
	if !ok {
		return NotFound("document not found", b.now()), nil
	}
	if doc.OCRStatus == entity.OCRProcessing {
		return Conflict("recognition already in progress", b.now()), nil
	}

	updated, _ := b.stores.Documents.Update(id, func(d *entity.Document) {
		d.OCRStatus = entity.OCRProcessing
		d.UpdatedAt = b.timestamp()
	})
	return OK(updated), nil
}

type recognitionStatusBody struct {
	ID        string `json:"id"`
	OCRStatus string `json:"ocr_status"`
}

func (b *backend) recognitionStatus(ctx context.Context, req *Request) (*Response, error) {
	doc, ok := b.stores.Documents.Get(req.Params["id"])
	if !ok {
		return NotFound("document not found", b.now()), nil
	}
	return OK(recognitionStatusBody{ID: doc.ID, OCRStatus: doc.OCRStatus}), nil
}
