package intercept

import (
	"context"
	"strings"

	"github.com/roach88/fauxwire/internal/entity"
	"github.com/roach88/fauxwire/internal/fault"
)

func (b *backend) registerDocuments(reg *Registry) {
	reg.Register("GET", "/documents", fault.Documents, b.listDocuments)
	reg.Register("POST", "/documents", fault.Documents, b.createDocument)
	reg.Register("GET", "/documents/:id", fault.Documents, b.getDocument)
	reg.Register("PUT", "/documents/:id", fault.Documents, b.updateDocument)
	reg.Register("DELETE", "/documents/:id", fault.Documents, b.deleteDocument)
}

// listDocuments supports equality filters (mime_type, user_id), the
// set-membership ocr_status filter (comma-separated), label membership
// (label_id), and single-field sorting with insertion-order tie-break.
func (b *backend) listDocuments(ctx context.Context, req *Request) (*Response, error) {
	limit, offset := listOptions(req)

	mime := req.Query.Get("mime_type")
	userID := req.Query.Get("user_id")
	labelID := req.Query.Get("label_id")
	var statuses []string
	if s := req.Query.Get("ocr_status"); s != "" {
		statuses = strings.Split(s, ",")
	}

	filter := func(d entity.Document) bool {
		if mime != "" && d.MimeType != mime {
			return false
		}
		if userID != "" && d.UserID != userID {
			return false
		}
		if labelID != "" && !d.HasLabel(labelID) {
			return false
		}
		if len(statuses) > 0 {
			found := false
			for _, s := range statuses {
				if d.OCRStatus == s {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}

	opts := entity.ListOptions[entity.Document]{
		Filter: filter,
		Offset: offset,
		Limit:  limit,
		Desc:   req.Query.Get("sort_dir") == "desc",
	}
	switch req.Query.Get("sort_by") {
	case "name":
		opts.SortKey = func(d entity.Document) string { return entity.FoldKey(d.Name) }
	case "created_at":
		opts.SortKey = func(d entity.Document) string { return d.CreatedAt }
	case "":
		// insertion order
	default:
		return BadRequest("unknown sort_by field", b.now()), nil
	}

	page := b.stores.Documents.List(opts)
	return OK(ListBody{
		Items: page.Items,
		Pagination: Pagination{
			Total:   page.Total,
			Limit:   limit,
			Offset:  offset,
			HasMore: page.HasMore,
		},
	}), nil
}

type documentCreate struct {
	Name      string   `json:"name"`
	MimeType  string   `json:"mime_type"`
	SizeBytes int64    `json:"size_bytes"`
	Content   string   `json:"content"`
	LabelIDs  []string `json:"label_ids"`
}

func (b *backend) createDocument(ctx context.Context, req *Request) (*Response, error) {
	var in documentCreate
	if err := req.DecodeBody(&in); err != nil {
		return BadRequest(err.Error(), b.now()), nil
	}
	if in.Name == "" {
		return BadRequest("name is required", b.now()), nil
	}

	now := b.timestamp()
	doc := b.stores.Documents.Create(entity.Document{
		UserID:    b.stores.Session().UserID,
		Name:      in.Name,
		MimeType:  in.MimeType,
		SizeBytes: in.SizeBytes,
		Content:   in.Content,
		OCRStatus: entity.OCRPending,
		LabelIDs:  in.LabelIDs,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return Created(doc), nil
}

func (b *backend) getDocument(ctx context.Context, req *Request) (*Response, error) {
	doc, ok := b.stores.Documents.Get(req.Params["id"])
	if !ok {
		return NotFound("document not found", b.now()), nil
	}
	return OK(doc), nil
}

type documentUpdate struct {
	Name      *string   `json:"name"`
	OCRStatus *string   `json:"ocr_status"`
	Content   *string   `json:"content"`
	LabelIDs  *[]string `json:"label_ids"`
}

func (b *backend) updateDocument(ctx context.Context, req *Request) (*Response, error) {
	var in documentUpdate
	if err := req.DecodeBody(&in); err != nil {
		return BadRequest(err.Error(), b.now()), nil
	}

	doc, ok := b.stores.Documents.Update(req.Params["id"], func(d *entity.Document) {
		if in.Name != nil {
			d.Name = *in.Name
		}
		if in.OCRStatus != nil {
			d.OCRStatus = *in.OCRStatus
		}
		if in.Content != nil {
			d.Content = *in.Content
		}
		if in.LabelIDs != nil {
			d.LabelIDs = *in.LabelIDs
		}
		d.UpdatedAt = b.timestamp()
	})
	if !ok {
		return NotFound("document not found", b.now()), nil
	}
	return OK(doc), nil
}

func (b *backend) deleteDocument(ctx context.Context, req *Request) (*Response, error) {
	if !b.stores.Documents.Delete(req.Params["id"]) {
		return NotFound("document not found", b.now()), nil
	}
	return Deleted(), nil
}
