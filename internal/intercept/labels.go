package intercept

import (
	"context"

	"github.com/roach88/fauxwire/internal/entity"
	"github.com/roach88/fauxwire/internal/fault"
)

func (b *backend) registerLabels(reg *Registry) {
	reg.Register("GET", "/labels", fault.Labels, b.listLabels)
	reg.Register("POST", "/labels", fault.Labels, b.createLabel)
	reg.Register("GET", "/labels/:id", fault.Labels, b.getLabel)
	reg.Register("PUT", "/labels/:id", fault.Labels, b.updateLabel)
	reg.Register("DELETE", "/labels/:id", fault.Labels, b.deleteLabel)
}

func (b *backend) listLabels(ctx context.Context, req *Request) (*Response, error) {
	limit, offset := listOptions(req)

	page := b.stores.Labels.List(entity.ListOptions[entity.Label]{
		SortKey: func(l entity.Label) string { return entity.FoldKey(l.Name) },
		Offset:  offset,
		Limit:   limit,
	})
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

type labelCreate struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

func (b *backend) createLabel(ctx context.Context, req *Request) (*Response, error) {
	var in labelCreate
	if err := req.DecodeBody(&in); err != nil {
		return BadRequest(err.Error(), b.now()), nil
	}
	if in.Name == "" {
		return BadRequest("name is required", b.now()), nil
	}

	// Label names are unique, case- and form-insensitively.
	key := entity.FoldKey(in.Name)
	if _, exists := b.stores.Labels.Find(func(l entity.Label) bool {
		return entity.FoldKey(l.Name) == key
	}); exists {
		return Conflict("label name already exists", b.now()), nil
	}

	label := b.stores.Labels.Create(entity.Label{
		Name:        in.Name,
		Color:       in.Color,
		Description: in.Description,
	})
	return Created(label), nil
}

func (b *backend) getLabel(ctx context.Context, req *Request) (*Response, error) {
	label, ok := b.stores.Labels.Get(req.Params["id"])
	if !ok {
		return NotFound("label not found", b.now()), nil
	}
	return OK(label), nil
}

func (b *backend) updateLabel(ctx context.Context, req *Request) (*Response, error) {
	var in labelCreate
	if err := req.DecodeBody(&in); err != nil {
		return BadRequest(err.Error(), b.now()), nil
	}

	id := req.Params["id"]
	if in.Name != "" {
		key := entity.FoldKey(in.Name)
		if _, exists := b.stores.Labels.Find(func(l entity.Label) bool {
			return l.ID != id && entity.FoldKey(l.Name) == key
		}); exists {
			return Conflict("label name already exists", b.now()), nil
		}
	}

	label, ok := b.stores.Labels.Update(id, func(l *entity.Label) {
		if in.Name != "" {
			l.Name = in.Name
		}
		if in.Color != "" {
			l.Color = in.Color
		}
		if in.Description != "" {
			l.Description = in.Description
		}
	})
	if !ok {
		return NotFound("label not found", b.now()), nil
	}
	return OK(label), nil
}

// deleteLabel removes the label and strips it from every document that
// carries it, mirroring the real backend's cascade.
func (b *backend) deleteLabel(ctx context.Context, req *Request) (*Response, error) {
	id := req.Params["id"]
	if !b.stores.Labels.Delete(id) {
		return NotFound("label not found", b.now()), nil
	}

	for _, doc := range b.stores.Documents.Snapshot() {
		if !doc.HasLabel(id) {
			continue
		}
		b.stores.Documents.Update(doc.ID, func(d *entity.Document) {
			kept := d.LabelIDs[:0]
			for _, lid := range d.LabelIDs {
				if lid != id {
					kept = append(kept, lid)
				}
			}
			d.LabelIDs = kept
		})
	}
	return Deleted(), nil
}
