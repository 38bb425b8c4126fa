package intercept

import (
	"context"

	"github.com/roach88/fauxwire/internal/entity"
	"github.com/roach88/fauxwire/internal/fault"
)

func (b *backend) registerSources(reg *Registry) {
	reg.Register("GET", "/sources", fault.Sources, b.listSources)
	reg.Register("POST", "/sources", fault.Sources, b.createSource)
	reg.Register("GET", "/sources/:id", fault.Sources, b.getSource)
	reg.Register("PUT", "/sources/:id", fault.Sources, b.updateSource)
	reg.Register("DELETE", "/sources/:id", fault.Sources, b.deleteSource)
	reg.Register("POST", "/sources/:id/sync", fault.Sources, b.startSourceSync)
}

func (b *backend) listSources(ctx context.Context, req *Request) (*Response, error) {
	limit, offset := listOptions(req)

	status := req.Query.Get("status")
	filter := func(s entity.Source) bool {
		return status == "" || s.Status == status
	}

	page := b.stores.Sources.List(entity.ListOptions[entity.Source]{
		Filter: filter,
		Offset: offset,
		Limit:  limit,
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

type sourceCreate struct {
	Name       string `json:"name"`
	SourceType string `json:"source_type"`
	Enabled    bool   `json:"enabled"`
}

func (b *backend) createSource(ctx context.Context, req *Request) (*Response, error) {
	var in sourceCreate
	if err := req.DecodeBody(&in); err != nil {
		return BadRequest(err.Error(), b.now()), nil
	}
	if in.Name == "" {
		return BadRequest("name is required", b.now()), nil
	}
	switch in.SourceType {
	case entity.SourceWebDAV, entity.SourceLocalFolder, entity.SourceS3:
	default:
		return BadRequest("unknown source_type", b.now()), nil
	}

	src := b.stores.Sources.Create(entity.Source{
		UserID:     b.stores.Session().UserID,
		Name:       in.Name,
		SourceType: in.SourceType,
		Enabled:    in.Enabled,
		Status:     entity.SourceIdle,
	})
	return Created(src), nil
}

func (b *backend) getSource(ctx context.Context, req *Request) (*Response, error) {
	src, ok := b.stores.Sources.Get(req.Params["id"])
	if !ok {
		return NotFound("source not found", b.now()), nil
	}
	return OK(src), nil
}

type sourceUpdate struct {
	Name    *string `json:"name"`
	Enabled *bool   `json:"enabled"`
}

func (b *backend) updateSource(ctx context.Context, req *Request) (*Response, error) {
	var in sourceUpdate
	if err := req.DecodeBody(&in); err != nil {
		return BadRequest(err.Error(), b.now()), nil
	}

	src, ok := b.stores.Sources.Update(req.Params["id"], func(s *entity.Source) {
		if in.Name != nil {
			s.Name = *in.Name
		}
		if in.Enabled != nil {
			s.Enabled = *in.Enabled
		}
	})
	if !ok {
		return NotFound("source not found", b.now()), nil
	}
	return OK(src), nil
}

func (b *backend) deleteSource(ctx context.Context, req *Request) (*Response, error) {
	id := req.Params["id"]
	if !b.stores.Sources.Delete(id) {
		return NotFound("source not found", b.now()), nil
	}
	// A deleted source's persisted sync progress goes with it.
	b.stores.Sync.Delete(id)
	return Deleted(), nil
}

// startSourceSync flips the source to syncing and seeds its persisted
// progress record. The live per-tick progress stream is driven by the push
// channel, not by this handler.
func (b *backend) startSourceSync(ctx context.Context, req *Request) (*Response, error) {
	id := req.Params["id"]

	current, ok := b.stores.Sources.Get(id)
	if !ok {
		return NotFound("source not found", b.now()), nil
	}
	if current.Status == entity.SourceSyncing {
		return Conflict("sync already in progress", b.now()), nil
	}
	if !current.Enabled {
		return Conflict("source is disabled", b.now()), nil
	}

	src, _ := b.stores.Sources.Update(id, func(s *entity.Source) {
		s.Status = entity.SourceSyncing
		s.LastSyncAt = b.timestamp()
	})
	b.stores.Sync.Create(entity.SyncProgress{
		ID:       id,
		SourceID: id,
		Phase:    "discovery",
		IsActive: true,
	})
	return OK(src), nil
}
