package intercept

import (
	"context"

	"github.com/roach88/fauxwire/internal/fault"
)

func (b *backend) registerSettings(reg *Registry) {
	reg.Register("GET", "/settings", fault.Settings, b.getSettings)
	reg.Register("PUT", "/settings", fault.Settings, b.updateSettings)
}

func (b *backend) getSettings(ctx context.Context, req *Request) (*Response, error) {
	return OK(b.stores.Settings()), nil
}

func (b *backend) updateSettings(ctx context.Context, req *Request) (*Response, error) {
	var in map[string]any
	if err := req.DecodeBody(&in); err != nil {
		return BadRequest(err.Error(), b.now()), nil
	}
	return OK(b.stores.MergeSettings(in)), nil
}
