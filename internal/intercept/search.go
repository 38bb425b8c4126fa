package intercept

import (
	"context"
	"strings"

	"github.com/roach88/fauxwire/internal/entity"
	"github.com/roach88/fauxwire/internal/fault"
)

func (b *backend) registerSearch(reg *Registry) {
	reg.Register("GET", "/search", fault.Search, b.search)
}

// search performs a fold-insensitive substring match over document names
// and extracted content, paginated like any listing endpoint.
func (b *backend) search(ctx context.Context, req *Request) (*Response, error) {
	query := req.Query.Get("query")
	if query == "" {
		return BadRequest("query is required", b.now()), nil
	}
	limit, offset := listOptions(req)

	needle := entity.FoldKey(query)
	page := b.stores.Documents.List(entity.ListOptions[entity.Document]{
		Filter: func(d entity.Document) bool {
			return strings.Contains(entity.FoldKey(d.Name), needle) ||
				strings.Contains(entity.FoldKey(d.Content), needle)
		},
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
