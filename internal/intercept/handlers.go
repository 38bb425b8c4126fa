package intercept

import (
	"time"

	"github.com/roach88/fauxwire/internal/entity"
)

// backend holds the state shared by all domain handlers.
type backend struct {
	stores *entity.Stores
	now    func() time.Time
}

// RegisterAll builds the complete simulated API surface on the given
// registry. Registration order matters for overlapping patterns: literal
// routes are registered before parameterized ones within each domain.
func RegisterAll(reg *Registry, stores *entity.Stores, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	b := &backend{stores: stores, now: now}

	b.registerAuth(reg)
	b.registerDocuments(reg)
	b.registerSearch(reg)
	b.registerQueue(reg)
	b.registerSources(reg)
	b.registerLabels(reg)
	b.registerUsers(reg)
	b.registerRecognition(reg)
	b.registerSettings(reg)
}

// timestamp renders the current simulated time for record fields.
func (b *backend) timestamp() string {
	return b.now().UTC().Format(time.RFC3339)
}

// listOptions reads the common limit/offset query parameters.
// The backend defaults to pages of 25, matching the real server.
func listOptions(req *Request) (limit, offset int) {
	limit = req.QueryInt("limit", 25)
	offset = req.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
