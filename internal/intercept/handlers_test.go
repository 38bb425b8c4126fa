package intercept

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fauxwire/internal/entity"
)

func do(t *testing.T, ic *Interceptor, method, path string, body any) *Response {
	t.Helper()

	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	resp, err := ic.Do(context.Background(), method, path, raw)
	require.NoError(t, err)
	return resp
}

func TestDocuments_CRUD(t *testing.T) {
	ic, stores, _, _ := newTestWorld(t)
	stores.SetSession(entity.Session{UserID: "u1", Role: entity.RoleAdmin})

	resp := do(t, ic, "POST", "/documents", map[string]any{
		"name": "invoice.pdf", "mime_type": "application/pdf", "size_bytes": 1024,
	})
	require.Equal(t, 201, resp.Status)
	created := resp.Body.(entity.Document)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, entity.OCRPending, created.OCRStatus)
	assert.NotEmpty(t, created.CreatedAt)

	resp = do(t, ic, "GET", "/documents/"+created.ID, nil)
	require.Equal(t, 200, resp.Status)

	resp = do(t, ic, "PUT", "/documents/"+created.ID, map[string]any{"name": "renamed.pdf"})
	require.Equal(t, 200, resp.Status)
	assert.Equal(t, "renamed.pdf", resp.Body.(entity.Document).Name)

	resp = do(t, ic, "DELETE", "/documents/"+created.ID, nil)
	require.Equal(t, 200, resp.Status)
	assert.Equal(t, SuccessBody{Success: true}, resp.Body)

	resp = do(t, ic, "GET", "/documents/"+created.ID, nil)
	assert.Equal(t, 404, resp.Status)
	assert.Equal(t, 404, resp.Body.(ErrorBody).Code)
}

func TestDocuments_ListFilters(t *testing.T) {
	ic, stores, _, _ := newTestWorld(t)
	stores.Documents.ReplaceAll([]entity.Document{
		{ID: "1", Name: "a.pdf", MimeType: "application/pdf", OCRStatus: entity.OCRCompleted, LabelIDs: []string{"l1"}},
		{ID: "2", Name: "b.png", MimeType: "image/png", OCRStatus: entity.OCRFailed},
		{ID: "3", Name: "c.pdf", MimeType: "application/pdf", OCRStatus: entity.OCRPending},
	})

	resp := do(t, ic, "GET", "/documents?mime_type=application/pdf", nil)
	body := resp.Body.(ListBody)
	assert.Equal(t, 2, body.Pagination.Total)

	// Set membership over ocr_status.
	resp = do(t, ic, "GET", "/documents?ocr_status=failed,pending", nil)
	body = resp.Body.(ListBody)
	items := body.Items.([]entity.Document)
	require.Len(t, items, 2)
	assert.Equal(t, "2", items[0].ID)
	assert.Equal(t, "3", items[1].ID)

	// Label membership.
	resp = do(t, ic, "GET", "/documents?label_id=l1", nil)
	body = resp.Body.(ListBody)
	assert.Equal(t, 1, body.Pagination.Total)

	// Sort by name descending.
	resp = do(t, ic, "GET", "/documents?sort_by=name&sort_dir=desc", nil)
	items = resp.Body.(ListBody).Items.([]entity.Document)
	require.Len(t, items, 3)
	assert.Equal(t, "c.pdf", items[0].Name)

	// Unknown sort field is a 400 envelope, not a harness error.
	resp = do(t, ic, "GET", "/documents?sort_by=bogus", nil)
	assert.Equal(t, 400, resp.Status)
}

func TestDocuments_CreateValidation(t *testing.T) {
	ic, _, _, _ := newTestWorld(t)

	resp := do(t, ic, "POST", "/documents", map[string]any{"mime_type": "application/pdf"})
	assert.Equal(t, 400, resp.Status)

	resp2, err := ic.Do(context.Background(), "POST", "/documents", []byte("{not json"))
	require.NoError(t, err)
	assert.Equal(t, 400, resp2.Status)
}

func TestLabels_DuplicateNameConflicts(t *testing.T) {
	ic, _, _, _ := newTestWorld(t)

	resp := do(t, ic, "POST", "/labels", map[string]any{"name": "Invoices"})
	require.Equal(t, 201, resp.Status)

	// Case-insensitive uniqueness.
	resp = do(t, ic, "POST", "/labels", map[string]any{"name": "invoices"})
	assert.Equal(t, 409, resp.Status)
	assert.Equal(t, 409, resp.Body.(ErrorBody).Code)
}

func TestLabels_DeleteCascadesToDocuments(t *testing.T) {
	ic, stores, _, _ := newTestWorld(t)
	stores.Labels.Create(entity.Label{ID: "l1", Name: "tax"})
	stores.Documents.Create(entity.Document{ID: "d1", LabelIDs: []string{"l1", "l2"}})

	resp := do(t, ic, "DELETE", "/labels/l1", nil)
	require.Equal(t, 200, resp.Status)

	doc, _ := stores.Documents.Get("d1")
	assert.Equal(t, []string{"l2"}, doc.LabelIDs)
}

func TestUsers_DuplicateUsernameConflicts(t *testing.T) {
	ic, _, _, _ := newTestWorld(t)

	resp := do(t, ic, "POST", "/users", map[string]any{"username": "alice"})
	require.Equal(t, 201, resp.Status)
	assert.Equal(t, entity.RoleUser, resp.Body.(entity.User).Role)

	resp = do(t, ic, "POST", "/users", map[string]any{"username": "alice"})
	assert.Equal(t, 409, resp.Status)
}

func TestAuth_LoginSetsSession(t *testing.T) {
	ic, stores, _, _ := newTestWorld(t)
	stores.Users.Create(entity.User{ID: "u1", Username: "alice", Role: entity.RoleAdmin})

	resp := do(t, ic, "GET", "/auth/me", nil)
	assert.Equal(t, 401, resp.Status)

	resp = do(t, ic, "POST", "/auth/login", map[string]any{"username": "alice", "password": "whatever"})
	require.Equal(t, 200, resp.Status)
	login := resp.Body.(loginResponse)
	assert.Equal(t, "faux-token-u1", login.Token)
	assert.Equal(t, "alice", login.User.Username)

	resp = do(t, ic, "GET", "/auth/me", nil)
	require.Equal(t, 200, resp.Status)
	assert.Equal(t, "u1", resp.Body.(entity.User).ID)

	resp = do(t, ic, "POST", "/auth/logout", nil)
	require.Equal(t, 200, resp.Status)
	resp = do(t, ic, "GET", "/auth/me", nil)
	assert.Equal(t, 401, resp.Status)
}

func TestAuth_UnknownUserUnauthorized(t *testing.T) {
	ic, _, _, _ := newTestWorld(t)

	resp := do(t, ic, "POST", "/auth/login", map[string]any{"username": "ghost"})
	assert.Equal(t, 401, resp.Status)
}

func TestQueue_StatsAndRequeue(t *testing.T) {
	ic, stores, _, _ := newTestWorld(t)
	stores.Queue.Create(entity.QueueStats{ID: entity.QueueStatsID, PendingCount: 2, FailedCount: 3})
	stores.Documents.Create(entity.Document{ID: "d1", OCRStatus: entity.OCRFailed})

	resp := do(t, ic, "GET", "/queue/stats", nil)
	require.Equal(t, 200, resp.Status)
	assert.Equal(t, int64(3), resp.Body.(entity.QueueStats).FailedCount)

	resp = do(t, ic, "POST", "/queue/requeue", nil)
	require.Equal(t, 200, resp.Status)
	result := resp.Body.(requeueResult)
	assert.True(t, result.Success)
	assert.Equal(t, int64(3), result.RequeuedCount)

	stats, _ := stores.Queue.Get(entity.QueueStatsID)
	assert.Equal(t, int64(5), stats.PendingCount)
	assert.Equal(t, int64(0), stats.FailedCount)

	doc, _ := stores.Documents.Get("d1")
	assert.Equal(t, entity.OCRPending, doc.OCRStatus)
}

func TestQueue_StatsUnseededWorld(t *testing.T) {
	ic, _, _, _ := newTestWorld(t)

	resp := do(t, ic, "GET", "/queue/stats", nil)
	require.Equal(t, 200, resp.Status)
	assert.Equal(t, int64(0), resp.Body.(entity.QueueStats).PendingCount)
}

func TestSearch_MatchesNameAndContent(t *testing.T) {
	ic, stores, _, _ := newTestWorld(t)
	stores.Documents.ReplaceAll([]entity.Document{
		{ID: "1", Name: "Quarterly Report.pdf", Content: "revenue grew"},
		{ID: "2", Name: "notes.txt", Content: "the quarterly numbers"},
		{ID: "3", Name: "photo.png"},
	})

	resp := do(t, ic, "GET", "/search?query=quarterly", nil)
	require.Equal(t, 200, resp.Status)
	body := resp.Body.(ListBody)
	assert.Equal(t, 2, body.Pagination.Total)

	resp = do(t, ic, "GET", "/search", nil)
	assert.Equal(t, 400, resp.Status)
}

func TestSources_SyncLifecycle(t *testing.T) {
	ic, stores, _, _ := newTestWorld(t)
	stores.Sources.Create(entity.Source{ID: "s1", Name: "nas", SourceType: entity.SourceWebDAV, Enabled: true, Status: entity.SourceIdle})

	resp := do(t, ic, "POST", "/sources/s1/sync", nil)
	require.Equal(t, 200, resp.Status)
	assert.Equal(t, entity.SourceSyncing, resp.Body.(entity.Source).Status)

	// Second sync while one is in flight conflicts.
	resp = do(t, ic, "POST", "/sources/s1/sync", nil)
	assert.Equal(t, 409, resp.Status)

	// Progress record was seeded.
	prog, ok := stores.Sync.Get("s1")
	require.True(t, ok)
	assert.True(t, prog.IsActive)
	assert.Equal(t, "discovery", prog.Phase)
}

func TestSources_SyncDisabledConflicts(t *testing.T) {
	ic, stores, _, _ := newTestWorld(t)
	stores.Sources.Create(entity.Source{ID: "s1", Name: "nas", SourceType: entity.SourceS3, Enabled: false, Status: entity.SourceIdle})

	resp := do(t, ic, "POST", "/sources/s1/sync", nil)
	assert.Equal(t, 409, resp.Status)
}

func TestSources_CreateValidatesType(t *testing.T) {
	ic, _, _, _ := newTestWorld(t)

	resp := do(t, ic, "POST", "/sources", map[string]any{"name": "x", "source_type": "ftp"})
	assert.Equal(t, 400, resp.Status)
}

func TestSettings_GetAndMerge(t *testing.T) {
	ic, _, _, _ := newTestWorld(t)

	resp := do(t, ic, "GET", "/settings", nil)
	require.Equal(t, 200, resp.Status)
	settings := resp.Body.(map[string]any)
	assert.Equal(t, "eng", settings["ocr_language"])

	resp = do(t, ic, "PUT", "/settings", map[string]any{"ocr_language": "deu"})
	require.Equal(t, 200, resp.Status)
	merged := resp.Body.(map[string]any)
	assert.Equal(t, "deu", merged["ocr_language"])
	// Untouched keys survive the merge.
	assert.Contains(t, merged, "concurrent_ocr_jobs")
}

func TestRecognition_StartAndStatus(t *testing.T) {
	ic, stores, _, _ := newTestWorld(t)
	stores.Documents.Create(entity.Document{ID: "d1", OCRStatus: entity.OCRFailed})

	resp := do(t, ic, "POST", "/recognition/d1/start", nil)
	require.Equal(t, 200, resp.Status)
	assert.Equal(t, entity.OCRProcessing, resp.Body.(entity.Document).OCRStatus)

	resp = do(t, ic, "POST", "/recognition/d1/start", nil)
	assert.Equal(t, 409, resp.Status)

	resp = do(t, ic, "GET", "/recognition/d1/status", nil)
	require.Equal(t, 200, resp.Status)
	assert.Equal(t, entity.OCRProcessing, resp.Body.(recognitionStatusBody).OCRStatus)

	resp = do(t, ic, "GET", "/recognition/ghost/status", nil)
	assert.Equal(t, 404, resp.Status)
}
