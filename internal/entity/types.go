package entity

// Record is implemented by every domain record stored in a Collection.
//
// WithID returns a copy of the record with the given id set; Clone returns
// a deep copy. Both are value-returning so collections can enforce
// copy-in/copy-out without reflection.
type Record[T any] interface {
	RecordID() string
	WithID(id string) T
	Clone() T
}

// OCR status values for Document.OCRStatus.
const (
	OCRPending    = "pending"
	OCRProcessing = "processing"
	OCRCompleted  = "completed"
	OCRFailed     = "failed"
)

// Document is a stored file with extracted text and label membership.
type Document struct {
	ID        string   `json:"id" yaml:"id"`
	UserID    string   `json:"user_id" yaml:"user_id"`
	Name      string   `json:"name" yaml:"name"`
	MimeType  string   `json:"mime_type" yaml:"mime_type"`
	SizeBytes int64    `json:"size_bytes" yaml:"size_bytes"`
	Content   string   `json:"content,omitempty" yaml:"content,omitempty"`
	OCRStatus string   `json:"ocr_status" yaml:"ocr_status"`
	LabelIDs  []string `json:"label_ids" yaml:"label_ids"`
	CreatedAt string   `json:"created_at" yaml:"created_at"`
	UpdatedAt string   `json:"updated_at" yaml:"updated_at"`
}

func (d Document) RecordID() string { return d.ID }

func (d Document) WithID(id string) Document {
	d.ID = id
	return d
}

func (d Document) Clone() Document {
	c := d
	if d.LabelIDs != nil {
		c.LabelIDs = make([]string, len(d.LabelIDs))
		copy(c.LabelIDs, d.LabelIDs)
	}
	return c
}

// HasLabel reports whether the document carries the given label id.
func (d Document) HasLabel(labelID string) bool {
	for _, id := range d.LabelIDs {
		if id == labelID {
			return true
		}
	}
	return false
}

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account record. Passwords are not modeled - the auth domain
// accepts any credential pair that names a known user.
type User struct {
	ID        string `json:"id" yaml:"id"`
	Username  string `json:"username" yaml:"username"`
	Email     string `json:"email" yaml:"email"`
	Role      string `json:"role" yaml:"role"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

func (u User) RecordID() string { return u.ID }

func (u User) WithID(id string) User {
	u.ID = id
	return u
}

func (u User) Clone() User { return u }

// Source status values.
const (
	SourceIdle    = "idle"
	SourceSyncing = "syncing"
	SourceError   = "error"
)

// Source type values.
const (
	SourceWebDAV      = "webdav"
	SourceLocalFolder = "local_folder"
	SourceS3          = "s3"
)

// Source is a configured ingestion source (WebDAV share, local folder, S3
// bucket) with sync bookkeeping counters.
type Source struct {
	ID                string `json:"id" yaml:"id"`
	UserID            string `json:"user_id" yaml:"user_id"`
	Name              string `json:"name" yaml:"name"`
	SourceType        string `json:"source_type" yaml:"source_type"`
	Enabled           bool   `json:"enabled" yaml:"enabled"`
	Status            string `json:"status" yaml:"status"`
	LastError         string `json:"last_error,omitempty" yaml:"last_error,omitempty"`
	LastSyncAt        string `json:"last_sync_at,omitempty" yaml:"last_sync_at,omitempty"`
	TotalFilesSynced  int64  `json:"total_files_synced" yaml:"total_files_synced"`
	TotalFilesPending int64  `json:"total_files_pending" yaml:"total_files_pending"`
	TotalSizeBytes    int64  `json:"total_size_bytes" yaml:"total_size_bytes"`
}

func (s Source) RecordID() string { return s.ID }

func (s Source) WithID(id string) Source {
	s.ID = id
	return s
}

func (s Source) Clone() Source { return s }

// Label is a user-defined tag applied to documents. Names are unique per
// store (enforced by the labels handler, not the collection).
type Label struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Color         string `json:"color,omitempty" yaml:"color,omitempty"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	DocumentCount int    `json:"document_count" yaml:"document_count"`
}

func (l Label) RecordID() string { return l.ID }

func (l Label) WithID(id string) Label {
	l.ID = id
	return l
}

func (l Label) Clone() Label { return l }

// QueueStats is the aggregate state of the OCR processing queue. The store
// holds a single record under a well-known id.
type QueueStats struct {
	ID              string  `json:"id" yaml:"id"`
	PendingCount    int64   `json:"pending_count" yaml:"pending_count"`
	ProcessingCount int64   `json:"processing_count" yaml:"processing_count"`
	FailedCount     int64   `json:"failed_count" yaml:"failed_count"`
	CompletedCount  int64   `json:"completed_count" yaml:"completed_count"`
	AvgWaitSeconds  float64 `json:"avg_wait_time_seconds" yaml:"avg_wait_time_seconds"`
	OldestPendingAt string  `json:"oldest_pending_at,omitempty" yaml:"oldest_pending_at,omitempty"`
}

// QueueStatsID is the fixed id of the singleton QueueStats record.
const QueueStatsID = "queue"

func (q QueueStats) RecordID() string { return q.ID }

func (q QueueStats) WithID(id string) QueueStats {
	q.ID = id
	return q
}

func (q QueueStats) Clone() QueueStats { return q }

// SyncProgress is the persisted view of a source sync operation, keyed by
// the source id it describes. The live per-tick stream of the same
// operation is emitted on the push channel.
type SyncProgress struct {
	ID              string `json:"id" yaml:"id"`
	SourceID        string `json:"source_id" yaml:"source_id"`
	Phase           string `json:"phase" yaml:"phase"`
	ElapsedSeconds  int64  `json:"elapsed_time" yaml:"elapsed_time"`
	FilesFound      int64  `json:"files_found" yaml:"files_found"`
	FilesProcessed  int64  `json:"files_processed" yaml:"files_processed"`
	PercentComplete int    `json:"percent_complete" yaml:"percent_complete"`
	IsActive        bool   `json:"is_active" yaml:"is_active"`
}

func (p SyncProgress) RecordID() string { return p.ID }

func (p SyncProgress) WithID(id string) SyncProgress {
	p.ID = id
	return p
}

func (p SyncProgress) Clone() SyncProgress { return p }
