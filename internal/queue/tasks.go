package queue

const TypeDocumentIngest = "document:ingest"

// DocumentIngestPayload points the worker at a spooled upload. The document
// ID is assigned at enqueue time so the API can return it immediately.
type DocumentIngestPayload struct {
	DocumentID  string `json:"document_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	SpoolPath   string `json:"spool_path"`
}
