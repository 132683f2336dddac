package documents

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	filename      TEXT NOT NULL,
	content_type  TEXT NOT NULL,
	size_bytes    BIGINT NOT NULL,
	storage_path  TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'uploaded',
	page_count    INTEGER NOT NULL DEFAULT 0,
	chunk_count   INTEGER NOT NULL DEFAULT 0,
	error         TEXT NOT NULL DEFAULT '',
	uploaded_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	processed_at  TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS documents_status_idx ON documents (status);
`
