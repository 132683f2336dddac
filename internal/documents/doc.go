// Package documents manages uploaded document records and their files.
//
// Metadata lives in PostgreSQL; file contents live on disk under
// randomized names so uploads with colliding filenames cannot
// overwrite each other. A document moves through three states:
// uploaded, processed, failed. Only processed documents are eligible
// for retrieval.
package documents
