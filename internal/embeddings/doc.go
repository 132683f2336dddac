// Package embeddings generates vector embeddings over HTTP.
//
// The service speaks the text-embeddings-inference (TEI) protocol: a
// POST /embed with one or more input texts returns one fixed-dimension
// vector per text. Any TEI-compatible server works; the dimension is
// fixed per deployment and must match the vector store configuration.
//
// Backend failures are surfaced as ErrEmbeddingFailed and are not
// retried here; callers decide whether an operation is worth retrying.
package embeddings
