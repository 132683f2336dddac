// Package vectorstore provides nearest-neighbor chunk storage behind a
// single Store interface.
//
// Two implementations are provided: ChromemStore, an embedded
// chromem-go database suitable for single-node deployments (the
// default), and QdrantStore, a gRPC client for an external Qdrant
// server. Both embed chunk content through the Embedder supplied at
// construction and normalize similarity so that higher means more
// relevant.
//
// Chunks carry a stable external identifier derived from their document
// id and chunk index, so re-ingesting a document replaces its previous
// chunks instead of accumulating duplicates.
package vectorstore
