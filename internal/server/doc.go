// Package server provides the HTTP API for ragd.
//
// Endpoints:
//
//	POST   /api/v1/documents/upload  multipart upload, queues ingestion
//	GET    /api/v1/documents         list documents with status
//	GET    /api/v1/documents/:id     one document record
//	DELETE /api/v1/documents/:id     remove record, file, and chunks
//	POST   /api/v1/query             ask a question over the corpus
//	GET    /api/v1/stats             corpus and queue statistics
//	GET    /health                   liveness probe
//	GET    /metrics                  Prometheus metrics
//
// Uploads are accepted (202) as soon as the file is stored and the
// record created; indexing happens in the background. Queries only
// search documents in the processed state.
package server
