// Package ingest runs the background document indexing pipeline.
//
// Uploads enqueue a job; workers pull jobs off a bounded channel and
// run extract, chunk, embed, index for one document at a time. On
// success the document is marked processed with its chunk count; on
// any failure it is marked failed with the reason so the upload
// endpoint never blocks on pipeline errors.
//
// Re-ingesting a document first drops its old chunks from the vector
// index, so a shrinking document cannot leave stale chunks behind.
package ingest
