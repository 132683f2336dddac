// Package chunker splits extracted document text into overlapping,
// size-bounded segments for embedding and indexing.
//
// The splitter tries an ordered ladder of separators, from paragraph
// breaks down to single characters, recursing into finer separators
// only for pieces that do not fit the chunk size on their own. Adjacent
// chunks share up to ChunkOverlap trailing characters so that sentences
// cut at a boundary remain retrievable from either side.
package chunker
