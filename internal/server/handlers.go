package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/documents"
	"github.com/fyrsmithlabs/ragd/internal/ingest"
	"github.com/fyrsmithlabs/ragd/internal/retrieval"
)

// maxTopK bounds the per-request chunk count override.
const maxTopK = 20

// Listing page bounds.
const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleUpload accepts a multipart file, stores it, and queues
// background ingestion.
func (s *Server) handleUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart field 'file' is required")
	}
	if fileHeader.Size > s.config.MaxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file exceeds the size limit")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.config.MaxUploadBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}

	if err := validateUpload(fileHeader.Filename, data, s.config.MaxUploadBytes); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errFileTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		return echo.NewHTTPError(status, err.Error())
	}

	path, err := s.files.Save(fileHeader.Filename, data)
	if err != nil {
		s.logger.Error("storing upload failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store file")
	}

	doc := documents.Document{
		ID:          uuid.NewString(),
		Filename:    fileHeader.Filename,
		ContentType: http.DetectContentType(data),
		SizeBytes:   int64(len(data)),
		StoragePath: path,
		Status:      documents.StatusUploaded,
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.docs.Create(c.Request().Context(), doc); err != nil {
		s.logger.Error("creating document record failed", zap.Error(err))
		if removeErr := s.files.Remove(path); removeErr != nil {
			s.logger.Error("orphaned upload cleanup failed", zap.Error(removeErr))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create document record")
	}

	if err := s.ingestor.Enqueue(doc.ID); err != nil {
		s.logger.Warn("enqueue failed", zap.String("document_id", doc.ID), zap.Error(err))
		if errors.Is(err, ingest.ErrQueueFull) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "ingestion queue is full, retry later")
		}
		return echo.NewHTTPError(http.StatusServiceUnavailable, "ingestion unavailable")
	}

	s.logger.Info("document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("filename", doc.Filename),
		zap.Int64("size_bytes", doc.SizeBytes))

	return c.JSON(http.StatusAccepted, UploadResponse{
		Document: doc,
		Message:  "document queued for processing",
	})
}

// handleListDocuments returns a page of document records.
func (s *Server) handleListDocuments(c echo.Context) error {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "skip must be a non-negative integer")
	}
	limit, err := queryInt(c, "limit", defaultListLimit)
	if err != nil || limit > maxListLimit {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("limit must be an integer between 0 and %d", maxListLimit))
	}

	docs, err := s.docs.List(c.Request().Context(), skip, limit)
	if err != nil {
		s.logger.Error("listing documents failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list documents")
	}
	if docs == nil {
		docs = []documents.Document{}
	}
	return c.JSON(http.StatusOK, ListResponse{
		Documents: docs,
		Total:     len(docs),
		Skip:      skip,
		Limit:     limit,
	})
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

// handleGetDocument returns one document record.
func (s *Server) handleGetDocument(c echo.Context) error {
	doc, err := s.docs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		}
		s.logger.Error("loading document failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load document")
	}
	return c.JSON(http.StatusOK, doc)
}

// handleDeleteDocument removes the record, stored file, and indexed
// chunks.
func (s *Server) handleDeleteDocument(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		}
		s.logger.Error("loading document failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load document")
	}

	// Chunks go first so a failed delete never leaves searchable
	// chunks for a record that no longer exists.
	if err := s.vectors.DeleteByDocument(ctx, id); err != nil {
		s.logger.Error("deleting chunks failed", zap.String("document_id", id), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete document chunks")
	}
	if err := s.files.Remove(doc.StoragePath); err != nil {
		s.logger.Error("removing file failed", zap.String("document_id", id), zap.Error(err))
	}
	if err := s.docs.Delete(ctx, id); err != nil && !errors.Is(err, documents.ErrNotFound) {
		s.logger.Error("deleting record failed", zap.String("document_id", id), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete document")
	}

	s.logger.Info("document deleted", zap.String("document_id", id))
	return c.NoContent(http.StatusNoContent)
}

// handleQuery answers a question over the processed documents.
func (s *Server) handleQuery(c echo.Context) error {
	ctx := c.Request().Context()
	start := time.Now()

	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question field is required")
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.config.TopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	processedIDs, err := s.docs.ListProcessedIDs(ctx)
	if err != nil {
		s.logger.Error("listing processed documents failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to query documents")
	}
	searchIDs := processedIDs
	if len(req.DocumentIDs) > 0 {
		searchIDs = intersect(req.DocumentIDs, processedIDs)
		if len(searchIDs) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "no processed documents match the requested document_ids")
		}
	}

	var chunks []retrieval.ScoredChunk
	if len(processedIDs) > 0 {
		results, err := s.vectors.Search(ctx, req.Question, topK, searchIDs)
		if err != nil {
			s.logger.Error("search failed", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
		}
		chunks = retrieval.Assemble(results, s.config.Thresholds)
	}

	result, err := s.synthesizer.Synthesize(ctx, req.Question, chunks)
	if err != nil {
		s.logger.Error("answer synthesis failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "answer generation failed")
	}

	return c.JSON(http.StatusOK, QueryResponse{
		Answer:           result.Answer,
		Sources:          result.Sources,
		Confidence:       result.Confidence,
		ModelUsed:        result.ModelUsed,
		ChunksUsed:       result.ChunksUsed,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	})
}

// handleStats reports corpus and queue statistics.
func (s *Server) handleStats(c echo.Context) error {
	ctx := c.Request().Context()

	counts, err := s.docs.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("counting documents failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to collect stats")
	}
	stats, err := s.vectors.Stats(ctx)
	if err != nil {
		s.logger.Error("collecting index stats failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to collect stats")
	}

	return c.JSON(http.StatusOK, StatsResponse{
		Documents:   counts,
		TotalChunks: stats.TotalChunks,
		QueueDepth:  s.ingestor.QueueDepth(),
	})
}

func intersect(requested, processed []string) []string {
	allowed := make(map[string]struct{}, len(processed))
	for _, id := range processed {
		allowed[id] = struct{}{}
	}
	var out []string
	for _, id := range requested {
		if _, ok := allowed[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
