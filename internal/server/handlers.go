package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/keiyaku/internal/models"
	"github.com/hyperjump/keiyaku/internal/report"
	"github.com/hyperjump/keiyaku/internal/storage"
)

// handleUpload accepts one or more contract files as multipart form data
// under the "files" field and ingests each synchronously.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.config.Server.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		s.respondError(w, http.StatusBadRequest, "no files provided")
		return
	}
	if len(files) > s.config.Server.MaxFilesPerRequest {
		s.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("too many files: %d (max %d)", len(files), s.config.Server.MaxFilesPerRequest))
		return
	}

	type uploadResult struct {
		Filename string           `json:"filename"`
		Document *models.Document `json:"document,omitempty"`
		Error    string           `json:"error,omitempty"`
	}
	results := make([]uploadResult, 0, len(files))
	for _, fh := range files {
		result := uploadResult{Filename: fh.Filename}
		f, err := fh.Open()
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}

		s.logger.Debug("upload request", zap.String("filename", fh.Filename), zap.Int("bytes", len(content)))
		doc, err := s.ingestor.Ingest(r.Context(), fh.Filename, content)
		if err != nil {
			s.logger.Error("ingestion failed", zap.String("filename", fh.Filename), zap.Error(err))
			result.Error = err.Error()
		} else {
			result.Document = doc
		}
		results = append(results, result)
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{"results": results})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	offset, limit := paginationParams(r, 50)
	docs, err := s.storage.ListDocuments(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.storage.GetDocument(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete document request", zap.String("id", id))
	if err := s.ingestor.Delete(r.Context(), id); err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("ask request", zap.String("question", req.Question), zap.Strings("document_ids", req.DocumentIDs))
	resp, err := s.answerer.Answer(r.Context(), &req)
	if err != nil {
		if req.Question == "" {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("ask failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleAudit runs the rule engine against a document's full text and
// replaces its stored finding set.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.storage.GetDocument(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}

	findings := s.auditor.Audit(doc.ID, doc.FullText, doc.Pages)
	if err := s.storage.ReplaceFindings(r.Context(), doc.ID, findings); err != nil {
		s.logger.Error("store findings failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.counters != nil {
		s.counters.AuditsRun.Add(1)
	}
	s.logger.Debug("audit complete", zap.String("document_id", id), zap.Int("findings", len(findings)))
	s.respondJSON(w, http.StatusOK, models.NewAuditReport(doc.ID, findings))
}

func (s *Server) handleGetFindings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.storage.GetDocument(r.Context(), id); err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	findings, err := s.storage.GetFindingsByDocumentID(r.Context(), id)
	if err != nil {
		s.logger.Error("get findings failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.NewAuditReport(id, findings))
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	extraction, err := s.extractor.Extract(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			s.respondError(w, http.StatusNotFound, "document not found")
			return
		}
		s.logger.Error("extraction failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, extraction)
}

func (s *Server) handleGetExtraction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	extraction, err := s.storage.GetExtraction(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "extraction not found")
		return
	}
	s.respondJSON(w, http.StatusOK, extraction)
}

// handleExportFindings streams findings as an XLSX workbook. Optional
// document_ids query parameter (comma-separated) restricts the export.
func (s *Server) handleExportFindings(w http.ResponseWriter, r *http.Request) {
	var docIDs []string
	if raw := r.URL.Query().Get("document_ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				docIDs = append(docIDs, id)
			}
		}
	}
	findings, err := s.storage.ListFindings(r.Context(), docIDs)
	if err != nil {
		s.logger.Error("list findings failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := fmt.Sprintf("findings-%s.xlsx", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := report.WriteFindings(w, findings); err != nil {
		s.logger.Error("export findings failed", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.storage.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	chunkCount, err := s.storage.CountChunks(ctx)
	if err != nil {
		s.logger.Error("status: count chunks failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	findingCount, err := s.storage.CountFindings(ctx)
	if err != nil {
		s.logger.Error("status: count findings failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]any{
		"documents":         docCount,
		"chunks":            chunkCount,
		"findings":          findingCount,
		"vector_index_size": s.vectorIndex.Size(),
	}
	if s.counters != nil {
		resp["counters"] = s.counters.Snapshot()
	}

	configInfo := map[string]any{
		"embedding_model":      s.config.LLM.EmbeddingModel,
		"completion_model":     s.config.LLM.CompletionModel,
		"embedding_dimensions": s.config.LLM.Dimensions,
		"chunk_size":           s.config.Chunking.ChunkSize,
		"chunk_overlap":        s.config.Chunking.ChunkOverlap,
		"database_path":        s.config.Storage.DatabasePath,
		"vector_index_path":    s.config.Storage.VectorIndexPath,
	}
	if diskBytes, err := storage.DiskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.VectorIndexPath,
	); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

func paginationParams(r *http.Request, defaultLimit int) (offset, limit int) {
	limit = defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := parsePositive(v); err == nil {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := parsePositive(v); err == nil {
			offset = n
		}
	}
	return offset, limit
}

func parsePositive(v string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value")
	}
	return n, nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
