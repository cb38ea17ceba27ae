// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/keiyaku/internal/models"
	"github.com/hyperjump/keiyaku/internal/vector"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		page_count INTEGER NOT NULL,
		content_hash TEXT NOT NULL,
		full_text TEXT NOT NULL,
		pages TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);

	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		text TEXT NOT NULL,
		char_start INTEGER NOT NULL,
		char_end INTEGER NOT NULL,
		page_number INTEGER NOT NULL,
		embedding BLOB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id);
	CREATE INDEX IF NOT EXISTS idx_chunks_document_chunk ON chunks(document_id, chunk_index);

	CREATE TABLE IF NOT EXISTS findings (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		risk_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		evidence_text TEXT NOT NULL,
		char_start INTEGER,
		char_end INTEGER,
		page_number INTEGER,
		confidence REAL NOT NULL,
		detection_method TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_findings_document_id ON findings(document_id);

	CREATE TABLE IF NOT EXISTS extractions (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL UNIQUE,
		fields TEXT NOT NULL,
		method TEXT NOT NULL,
		confidence REAL NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS query_logs (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		document_ids TEXT,
		citation_count INTEGER NOT NULL,
		response_time_ms INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateDocumentWithChunks inserts a document and all its chunks in one
// transaction.
func (s *SQLiteStorage) CreateDocumentWithChunks(ctx context.Context, doc *models.Document, chunks []*models.Chunk) error {
	pagesJSON, err := json.Marshal(doc.Pages)
	if err != nil {
		return fmt.Errorf("failed to marshal page map: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	doc.CreatedAt = now
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (id, filename, file_size, page_count, content_hash, full_text, pages, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.FileSize, doc.PageCount, doc.ContentHash, doc.FullText, string(pagesJSON), doc.CreatedAt,
	); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, document_id, chunk_index, text, char_start, char_end, page_number, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		chunk.CreatedAt = now
		if _, err := stmt.ExecContext(ctx,
			chunk.ID, chunk.DocumentID, chunk.ChunkIndex, chunk.Text,
			chunk.CharStart, chunk.CharEnd, chunk.PageNumber,
			vector.EncodeVector(chunk.Embedding), chunk.CreatedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetDocument returns a document by ID.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	var pagesJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, filename, file_size, page_count, content_hash, full_text, pages, created_at
		 FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Filename, &doc.FileSize, &doc.PageCount, &doc.ContentHash, &doc.FullText, &pagesJSON, &doc.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	if pagesJSON != "" {
		if err := json.Unmarshal([]byte(pagesJSON), &doc.Pages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal page map: %w", err)
		}
	}
	return &doc, nil
}

// DeleteDocument removes a document by ID. Chunks, findings, and extractions
// cascade with it.
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	return err
}

// ListDocuments returns documents with offset and limit, newest first. The
// full text is not loaded for listings.
func (s *SQLiteStorage) ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, file_size, page_count, content_hash, created_at
		 FROM documents ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.FileSize, &doc.PageCount, &doc.ContentHash, &doc.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

const chunkColumns = `id, document_id, chunk_index, text, char_start, char_end, page_number, embedding, created_at`

func scanChunk(scan func(...any) error) (*models.Chunk, error) {
	var chunk models.Chunk
	var embedding []byte
	if err := scan(&chunk.ID, &chunk.DocumentID, &chunk.ChunkIndex, &chunk.Text,
		&chunk.CharStart, &chunk.CharEnd, &chunk.PageNumber, &embedding, &chunk.CreatedAt); err != nil {
		return nil, err
	}
	chunk.Embedding = vector.DecodeVector(embedding)
	return &chunk, nil
}

// GetChunk returns a chunk by ID.
func (s *SQLiteStorage) GetChunk(ctx context.Context, id string) (*models.Chunk, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE id = ?`, id)
	chunk, err := scanChunk(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("chunk not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// GetChunksByIDs returns the chunks for the given IDs. Missing IDs are
// silently skipped; the caller matches results by chunk ID.
func (s *SQLiteStorage) GetChunksByIDs(ctx context.Context, ids []string) ([]*models.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*models.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows.Scan)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// GetChunksByDocumentID returns all chunks for a document ordered by chunk_index.
func (s *SQLiteStorage) GetChunksByDocumentID(ctx context.Context, docID string) ([]*models.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE document_id = ? ORDER BY chunk_index`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*models.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows.Scan)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// AllChunkVectors returns every stored chunk vector, used to rebuild the
// in-memory index at startup.
func (s *SQLiteStorage) AllChunkVectors(ctx context.Context) ([]vector.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, chunk_index, embedding FROM chunks ORDER BY document_id, chunk_index`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []vector.Entry
	for rows.Next() {
		var e vector.Entry
		var embedding []byte
		if err := rows.Scan(&e.ChunkID, &e.DocumentID, &e.ChunkIndex, &embedding); err != nil {
			return nil, err
		}
		e.Vector = vector.DecodeVector(embedding)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ReplaceFindings swaps a document's findings in one transaction.
func (s *SQLiteStorage) ReplaceFindings(ctx context.Context, docID string, findings []*models.Finding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM findings WHERE document_id = ?`, docID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO findings (id, document_id, risk_type, severity, title, description, evidence_text,
		 char_start, char_end, page_number, confidence, detection_method, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, f := range findings {
		f.CreatedAt = now
		if _, err := stmt.ExecContext(ctx,
			f.ID, f.DocumentID, f.RiskType, string(f.Severity), f.Title, f.Description, f.EvidenceText,
			f.CharStart, f.CharEnd, f.PageNumber, f.Confidence, f.DetectionMethod, f.CreatedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const findingColumns = `id, document_id, risk_type, severity, title, description, evidence_text,
	char_start, char_end, page_number, confidence, detection_method, created_at`

func scanFinding(scan func(...any) error) (*models.Finding, error) {
	var f models.Finding
	if err := scan(&f.ID, &f.DocumentID, &f.RiskType, &f.Severity, &f.Title, &f.Description, &f.EvidenceText,
		&f.CharStart, &f.CharEnd, &f.PageNumber, &f.Confidence, &f.DetectionMethod, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// GetFindingsByDocumentID returns a document's findings ordered by offset.
func (s *SQLiteStorage) GetFindingsByDocumentID(ctx context.Context, docID string) ([]*models.Finding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+findingColumns+` FROM findings WHERE document_id = ?
		 ORDER BY char_start IS NULL, char_start, risk_type`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var findings []*models.Finding
	for rows.Next() {
		f, err := scanFinding(rows.Scan)
		if err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

// ListFindings returns findings across documents, optionally restricted to
// docIDs (empty means all).
func (s *SQLiteStorage) ListFindings(ctx context.Context, docIDs []string) ([]*models.Finding, error) {
	query := `SELECT ` + findingColumns + ` FROM findings`
	var args []any
	if len(docIDs) > 0 {
		placeholders := strings.Repeat("?,", len(docIDs))
		query += ` WHERE document_id IN (` + placeholders[:len(placeholders)-1] + `)`
		for _, id := range docIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY document_id, char_start IS NULL, char_start, risk_type`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var findings []*models.Finding
	for rows.Next() {
		f, err := scanFinding(rows.Scan)
		if err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

// ReplaceExtraction swaps a document's extraction in one transaction.
func (s *SQLiteStorage) ReplaceExtraction(ctx context.Context, extraction *models.Extraction) error {
	fieldsJSON, err := json.Marshal(extraction.Fields)
	if err != nil {
		return fmt.Errorf("failed to marshal fields: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM extractions WHERE document_id = ?`, extraction.DocumentID); err != nil {
		return err
	}

	extraction.CreatedAt = time.Now()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO extractions (id, document_id, fields, method, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		extraction.ID, extraction.DocumentID, string(fieldsJSON), extraction.Method, extraction.Confidence, extraction.CreatedAt,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// GetExtraction returns a document's extraction, if one exists.
func (s *SQLiteStorage) GetExtraction(ctx context.Context, docID string) (*models.Extraction, error) {
	var e models.Extraction
	var fieldsJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, document_id, fields, method, confidence, created_at
		 FROM extractions WHERE document_id = ?`, docID,
	).Scan(&e.ID, &e.DocumentID, &fieldsJSON, &e.Method, &e.Confidence, &e.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("extraction not found for document: %s", docID)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(fieldsJSON), &e.Fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
	}
	return &e, nil
}

// LogQuery inserts a query log entry.
func (s *SQLiteStorage) LogQuery(ctx context.Context, entry *models.QueryLog) error {
	docIDsJSON, err := json.Marshal(entry.DocumentIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal document IDs: %w", err)
	}

	entry.CreatedAt = time.Now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO query_logs (id, question, answer, document_ids, citation_count, response_time_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Question, entry.Answer, string(docIDsJSON), entry.CitationCount, entry.ResponseTimeMs, entry.CreatedAt,
	)
	return err
}

// CountDocuments returns the total number of documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// CountChunks returns the total number of chunks.
func (s *SQLiteStorage) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// CountFindings returns the total number of findings.
func (s *SQLiteStorage) CountFindings(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM findings`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
