// Package vector provides an in-memory brute-force index. Contract corpora
// are small (hundreds of documents), so exact search is both fast enough
// and fully deterministic.
package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// MemoryIndex is an in-memory vector index using brute-force cosine search.
type MemoryIndex struct {
	dimensions int
	entries    []Entry
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory vector index with the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{
		dimensions: dimensions,
		entries:    make([]Entry, 0),
	}, nil
}

// Add appends entries, copying their vectors.
func (m *MemoryIndex) Add(ctx context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if len(e.Vector) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(e.Vector), m.dimensions)
		}
		vec := make([]float32, m.dimensions)
		copy(vec, e.Vector)
		e.Vector = vec
		m.entries = append(m.entries, e)
	}
	return nil
}

// Search returns the top-k entries by cosine similarity. Ties are broken by
// lowest chunk index so repeated searches with the same input are stable.
// When documentIDs is non-empty only chunks of those documents compete.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int, documentIDs []string) ([]*Result, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.entries) == 0 {
		return nil, nil
	}
	var allowed map[string]bool
	if len(documentIDs) > 0 {
		allowed = make(map[string]bool, len(documentIDs))
		for _, id := range documentIDs {
			allowed[id] = true
		}
	}
	results := make([]*Result, 0, len(m.entries))
	for _, e := range m.entries {
		if allowed != nil && !allowed[e.DocumentID] {
			continue
		}
		results = append(results, &Result{
			ChunkID:    e.ChunkID,
			DocumentID: e.DocumentID,
			ChunkIndex: e.ChunkIndex,
			Score:      CosineSimilarity(query, e.Vector),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkIndex < results[j].ChunkIndex
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// RemoveDocument removes all entries belonging to documentID.
func (m *MemoryIndex) RemoveDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if e.DocumentID != documentID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

// Save persists the index to path. Directory is created if needed.
// Format: dimensions (4), n (4), then per entry: chunkID len+bytes,
// documentID len+bytes, chunk index (4), vector (dimensions*4 bytes).
func (m *MemoryIndex) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(m.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(m.entries))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, e := range m.entries {
		if err := writeString(f, e.ChunkID); err != nil {
			return fmt.Errorf("write chunk id: %w", err)
		}
		if err := writeString(f, e.DocumentID); err != nil {
			return fmt.Errorf("write document id: %w", err)
		}
		if err := binary.Write(f, binary.LittleEndian, uint32(e.ChunkIndex)); err != nil {
			return fmt.Errorf("write chunk index: %w", err)
		}
		if _, err := f.Write(EncodeVector(e.Vector)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load reads the index from path and replaces the in-memory contents.
// Dimensions must match. A missing file is not an error; the index is
// simply left empty.
func (m *MemoryIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != m.dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, index expects %d", dim, m.dimensions)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make([]Entry, 0, n)
	buf := make([]byte, m.dimensions*4)
	for i := uint32(0); i < n; i++ {
		chunkID, err := readString(f)
		if err != nil {
			return fmt.Errorf("read chunk id: %w", err)
		}
		docID, err := readString(f)
		if err != nil {
			return fmt.Errorf("read document id: %w", err)
		}
		var chunkIndex uint32
		if err := binary.Read(f, binary.LittleEndian, &chunkIndex); err != nil {
			return fmt.Errorf("read chunk index: %w", err)
		}
		if _, err := io.ReadFull(f, buf); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		m.entries = append(m.entries, Entry{
			ChunkID:    chunkID,
			DocumentID: docID,
			ChunkIndex: int(chunkIndex),
			Vector:     DecodeVector(buf),
		})
	}
	return nil
}

// Size returns the number of vectors in the index.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}

func writeString(f *os.File, s string) error {
	if err := binary.Write(f, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := f.Write([]byte(s))
	return err
}

func readString(f *os.File) (string, error) {
	var n uint32
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(f, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// EncodeVector serializes a float32 slice as little-endian bytes.
func EncodeVector(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

// DecodeVector deserializes little-endian bytes into a float32 slice.
func DecodeVector(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
