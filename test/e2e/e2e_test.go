package e2e

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/hyperjump/keiyaku/internal/audit"
	"github.com/hyperjump/keiyaku/internal/config"
	"github.com/hyperjump/keiyaku/internal/extract"
	"github.com/hyperjump/keiyaku/internal/extraction"
	"github.com/hyperjump/keiyaku/internal/ingest"
	"github.com/hyperjump/keiyaku/internal/llm"
	"github.com/hyperjump/keiyaku/internal/metrics"
	"github.com/hyperjump/keiyaku/internal/models"
	"github.com/hyperjump/keiyaku/internal/retrieval"
	"github.com/hyperjump/keiyaku/internal/storage"
	"github.com/hyperjump/keiyaku/internal/vector"
)

const e2eDimensions = 8

type components struct {
	store     storage.Storage
	index     *vector.MemoryIndex
	mock      *llm.MockClient
	counters  *metrics.Counters
	ingestor  *ingest.Ingestor
	answerer  *retrieval.Answerer
	extractor *extraction.Service
	auditor   *audit.Engine
}

func newComponents(t *testing.T) *components {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "db.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	index, err := vector.NewMemoryIndex(e2eDimensions)
	if err != nil {
		t.Fatal(err)
	}
	mock := llm.NewMockClient(e2eDimensions)
	counters := &metrics.Counters{}

	// Large enough that each corpus contract stays a single chunk, so a
	// question equal to the chunk text scores a perfect match.
	chunking := &config.ChunkingConfig{ChunkSize: 4000, ChunkOverlap: 200}
	ing := ingest.NewIngestor(store, mock, index, chunking, extract.NewExtractor(), counters)
	retriever := retrieval.NewRetriever(mock, index, store)

	return &components{
		store:     store,
		index:     index,
		mock:      mock,
		counters:  counters,
		ingestor:  ing,
		answerer:  retrieval.NewAnswerer(retriever, mock, store, counters, nil, 24000),
		extractor: extraction.NewService(store, mock, counters, nil),
		auditor:   audit.NewEngine(),
	}
}

// ingestCorpus ingests every corpus contract and returns filename -> document.
func ingestCorpus(t *testing.T, c *components, corpus *Corpus) map[string]*models.Document {
	t.Helper()
	ctx := context.Background()
	docs := make(map[string]*models.Document, len(corpus.Contracts))
	for _, contract := range corpus.Contracts {
		doc, err := c.ingestor.Ingest(ctx, contract.Filename, []byte(contract.Content))
		if err != nil {
			t.Fatalf("ingest %s: %v", contract.Filename, err)
		}
		docs[contract.Filename] = doc
	}
	return docs
}

func riskTypes(findings []*models.Finding) []string {
	seen := map[string]bool{}
	for _, f := range findings {
		seen[f.RiskType] = true
	}
	out := make([]string, 0, len(seen))
	for rt := range seen {
		out = append(out, rt)
	}
	sort.Strings(out)
	return out
}

func TestE2E_AuditDetectsExpectedRisks(t *testing.T) {
	c := newComponents(t)
	corpus := BuildCorpus()
	docs := ingestCorpus(t, c, corpus)
	ctx := context.Background()

	for _, contract := range corpus.Contracts {
		contract := contract
		t.Run(contract.Filename, func(t *testing.T) {
			doc := docs[contract.Filename]
			stored, err := c.store.GetDocument(ctx, doc.ID)
			if err != nil {
				t.Fatal(err)
			}
			findings := c.auditor.Audit(stored.ID, stored.FullText, stored.Pages)

			got := riskTypes(findings)
			want := append([]string(nil), contract.ExpectedRisks...)
			sort.Strings(want)
			if len(got) != len(want) {
				t.Fatalf("risk types = %v, want %v", got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("risk types = %v, want %v", got, want)
				}
			}

			// Findings survive a storage round trip.
			if err := c.store.ReplaceFindings(ctx, doc.ID, findings); err != nil {
				t.Fatal(err)
			}
			persisted, err := c.store.GetFindingsByDocumentID(ctx, doc.ID)
			if err != nil {
				t.Fatal(err)
			}
			if len(persisted) != len(findings) {
				t.Errorf("persisted %d findings, audited %d", len(persisted), len(findings))
			}
		})
	}
}

func TestE2E_AskCitesTheRightContract(t *testing.T) {
	c := newComponents(t)
	corpus := BuildCorpus()
	docs := ingestCorpus(t, c, corpus)
	ctx := context.Background()
	c.mock.Completion = "The contract addresses this in the quoted clause."

	for _, contract := range corpus.Contracts {
		doc := docs[contract.Filename]
		chunks, err := c.store.GetChunksByDocumentID(ctx, doc.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(chunks) != 1 {
			t.Fatalf("%s: %d chunks, corpus contracts must stay single-chunk", contract.Filename, len(chunks))
		}

		resp, err := c.answerer.Answer(ctx, &models.AskRequest{Question: chunks[0].Text})
		if err != nil {
			t.Fatalf("%s: ask: %v", contract.Filename, err)
		}
		if resp.Answer != c.mock.Completion {
			t.Errorf("%s: answer = %q", contract.Filename, resp.Answer)
		}
		if len(resp.Citations) == 0 {
			t.Fatalf("%s: no citations", contract.Filename)
		}
		if resp.Citations[0].DocumentID != doc.ID {
			t.Errorf("%s: top citation from %s, want %s",
				contract.Filename, resp.Citations[0].DocumentID, doc.ID)
		}
	}

	if got := c.counters.QueriesAnswered.Load(); got != int64(len(corpus.Contracts)) {
		t.Errorf("queries answered = %d, want %d", got, len(corpus.Contracts))
	}
}

func TestE2E_AskScopedToDocuments(t *testing.T) {
	c := newComponents(t)
	corpus := BuildCorpus()
	docs := ingestCorpus(t, c, corpus)
	ctx := context.Background()
	c.mock.Completion = "scoped answer"

	first := docs[corpus.Contracts[0].Filename]
	other := docs[corpus.Contracts[1].Filename]
	chunks, err := c.store.GetChunksByDocumentID(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}

	// Scoping to a different document must not surface the matching contract.
	resp, err := c.answerer.Answer(ctx, &models.AskRequest{
		Question:    chunks[0].Text,
		DocumentIDs: []string{other.ID},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, cit := range resp.Citations {
		if cit.DocumentID == first.ID {
			t.Errorf("citation leaked from out-of-scope document %s", first.ID)
		}
	}
}

func TestE2E_ExtractionModelAndFallback(t *testing.T) {
	c := newComponents(t)
	corpus := BuildCorpus()
	docs := ingestCorpus(t, c, corpus)
	ctx := context.Background()

	// Model path: canned JSON from the completion capability.
	c.mock.JSONResponse = `{
		"parties": ["Acme Corporation", "Vendor 1 LLC"],
		"governing_law": "Delaware",
		"effective_date": "January 1, 2024"
	}`
	first := docs[corpus.Contracts[0].Filename]
	ex, err := c.extractor.Extract(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ex.Method != models.MethodModelBased {
		t.Errorf("method = %s", ex.Method)
	}
	if len(ex.Fields.Parties) != 2 {
		t.Errorf("parties = %v", ex.Fields.Parties)
	}

	// Fallback path: capability failure falls back to pattern extraction,
	// which finds the governing law and effective date in the preamble.
	c.mock.Unavailable = true
	second := docs[corpus.Contracts[1].Filename]
	ex, err = c.extractor.Extract(ctx, second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ex.Method != models.MethodRuleBased {
		t.Errorf("method = %s", ex.Method)
	}
	if ex.Fields.GoverningLaw == nil || *ex.Fields.GoverningLaw != "Delaware" {
		t.Errorf("governing law = %v", ex.Fields.GoverningLaw)
	}
	if ex.Fields.EffectiveDate == nil {
		t.Error("effective date not recovered by fallback")
	}
	if c.counters.LLMFallbacks.Load() == 0 {
		t.Error("fallback counter not incremented")
	}
}

func TestE2E_VectorIndexSurvivesRestart(t *testing.T) {
	c := newComponents(t)
	corpus := BuildCorpus()
	ingestCorpus(t, c, corpus)

	path := filepath.Join(t.TempDir(), "vectors.idx")
	if err := c.index.Save(path); err != nil {
		t.Fatal(err)
	}

	reloaded, err := vector.NewMemoryIndex(e2eDimensions)
	if err != nil {
		t.Fatal(err)
	}
	if err := reloaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if reloaded.Size() != c.index.Size() {
		t.Errorf("reloaded size = %d, want %d", reloaded.Size(), c.index.Size())
	}
}

func TestE2E_DeleteRemovesEverything(t *testing.T) {
	c := newComponents(t)
	corpus := BuildCorpus()
	docs := ingestCorpus(t, c, corpus)
	ctx := context.Background()

	victim := docs[corpus.Contracts[0].Filename]
	sizeBefore := c.index.Size()
	if err := c.ingestor.Delete(ctx, victim.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := c.store.GetDocument(ctx, victim.ID); err == nil {
		t.Error("document still readable after delete")
	}
	if c.index.Size() >= sizeBefore {
		t.Errorf("vector index size = %d, want < %d", c.index.Size(), sizeBefore)
	}
	count, err := c.store.CountDocuments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != int64(len(corpus.Contracts)-1) {
		t.Errorf("documents = %d, want %d", count, len(corpus.Contracts)-1)
	}
}
