// Package bm25 provides an in-memory sparse lexical index over the corpus
// snapshot. The index is built once at startup from the full chunk set and is
// immutable afterwards, matching the engine's static-corpus contract.
package bm25

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/vietlabor/lawrag/core"
	"github.com/vietlabor/lawrag/retriever"
)

const (
	defaultK1 = 1.2
	defaultB  = 0.75
)

// Index scores chunks with Okapi BM25. Construction indexes every chunk;
// Search never mutates state, so the index is safe for concurrent queries.
type Index struct {
	chunks     map[string]core.Chunk
	termFreqs  map[string]map[string]int // chunkID -> term -> freq
	docFreqs   map[string]int            // term -> chunk count
	docLengths map[string]int
	avgDocLen  float64
	totalDocs  int
	k1         float64
	b          float64
}

var _ retriever.SparseSearcher = (*Index)(nil)

// NewIndex builds the index from the corpus snapshot.
func NewIndex(chunks []core.Chunk) *Index {
	idx := &Index{
		chunks:     make(map[string]core.Chunk, len(chunks)),
		termFreqs:  make(map[string]map[string]int, len(chunks)),
		docFreqs:   make(map[string]int),
		docLengths: make(map[string]int, len(chunks)),
		k1:         defaultK1,
		b:          defaultB,
	}
	for _, c := range chunks {
		idx.add(c)
	}
	total := 0
	for _, l := range idx.docLengths {
		total += l
	}
	if idx.totalDocs > 0 {
		idx.avgDocLen = float64(total) / float64(idx.totalDocs)
	}
	return idx
}

func (idx *Index) add(c core.Chunk) {
	terms := tokenize(c.Text)

	idx.chunks[c.ID] = c
	idx.termFreqs[c.ID] = make(map[string]int, len(terms))
	idx.docLengths[c.ID] = len(terms)

	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		idx.termFreqs[c.ID][term]++
		if !seen[term] {
			idx.docFreqs[term]++
			seen[term] = true
		}
	}
	idx.totalDocs++
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int { return idx.totalDocs }

// Search implements retriever.SparseSearcher. Scores are raw BM25 weights;
// equal scores are ordered by chunk id ascending for determinism.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]core.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores := make(map[string]float64)
	for _, term := range tokenize(query) {
		df, ok := idx.docFreqs[term]
		if !ok {
			continue
		}
		idf := idx.idf(df)
		for chunkID, tf := range idx.termFreqs {
			freq, ok := tf[term]
			if !ok {
				continue
			}
			scores[chunkID] += idf * idx.tf(float64(freq), float64(idx.docLengths[chunkID]))
		}
	}

	results := make([]core.ScoredChunk, 0, len(scores))
	for chunkID, score := range scores {
		results = append(results, core.ScoredChunk{Chunk: idx.chunks[chunkID], Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (idx *Index) idf(df int) float64 {
	n := float64(idx.totalDocs)
	return math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1)
}

func (idx *Index) tf(freq, docLen float64) float64 {
	return (freq * (idx.k1 + 1)) / (freq + idx.k1*(1-idx.b+idx.b*(docLen/idx.avgDocLen)))
}

// tokenize lowercases and splits on whitespace, trimming surrounding
// punctuation. Vietnamese text keeps its diacritics; syllable-level tokens
// are what the corpus was indexed with.
func tokenize(text string) []string {
	words := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		cleaned := strings.Trim(w, ".,!?;:\"'()[]{}#$%&*+-/<>=@\\^_`|~")
		if cleaned != "" {
			tokens = append(tokens, cleaned)
		}
	}
	return tokens
}
