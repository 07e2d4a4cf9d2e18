// Package corpus loads the legal-article chunks produced by the offline
// ingestion pipeline. The snapshot is a JSON array of chunks matching the
// payload shape stored in the vector collection, so the sparse index and the
// dense collection see the same corpus.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vietlabor/lawrag/core"
)

// Load reads a corpus snapshot file into chunks. Chunks without an id or text
// are rejected; an empty snapshot is an error because a corpus-less engine
// would answer every legal question out of scope.
func Load(path string) ([]core.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus snapshot: %w", err)
	}
	return Parse(data)
}

// Parse decodes a snapshot from raw JSON bytes.
func Parse(data []byte) ([]core.Chunk, error) {
	var chunks []core.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("decode corpus snapshot: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("corpus snapshot is empty")
	}
	seen := make(map[string]struct{}, len(chunks))
	for i, c := range chunks {
		if c.ID == "" {
			return nil, fmt.Errorf("chunk %d: missing id", i)
		}
		if c.Text == "" {
			return nil, fmt.Errorf("chunk %q: missing text", c.ID)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("chunk %q: duplicate id", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return chunks, nil
}
