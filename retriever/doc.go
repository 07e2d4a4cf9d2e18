// Package retriever defines the search ports consumed by the engine (dense
// vector search, sparse lexical search, query embedding) and the hybrid
// retriever that runs both paths concurrently and fuses their rankings with
// Reciprocal Rank Fusion. Concrete search backends live in the qdrant and
// bm25 subpackages.
package retriever
