// Package core defines the domain types shared across the lawrag engine:
// retrievable chunks of legal text with their citation metadata, scored
// retrieval results, conversation turns, router decisions and the stream
// event union emitted during a chat turn. It intentionally contains no
// behavior beyond small helpers so that every other package can depend on it
// without cycles.
package core
