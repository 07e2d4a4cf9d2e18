// Package model defines the completion-service abstraction consumed by the
// engine: a single Generate method that serves both the sync and streaming
// call shapes over a channel pair, plus the Complete helper that drains a
// non-streaming call into a string. Provider adapters live in the openai,
// anthropic and gemini subpackages.
package model
