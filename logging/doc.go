// Package logging provides a tiny abstraction over slog so the rest of the
// module can depend on a minimal interface (Logger) while allowing callers to
// plug any structured logger. It also offers an EngineLogger with contextual
// helpers (session, turn, component) and domain specific helpers for model
// calls, retrieval and routing decisions.
package logging
