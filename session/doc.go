// Package session contains the store that maps a session id to its
// conversation buffer. Each buffer is exclusively owned by one session; the
// store only guards the map itself, never the buffers' contents.
package session
