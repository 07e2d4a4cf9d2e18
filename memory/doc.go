// Package memory contains the token-budgeted conversation buffer owned by a
// session. The buffer holds an ordered sequence of turns plus a running token
// estimate; committing a turn that pushes the estimate over the configured
// limit evicts turns from the oldest end until the budget holds again.
package memory
