// Package store defines the persistence contract of the review engine.
// It contains the CardStore interface the engine reads and writes through,
// the sentinel errors implementations surface, and small database helpers.
// Concrete implementations live under internal/platform.
package store
