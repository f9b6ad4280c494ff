// Package mocks provides test doubles for the store interfaces. The card
// store here is a real in-memory implementation with deterministic ordering,
// plus error-injection hooks for exercising failure paths.
package mocks
