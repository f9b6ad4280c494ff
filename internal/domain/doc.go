// Package domain contains the core business entities and value objects of
// the review engine: flashcards, their spaced-repetition scheduling state,
// and the quality grades a learner assigns during review. It is independent
// of any specific infrastructure or delivery mechanism. Scheduling state is
// only ever advanced by the srs subpackage.
package domain
