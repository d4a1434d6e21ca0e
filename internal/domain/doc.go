// Package domain holds the core types of the service: users with embedded
// bidirectional follow edges, the Original/Repost post variants, and the
// sentinel errors handlers translate into status codes.
//
// There is no canonical relationship row anywhere: a follow edge lives
// redundantly in both endpoints' arrays, and keeping the two sides consistent
// is the relationship engine's job, not the store's.
package domain
