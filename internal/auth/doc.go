// Package auth provides user identity for Haven Core: account storage,
// Argon2id password hashing, JWT access tokens, and the ownership check
// applied before any owner-scoped resource access.
//
// Every Room, Device and Scene belongs to exactly one user. Repositories
// additionally filter by-id queries on owner_id so a caller can never
// distinguish "does not exist" from "belongs to someone else"; both
// surface as not-found.
package auth
