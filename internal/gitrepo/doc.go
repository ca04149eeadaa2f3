// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryManager for staging, committing, pushing, and fetching
// through the shared shell executor, along with remote URL parsing used to
// derive repository identity from a configured remote.
package gitrepo
