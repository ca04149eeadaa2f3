// Package publish implements the change publishing workflow.
//
// The workflow stages every pending working-tree change, records a commit with
// a caller-supplied or default message, pushes the current branch to the
// configured remote, and fetches the remote without recursing into
// submodules. Only the commit step is fatal; push and fetch failures are
// reported without affecting the exit status.
package publish
