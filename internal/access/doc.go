// Package access is the Access Façade: it resolves a database through the
// registry, opens a request-scoped document store handle for one operation
// and releases it on every exit path.
//
// Provisioning (create, import, rename, delete) is serialized across
// processes by a file lock in the managed root. Reads and document
// operations take no lock of their own; SQLite's locking covers them.
package access
