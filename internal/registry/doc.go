// Package registry implements the Database Registry: the system SQLite file
// mapping logical database names to the document store files that hold
// them.
//
// Store files live under a managed root directory. Add derives a sanitized
// file name from the database name; AddExisting registers a file already
// placed under the root (the import path). No operation accepts a path
// outside the root.
//
// The registry never opens, creates or removes store files. That is the
// job of internal/access.
package registry
