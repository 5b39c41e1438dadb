// Package history persists a one-row summary of every burncheck run in a
// SQLite database so drive reliability can be tracked across soak cycles.
package history
