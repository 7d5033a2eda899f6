// Package storage provides the durable persistence behind presentation
// stores.
//
// It currently supports:
//   - One JSON file per document (dependency-free)
//   - A single SQLite database file
//
// Both drivers persist whole record collections: the engine is
// write-through, so a save always replaces the document's full list.
package storage
