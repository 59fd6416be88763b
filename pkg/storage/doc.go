// Package storage provides file management for exported spreadsheets.
//
// The storage package handles:
//   - Creating and managing the output directory
//   - Writing export artifacts with atomic write operations
//   - Listing artifacts already present on disk
//
// The Manager type is the primary interface for storage operations. It keeps
// an in-memory index of known artifacts and writes files via a temporary
// file plus rename so a crashed export never leaves a half-written
// spreadsheet under its final name.
//
// Usage:
//
//	manager, err := storage.NewManager("output")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	path, err := manager.SaveArtifact("coffee_20240101_120000.json", func(w io.Writer) error {
//	    return json.NewEncoder(w).Encode(payload)
//	})
package storage
