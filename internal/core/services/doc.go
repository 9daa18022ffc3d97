// Package services implements the driving port interfaces.
// Services hold the library logic: adding documents, indexing them into
// embedded chunks, ranking chunks against a query, and managing
// collections. All I/O goes through driven ports.
package services
