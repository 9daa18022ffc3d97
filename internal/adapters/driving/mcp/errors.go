// Package mcp provides an MCP (Model Context Protocol) server adapter for deepdocs.
// It lets AI assistants search the local library and index documents on demand.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
