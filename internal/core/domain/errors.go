package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested document or collection does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfiguration indicates settings that cannot work,
	// such as a chunk overlap that is not smaller than the chunk size.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnsupportedType indicates a file type with no extractor.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrExtractionFailed indicates an unreadable or corrupt file.
	// It is carried inside an Extraction outcome, never returned by indexing.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrEmbeddingFailed indicates the model rejected or failed on an input.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrEmbeddingUnavailable indicates the embedding model could not be loaded.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrOCRToolNotFound indicates the rasterizer or recogniser binary is missing.
	ErrOCRToolNotFound = errors.New("ocr tool not found")

	// ErrSequenceConsumed indicates a single-pass sequence was ranged twice.
	ErrSequenceConsumed = errors.New("sequence already consumed")
)
