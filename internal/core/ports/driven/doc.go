// Package driven lists what the services need from the outside world.
//
// Storage is split between DocumentStore (documents, chunks and their
// vectors) and CollectionStore (collections and memberships), with
// ConfigStore holding user settings. Indexing reads files through
// FileScanner and TextExtractor, splits text with a PostProcessor and
// turns chunks into vectors with an EmbeddingService.
//
// PageRasterizer and TextRecognizer back the OCR fallback for scanned
// PDFs. Both may be nil, in which case only the text layer is used.
//
// Interfaces here use domain types only; adapters import this package,
// never the other way round.
package driven
