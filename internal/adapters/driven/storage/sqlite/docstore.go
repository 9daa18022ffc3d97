package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, path, name, size, modified_at, category, tags, embedding, fingerprint, added_at`

// ListDocuments returns all documents ordered by ID.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.queryDocuments(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY id`)
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id int64) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// GetDocumentByPath retrieves a document by its path.
func (s *documentStore) GetDocumentByPath(ctx context.Context, path string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE path = ?`, path)
	return scanDocument(row)
}

// GetDocuments retrieves the documents with the given IDs, ordered by ID.
func (s *documentStore) GetDocuments(ctx context.Context, ids []int64) ([]domain.Document, error) {
	if len(ids) == 0 {
		return []domain.Document{}, nil
	}
	docs := []domain.Document{}
	for batch := range idBatches(ids, maxInArgs) {
		in, args := inClause(batch)
		found, err := s.queryDocuments(ctx, `SELECT `+documentColumns+` FROM documents WHERE id IN `+in+` ORDER BY id`, args...)
		if err != nil {
			return nil, err
		}
		docs = append(docs, found...)
	}
	return docs, nil
}

// InsertDocument stores a new document. Existing paths are left untouched.
func (s *documentStore) InsertDocument(ctx context.Context, doc *domain.Document) (int64, bool, error) {
	if doc == nil || doc.Path == "" {
		return 0, false, fmt.Errorf("%w: document path is required", domain.ErrInvalidInput)
	}

	addedAt := doc.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now()
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (path, name, size, modified_at, category, tags, embedding, fingerprint, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO NOTHING
	`, doc.Path, doc.Name, doc.Size, nullTime(doc.ModifiedAt), doc.Category, doc.Tags,
		encodeVector(doc.Embedding), doc.Fingerprint, addedAt.UTC())
	if err != nil {
		return 0, false, fmt.Errorf("inserting document: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("inserting document: %w", err)
	}
	if affected == 1 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("inserting document: %w", err)
		}
		return id, true, nil
	}

	var id int64
	if err := s.store.db.QueryRowContext(ctx, `SELECT id FROM documents WHERE path = ?`, doc.Path).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("looking up existing document: %w", err)
	}
	return id, false, nil
}

// UpdateDocumentMetadata applies the non-nil fields of update.
func (s *documentStore) UpdateDocumentMetadata(
	ctx context.Context, id int64, update domain.DocumentMetadataUpdate,
) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE documents SET
			category = COALESCE(?, category),
			tags = COALESCE(?, tags)
		WHERE id = ?
	`, nullString(update.Category), nullString(update.Tags), id)
	if err != nil {
		return fmt.Errorf("updating document metadata: %w", err)
	}
	return requireAffected(res)
}

// DeleteDocuments removes documents. Chunks and memberships cascade.
func (s *documentStore) DeleteDocuments(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		for batch := range idBatches(ids, maxInArgs) {
			in, args := inClause(batch)
			if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id IN `+in, args...); err != nil {
				return fmt.Errorf("deleting documents: %w", err)
			}
		}
		return nil
	})
}

const chunkColumns = `document_id, chunk_index, content, embedding`

// ListChunks returns chunks ordered by (document_id, chunk_index).
// A nil ids slice lists every chunk.
func (s *documentStore) ListChunks(ctx context.Context, ids []int64) ([]domain.Chunk, error) {
	if ids == nil {
		return s.queryChunks(ctx, `SELECT `+chunkColumns+` FROM chunks ORDER BY document_id, chunk_index`)
	}

	chunks := []domain.Chunk{}
	for batch := range idBatches(ids, maxInArgs) {
		in, args := inClause(batch)
		found, err := s.queryChunks(ctx,
			`SELECT `+chunkColumns+` FROM chunks WHERE document_id IN `+in+` ORDER BY document_id, chunk_index`, args...)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, found...)
	}
	return chunks, nil
}

func (s *documentStore) queryChunks(ctx context.Context, query string, args ...any) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	chunks := []domain.Chunk{}
	for rows.Next() {
		var c domain.Chunk
		var embedding []byte
		if err := rows.Scan(&c.DocumentID, &c.Index, &c.Content, &embedding); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.Embedding = decodeVector(embedding)
		chunks = append(chunks, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// CountChunks returns the number of chunks stored for a document.
func (s *documentStore) CountChunks(ctx context.Context, documentID int64) (int, error) {
	var n int
	row := s.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE document_id = ?`, documentID)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// InsertChunk appends a single chunk row. The index must be the next
// free one so indices stay contiguous from 0.
func (s *documentStore) InsertChunk(ctx context.Context, chunk domain.Chunk) error {
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		if err := documentExists(ctx, tx, chunk.DocumentID); err != nil {
			return err
		}

		var next int
		row := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE document_id = ?`, chunk.DocumentID)
		if err := row.Scan(&next); err != nil {
			return fmt.Errorf("counting chunks: %w", err)
		}
		if chunk.Index != next {
			return fmt.Errorf("%w: chunk index %d of document %d, want %d",
				domain.ErrInvalidInput, chunk.Index, chunk.DocumentID, next)
		}

		return insertChunk(ctx, tx, chunk.DocumentID, chunk)
	})
}

// ReplaceChunks swaps the chunk set of a document and records its
// embedding and fingerprint in one transaction.
func (s *documentStore) ReplaceChunks(
	ctx context.Context, documentID int64, chunks []domain.Chunk, embedding []float32, fingerprint string,
) error {
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		if err := documentExists(ctx, tx, documentID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID); err != nil {
			return fmt.Errorf("deleting chunks: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO chunks (document_id, chunk_index, content, embedding)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing statement: %w", err)
		}
		defer stmt.Close()

		for _, c := range chunks {
			if _, err := stmt.ExecContext(ctx, documentID, c.Index, c.Content,
				encodeVector(c.Embedding)); err != nil {
				return fmt.Errorf("saving chunk %d: %w", c.Index, err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE documents SET embedding = ?, fingerprint = ? WHERE id = ?`,
			encodeVector(embedding), fingerprint, documentID); err != nil {
			return fmt.Errorf("updating document embedding: %w", err)
		}
		return nil
	})
}

// DeleteChunks removes all chunks of a document and clears its embedding.
func (s *documentStore) DeleteChunks(ctx context.Context, documentID int64) error {
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID); err != nil {
			return fmt.Errorf("deleting chunks: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE documents SET embedding = NULL, fingerprint = '' WHERE id = ?`, documentID); err != nil {
			return fmt.Errorf("clearing document embedding: %w", err)
		}
		return nil
	})
}

// SetDocumentEmbedding stores the whole-document embedding.
func (s *documentStore) SetDocumentEmbedding(ctx context.Context, id int64, embedding []float32) error {
	res, err := s.store.db.ExecContext(ctx,
		`UPDATE documents SET embedding = ? WHERE id = ?`, encodeVector(embedding), id)
	if err != nil {
		return fmt.Errorf("setting document embedding: %w", err)
	}
	return requireAffected(res)
}

func (s *documentStore) queryDocuments(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument scans a single document row.
func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var modifiedAt sql.NullTime
	var embedding []byte

	if err := row.Scan(&doc.ID, &doc.Path, &doc.Name, &doc.Size, &modifiedAt,
		&doc.Category, &doc.Tags, &embedding, &doc.Fingerprint, &doc.AddedAt); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if modifiedAt.Valid {
		doc.ModifiedAt = modifiedAt.Time
	}
	doc.Embedding = decodeVector(embedding)
	return &doc, nil
}

func insertChunk(ctx context.Context, tx *sql.Tx, documentID int64, c domain.Chunk) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO chunks (document_id, chunk_index, content, embedding)
		VALUES (?, ?, ?, ?)
	`, documentID, c.Index, c.Content, encodeVector(c.Embedding))
	if err != nil {
		return fmt.Errorf("saving chunk %d: %w", c.Index, err)
	}
	return nil
}

func documentExists(ctx context.Context, tx *sql.Tx, id int64) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM documents WHERE id = ?)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking document: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// nullString converts an optional string to sql.NullString.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
