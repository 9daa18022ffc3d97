package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
)

// collectionStore implements driven.CollectionStore.
type collectionStore struct {
	store *Store
}

var _ driven.CollectionStore = (*collectionStore)(nil)

const collectionColumns = `id, name, description, color, created_at`

// CreateCollection stores a new collection and returns its ID.
func (s *collectionStore) CreateCollection(ctx context.Context, c *domain.Collection) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO collections (name, description, color, created_at)
		VALUES (?, ?, ?, ?)
	`, c.Name, c.Description, c.Color, createdAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("creating collection: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("creating collection: %w", err)
	}
	return id, nil
}

// GetCollection retrieves a collection by ID.
func (s *collectionStore) GetCollection(ctx context.Context, id int64) (*domain.Collection, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+collectionColumns+` FROM collections WHERE id = ?`, id)
	return scanCollection(row)
}

// ListCollections returns all collections, newest first.
func (s *collectionStore) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	return s.queryCollections(ctx,
		`SELECT `+collectionColumns+` FROM collections ORDER BY created_at DESC, id DESC`)
}

// DocumentCollections returns the collections containing a document.
func (s *collectionStore) DocumentCollections(ctx context.Context, documentID int64) ([]domain.Collection, error) {
	return s.queryCollections(ctx, `
		SELECT c.id, c.name, c.description, c.color, c.created_at
		FROM collections c
		JOIN collection_documents cd ON cd.collection_id = c.id
		WHERE cd.document_id = ?
		ORDER BY c.created_at DESC, c.id DESC
	`, documentID)
}

// UpdateCollection applies the non-nil fields of update.
func (s *collectionStore) UpdateCollection(ctx context.Context, id int64, update domain.CollectionUpdate) error {
	if update.Name != nil {
		if err := (domain.Collection{Name: *update.Name}).Validate(); err != nil {
			return err
		}
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE collections SET
			name = COALESCE(?, name),
			description = COALESCE(?, description),
			color = COALESCE(?, color)
		WHERE id = ?
	`, nullString(update.Name), nullString(update.Description), nullString(update.Color), id)
	if err != nil {
		return fmt.Errorf("updating collection: %w", err)
	}
	return requireAffected(res)
}

// DeleteCollection removes a collection. Memberships cascade.
func (s *collectionStore) DeleteCollection(ctx context.Context, id int64) error {
	if _, err := s.store.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// AddMembers adds documents to a collection in one transaction.
// Unknown collection or document IDs fail the whole batch.
func (s *collectionStore) AddMembers(ctx context.Context, collectionID int64, documentIDs []int64) error {
	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		row := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM collections WHERE id = ?)`, collectionID)
		if err := row.Scan(&exists); err != nil {
			return fmt.Errorf("checking collection: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO collection_documents (collection_id, document_id)
			VALUES (?, ?)
			ON CONFLICT DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("preparing statement: %w", err)
		}
		defer stmt.Close()

		for _, docID := range documentIDs {
			if err := documentExists(ctx, tx, docID); err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, collectionID, docID); err != nil {
				return fmt.Errorf("adding document %d: %w", docID, err)
			}
		}
		return nil
	})
}

// RemoveMember removes a single membership.
func (s *collectionStore) RemoveMember(ctx context.Context, collectionID, documentID int64) error {
	_, err := s.store.db.ExecContext(ctx,
		`DELETE FROM collection_documents WHERE collection_id = ? AND document_id = ?`,
		collectionID, documentID)
	if err != nil {
		return fmt.Errorf("removing member: %w", err)
	}
	return nil
}

// MemberIDs returns the IDs of the documents in a collection, ascending.
func (s *collectionStore) MemberIDs(ctx context.Context, collectionID int64) ([]int64, error) {
	if _, err := s.GetCollection(ctx, collectionID); err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT document_id FROM collection_documents
		WHERE collection_id = ?
		ORDER BY document_id
	`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("querying members: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating members: %w", err)
	}
	return ids, nil
}

func (s *collectionStore) queryCollections(ctx context.Context, query string, args ...any) ([]domain.Collection, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	cols := []domain.Collection{}
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		cols = append(cols, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}
	return cols, nil
}

func scanCollection(row rowScanner) (*domain.Collection, error) {
	var c domain.Collection
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.CreatedAt); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning collection: %w", err)
	}
	return &c, nil
}
