package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-maps/pkg/embeddedmaps"
)

// Schema creates the tables used by Repository. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS posts (
	id         BIGINT PRIMARY KEY,
	post_type  VARCHAR(50) NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS postmeta (
	post_id    BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	meta_key   VARCHAR(255) NOT NULL,
	meta_value TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (post_id, meta_key)
);`

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements embeddedmaps.Repository and embeddedmaps.GeoLocator
// on top of a posts/postmeta schema
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Migrate applies Schema
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return r.handlePostgresError("migrate", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("post already exists")
		case "23503": // foreign_key_violation
			return embeddedmaps.ErrPostNotFound
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return embeddedmaps.ErrPostNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Post operations

func (r *Repository) CreatePost(ctx context.Context, post *embeddedmaps.Post) error {
	if post.ID <= 0 {
		return embeddedmaps.ErrInvalidPostID
	}
	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now

	query := `
		INSERT INTO posts (id, post_type, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			post_type = EXCLUDED.post_type, title = EXCLUDED.title, updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query, int64(post.ID), string(post.Type), post.Title, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create post", err)
	}
	return nil
}

func (r *Repository) GetPost(ctx context.Context, id embeddedmaps.PostID) (*embeddedmaps.Post, error) {
	query := `SELECT id, post_type, title, created_at, updated_at FROM posts WHERE id = $1`

	var (
		post     embeddedmaps.Post
		rawID    int64
		postType string
	)
	err := r.db.QueryRow(ctx, query, int64(id)).Scan(&rawID, &postType, &post.Title, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, r.handlePostgresError("get post", err)
	}
	post.ID = embeddedmaps.PostID(rawID)
	post.Type = embeddedmaps.PostType(postType)
	return &post, nil
}

func (r *Repository) SetMeta(ctx context.Context, id embeddedmaps.PostID, key, value string) error {
	query := `
		INSERT INTO postmeta (post_id, meta_key, meta_value) VALUES ($1, $2, $3)
		ON CONFLICT (post_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value`

	if _, err := r.db.Exec(ctx, query, int64(id), key, value); err != nil {
		return r.handlePostgresError("set meta", err)
	}
	return nil
}

// GetMeta returns a meta value, or "" when unset
func (r *Repository) GetMeta(ctx context.Context, id embeddedmaps.PostID, key string) (string, error) {
	query := `SELECT meta_value FROM postmeta WHERE post_id = $1 AND meta_key = $2`

	var value string
	err := r.db.QueryRow(ctx, query, int64(id), key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", r.handlePostgresError("get meta", err)
	}
	return value, nil
}

// embeddedmaps.Repository

func (r *Repository) ResolveCanonicalID(ctx context.Context, id embeddedmaps.PostID) (embeddedmaps.PostID, error) {
	if id != 0 {
		return id, nil
	}
	current, _ := embeddedmaps.CurrentPostFromContext(ctx)
	return current, nil
}

func (r *Repository) IsEvent(ctx context.Context, id embeddedmaps.PostID) (bool, error) {
	return r.isType(ctx, id, embeddedmaps.PostTypeEvent)
}

func (r *Repository) IsVenue(ctx context.Context, id embeddedmaps.PostID) (bool, error) {
	return r.isType(ctx, id, embeddedmaps.PostTypeVenue)
}

func (r *Repository) VenueIDForEvent(ctx context.Context, eventID embeddedmaps.PostID) (embeddedmaps.PostID, error) {
	raw, err := r.GetMeta(ctx, eventID, embeddedmaps.MetaEventVenueID)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 0 {
		return 0, nil
	}
	return embeddedmaps.PostID(id), nil
}

func (r *Repository) Title(ctx context.Context, id embeddedmaps.PostID) (string, error) {
	post, err := r.GetPost(ctx, id)
	if errors.Is(err, embeddedmaps.ErrPostNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return post.Title, nil
}

func (r *Repository) FieldValue(ctx context.Context, venueID embeddedmaps.PostID, field embeddedmaps.AddressField) (string, error) {
	return r.GetMeta(ctx, venueID, field.MetaKey())
}

// embeddedmaps.GeoLocator

func (r *Repository) Latitude(ctx context.Context, venueID embeddedmaps.PostID) (string, error) {
	return r.GetMeta(ctx, venueID, embeddedmaps.MetaVenueLat)
}

func (r *Repository) Longitude(ctx context.Context, venueID embeddedmaps.PostID) (string, error) {
	return r.GetMeta(ctx, venueID, embeddedmaps.MetaVenueLng)
}

func (r *Repository) OverwriteCoordinates(ctx context.Context, venueID embeddedmaps.PostID) (bool, error) {
	raw, err := r.GetMeta(ctx, venueID, embeddedmaps.MetaVenueGeoOverride)
	if err != nil {
		return false, err
	}
	return embeddedmaps.MetaFlag(raw), nil
}

func (r *Repository) isType(ctx context.Context, id embeddedmaps.PostID, postType embeddedmaps.PostType) (bool, error) {
	if id == 0 {
		return false, nil
	}
	query := `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1 AND post_type = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, int64(id), string(postType)).Scan(&exists); err != nil {
		return false, r.handlePostgresError("classify post", err)
	}
	return exists, nil
}
