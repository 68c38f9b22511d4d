// Package storage persists extractions to Postgres and serves the digest
// queries.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore implements ports.ArticleStore on a plain *sql.DB.
type PostgresStore struct {
	db *sql.DB
}

var _ ports.ArticleStore = (*PostgresStore)(nil)

// Open connects and verifies the DSN.
func Open(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStore wires an existing sql.DB.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS extractions (
			id         BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS collections (
			id            BIGSERIAL PRIMARY KEY,
			source        VARCHAR(200) NOT NULL UNIQUE,
			extraction_id BIGINT REFERENCES extractions(id),
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			id            BIGSERIAL PRIMARY KEY,
			title         VARCHAR(500) NOT NULL,
			source        VARCHAR(200) NOT NULL,
			link          VARCHAR(1000) NOT NULL UNIQUE,
			published     VARCHAR(200) NOT NULL DEFAULT '',
			content       TEXT NOT NULL DEFAULT '',
			summary       TEXT NOT NULL DEFAULT '',
			rank_score    DOUBLE PRECISION NOT NULL DEFAULT 0,
			collection_id BIGINT NOT NULL REFERENCES collections(id),
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles (created_at)`,
		`CREATE TABLE IF NOT EXISTS recipients (
			email VARCHAR(320) PRIMARY KEY
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// InsertExtraction stores one extraction in a single transaction. Links are
// the idempotence key: an article whose link already exists has its
// non-empty summary and content updated instead of creating a second row.
func (s *PostgresStore) InsertExtraction(ctx context.Context, extraction domain.Extraction) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var extractionID int64
	query, args, err := psql.Insert("extractions").
		Columns("created_at").
		Values(sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build extraction insert: %w", err)
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&extractionID); err != nil {
		return 0, fmt.Errorf("insert extraction: %w", err)
	}

	for _, col := range extraction.Collections {
		collectionID, err := s.upsertCollection(ctx, tx, col.Source, extractionID)
		if err != nil {
			return 0, err
		}

		for _, article := range col.Articles {
			if err := s.upsertArticle(ctx, tx, article, collectionID); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit extraction: %w", err)
	}
	return extractionID, nil
}

func (s *PostgresStore) upsertCollection(ctx context.Context, tx *sql.Tx, source string, extractionID int64) (int64, error) {
	query, args, err := psql.Insert("collections").
		Columns("source", "extraction_id").
		Values(source, extractionID).
		Suffix(`ON CONFLICT (source) DO UPDATE
			SET extraction_id = EXCLUDED.extraction_id,
			    updated_at = NOW()
			RETURNING id`).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build collection upsert: %w", err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert collection %s: %w", source, err)
	}
	return id, nil
}

func (s *PostgresStore) upsertArticle(ctx context.Context, tx *sql.Tx, article domain.Article, collectionID int64) error {
	query, args, err := psql.Insert("articles").
		Columns("title", "source", "link", "published", "content", "summary", "rank_score", "collection_id").
		Values(article.Title, article.Source, article.Link, article.Published,
			article.Content, article.Summary, article.RankScore, collectionID).
		Suffix(`ON CONFLICT (link) DO UPDATE
			SET summary = COALESCE(NULLIF(EXCLUDED.summary, ''), articles.summary),
			    content = COALESCE(NULLIF(EXCLUDED.content, ''), articles.content),
			    rank_score = EXCLUDED.rank_score`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build article upsert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert article %s: %w", article.Link, err)
	}
	return nil
}

// ArticlesCreatedBetween returns articles whose created_at falls within
// [start, end], inclusive both ends, newest first.
func (s *PostgresStore) ArticlesCreatedBetween(ctx context.Context, start, end time.Time) ([]domain.PersistedArticle, error) {
	query, args, err := psql.Select(
		"id", "title", "source", "link", "published", "content", "summary", "rank_score", "collection_id", "created_at").
		From("articles").
		Where(sq.GtOrEq{"created_at": start}).
		Where(sq.LtOrEq{"created_at": end}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build day query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.PersistedArticle
	for rows.Next() {
		var a domain.PersistedArticle
		if err := rows.Scan(&a.ID, &a.Title, &a.Source, &a.Link, &a.Published,
			&a.Content, &a.Summary, &a.RankScore, &a.CollectionID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}

// ListRecipientEmails returns every configured digest recipient.
func (s *PostgresStore) ListRecipientEmails(ctx context.Context) ([]string, error) {
	query, args, err := psql.Select("email").From("recipients").OrderBy("email").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recipients query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recipients: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return emails, nil
}
