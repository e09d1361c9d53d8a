package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smarimus/ai-finance-assistant/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		title TEXT,
		text TEXT NOT NULL,
		category TEXT NOT NULL,
		source_url TEXT,
		word_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);

	CREATE TABLE IF NOT EXISTS article_chunks (
		id TEXT PRIMARY KEY,
		article_id TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		text TEXT NOT NULL,
		category TEXT NOT NULL,
		title TEXT,
		position INTEGER NOT NULL,
		FOREIGN KEY (article_id) REFERENCES articles(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_article_id ON article_chunks(article_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_chunks_position ON article_chunks(position);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateArticle inserts an article.
func (s *SQLiteStorage) CreateArticle(ctx context.Context, article *models.Article) error {
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (id, title, text, category, source_url, word_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		article.ID, article.Title, article.Text, string(article.Category),
		article.SourceURL, article.WordCount, article.CreatedAt,
	)
	return err
}

// GetArticle returns an article by ID.
func (s *SQLiteStorage) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	var category string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, text, category, source_url, word_count, created_at
		 FROM articles WHERE id = ?`, id,
	).Scan(&article.ID, &article.Title, &article.Text, &category,
		&article.SourceURL, &article.WordCount, &article.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("article not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	article.Category = models.Category(category)
	return &article, nil
}

// DeleteArticle removes an article by ID.
func (s *SQLiteStorage) DeleteArticle(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	return err
}

// ListArticles returns articles with offset and limit, newest first.
func (s *SQLiteStorage) ListArticles(ctx context.Context, offset, limit int) ([]*models.Article, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, text, category, source_url, word_count, created_at
		 FROM articles ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		var article models.Article
		var category string
		if err := rows.Scan(&article.ID, &article.Title, &article.Text, &category,
			&article.SourceURL, &article.WordCount, &article.CreatedAt); err != nil {
			return nil, err
		}
		article.Category = models.Category(category)
		articles = append(articles, &article)
	}
	return articles, rows.Err()
}

// GetChunk returns a chunk by ID.
func (s *SQLiteStorage) GetChunk(ctx context.Context, id string) (*models.Chunk, error) {
	var chunk models.Chunk
	var category string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, article_id, chunk_index, text, category, title
		 FROM article_chunks WHERE id = ?`, id,
	).Scan(&chunk.ID, &chunk.ArticleID, &chunk.Index, &chunk.Text, &category, &chunk.Title)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("chunk not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	chunk.Category = models.Category(category)
	return &chunk, nil
}

// GetChunksByArticleID returns all chunks for an article ordered by chunk_index.
func (s *SQLiteStorage) GetChunksByArticleID(ctx context.Context, articleID string) ([]*models.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, article_id, chunk_index, text, category, title
		 FROM article_chunks WHERE article_id = ? ORDER BY chunk_index`,
		articleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunks(rows)
}

// DeleteChunksByArticleID removes all chunks for an article.
func (s *SQLiteStorage) DeleteChunksByArticleID(ctx context.Context, articleID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM article_chunks WHERE article_id = ?`, articleID)
	return err
}

// BatchCreateChunks inserts multiple chunks in a transaction. Position is the
// insertion order within the whole index, matching the row's slot in the
// vector index so the two artifacts stay aligned.
func (s *SQLiteStorage) BatchCreateChunks(ctx context.Context, chunks []*models.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var start int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position)+1, 0) FROM article_chunks`).Scan(&start); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO article_chunks (id, article_id, chunk_index, text, category, title, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.ArticleID, chunk.Index,
			chunk.Text, string(chunk.Category), chunk.Title, start+int64(i)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AllChunks returns every chunk ordered by position.
func (s *SQLiteStorage) AllChunks(ctx context.Context) ([]*models.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, article_id, chunk_index, text, category, title
		 FROM article_chunks ORDER BY position`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunks(rows)
}

func scanChunks(rows *sql.Rows) ([]*models.Chunk, error) {
	var chunks []*models.Chunk
	for rows.Next() {
		var chunk models.Chunk
		var category string
		if err := rows.Scan(&chunk.ID, &chunk.ArticleID, &chunk.Index,
			&chunk.Text, &category, &chunk.Title); err != nil {
			return nil, err
		}
		chunk.Category = models.Category(category)
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}

// CountArticles returns the total number of articles.
func (s *SQLiteStorage) CountArticles(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count)
	return count, err
}

// CountChunks returns the total number of chunks.
func (s *SQLiteStorage) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM article_chunks`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
