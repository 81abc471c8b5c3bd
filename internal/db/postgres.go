package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spacesedan/storyguard/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type PostgresStore struct {
	DB *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{DB: pool}
}

// ApplyMigrations brings the schema up to date. dsn is the postgres://
// URL the pool connects with.
func ApplyMigrations(dsn string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("[Postgres] failed to read migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrationURL(dsn))
	if err != nil {
		return fmt.Errorf("[Postgres] failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("[Postgres] No new migrations to apply")
			return nil
		}
		return fmt.Errorf("[Postgres] failed to apply migrations: %w", err)
	}

	slog.Info("[Postgres] Migrations applied")
	return nil
}

// migrationURL swaps the scheme for the one the pgx/v5 migrate driver
// registers.
func migrationURL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, scheme) {
			return "pgx5://" + strings.TrimPrefix(dsn, scheme)
		}
	}
	return dsn
}

func (s *PostgresStore) GetStory(ctx context.Context, id string) (models.Story, error) {
	query := `SELECT id, title, body, tags, created_at FROM stories WHERE id = $1`

	var story models.Story
	err := s.DB.QueryRow(ctx, query, id).Scan(
		&story.ID, &story.Title, &story.Body, &story.Tags, &story.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Story{}, ErrStoryNotFound
	}
	if err != nil {
		return models.Story{}, fmt.Errorf("[Postgres] failed to get story %s: %w", id, err)
	}
	return story, nil
}

func (s *PostgresStore) InsertComment(ctx context.Context, comment models.Comment) error {
	query := `
        INSERT INTO comments (id, story_id, author, content, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := s.DB.Exec(ctx, query,
		comment.ID, comment.StoryID, comment.Author, comment.Content, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("[Postgres] failed to insert comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetComment(ctx context.Context, id string) (models.Comment, error) {
	query := `SELECT id, story_id, author, content, created_at FROM comments WHERE id = $1`

	var comment models.Comment
	err := s.DB.QueryRow(ctx, query, id).Scan(
		&comment.ID, &comment.StoryID, &comment.Author, &comment.Content, &comment.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Comment{}, ErrCommentNotFound
	}
	if err != nil {
		return models.Comment{}, fmt.Errorf("[Postgres] failed to get comment %s: %w", id, err)
	}
	return comment, nil
}

func (s *PostgresStore) ListCommentsWithStories(ctx context.Context, page, limit int) ([]models.CommentWithStory, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM comments`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("[Postgres] failed to count comments: %w", err)
	}

	query := `
        SELECT c.id, c.story_id, c.author, c.content, c.created_at,
               s.id, s.title, s.body, s.tags
        FROM comments c
        LEFT JOIN stories s ON s.id = c.story_id
        ORDER BY c.created_at DESC
        LIMIT $1 OFFSET $2
    `

	rows, err := s.DB.Query(ctx, query, limit, pageOffset(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("[Postgres] failed to list comments: %w", err)
	}
	defer rows.Close()

	var out []models.CommentWithStory
	for rows.Next() {
		var (
			c         models.Comment
			storyID   *string
			title     *string
			body      *string
			storyTags []string
		)
		if err := rows.Scan(&c.ID, &c.StoryID, &c.Author, &c.Content, &c.CreatedAt,
			&storyID, &title, &body, &storyTags); err != nil {
			return nil, 0, fmt.Errorf("[Postgres] failed to scan comment row: %w", err)
		}

		row := models.CommentWithStory{Comment: c}
		if storyID != nil {
			row.Story = &models.ContentItem{
				Title: deref(title),
				Body:  deref(body),
				Tags:  storyTags,
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("[Postgres] failed to iterate comments: %w", err)
	}

	return out, total, nil
}

func (s *PostgresStore) Close() {
	if s.DB != nil {
		s.DB.Close()
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
