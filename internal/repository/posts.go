package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"personalizer/internal/models"
)

type PostRepository interface {
	SavePost(post *models.Post) error
	GetRecentPosts(userID string, limit int) ([]*models.Post, error)
}

type postRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPostRepository(db *sqlx.DB, logger *zap.Logger) PostRepository {
	return &postRepository{db: db, logger: logger}
}

func (r *postRepository) SavePost(post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO posts (id, user_id, caption, language, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(query, post.ID, post.UserID, post.Caption, post.Language, post.CreatedAt)
	return err
}

func (r *postRepository) GetRecentPosts(userID string, limit int) ([]*models.Post, error) {
	query := `SELECT id, user_id, caption, language, created_at FROM posts
	          WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Queryx(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post := &models.Post{}
		if err := rows.StructScan(post); err != nil {
			r.logger.Error("Failed to scan post", zap.Error(err))
			continue
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}
