package database

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/oneword-blog-backend/errs"
	"github.com/rpupo63/oneword-blog-backend/models"
)

const uniqueViolationCode = "23505"

type BlogRepo struct {
	db *gorm.DB
}

func NewBlogRepo(db *gorm.DB) *BlogRepo {
	return &BlogRepo{db}
}

// Insert stores a new blog. A taken slug is reported as
// errs.ErrUniqueConstraintViolation so callers can pick another one.
func (r *BlogRepo) Insert(ctx context.Context, blog *models.Blog) error {
	if blog.ID == uuid.Nil {
		blog.ID = uuid.New()
	}
	if blog.Tags == nil {
		blog.Tags = []string{}
	}

	err := r.db.WithContext(ctx).Create(blog).Error
	if isUniqueViolation(err) {
		return errs.NewUniqueConstraintViolationError("blog", "slug", err)
	}
	return wrapError("insert", err)
}

// ListRecent returns up to limit blogs, newest first.
func (r *BlogRepo) ListRecent(ctx context.Context, limit int) ([]*models.Blog, error) {
	var blogs []*models.Blog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&blogs).Error
	if err != nil {
		return nil, wrapError("list", err)
	}
	return blogs, nil
}

func (r *BlogRepo) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).Where("slug = ?", slug).Take(&blog).Error
	if err != nil {
		return nil, wrapError("get", err)
	}
	return &blog, nil
}

func (r *BlogRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&blog).Error
	if err != nil {
		return nil, wrapError("get", err)
	}
	return &blog, nil
}

func (r *BlogRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Blog{})
	if result.Error != nil {
		return wrapError("delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFound("blog")
	}
	return nil
}

// ListSlugsWithPrefix returns base and every base-suffixed slug. It always
// reads from the primary so a slug inserted a moment ago is visible.
func (r *BlogRepo) ListSlugsWithPrefix(ctx context.Context, base string) ([]string, error) {
	var slugs []string
	err := r.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Model(&models.Blog{}).
		Where("slug = ? OR slug LIKE ?", base, base+"-%").
		Pluck("slug", &slugs).Error
	if err != nil {
		return nil, wrapError("list slugs of", err)
	}
	return slugs, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	return strings.Contains(err.Error(), "duplicate key")
}

func wrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewNotFound("blog")
	}
	return errs.NewDatabaseError(operation, "blog", err)
}
