package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/oneword-blog-backend/content"
	"github.com/rpupo63/oneword-blog-backend/errs"
	"github.com/rpupo63/oneword-blog-backend/models"
	"github.com/rpupo63/oneword-blog-backend/validation"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100

	// Limits on user supplied tags, counted after blanks and duplicates are
	// dropped and excluding the manual marker.
	MaxTags      = 20
	MaxTagLength = 50

	// Attempts at inserting with a freshly computed slug before giving up.
	maxSlugAttempts = 3
)

// BlogStore is the persistence the publisher needs. database.BlogRepo
// implements it.
type BlogStore interface {
	Insert(ctx context.Context, blog *models.Blog) error
	ListRecent(ctx context.Context, limit int) ([]*models.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*models.Blog, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Blog, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	ListSlugsWithPrefix(ctx context.Context, base string) ([]string, error)
}

// ManualPost is a user written post.
type ManualPost struct {
	Title   string
	Content string
	Tags    []string
}

// Publisher turns words and manual posts into stored blogs.
type Publisher struct {
	store     BlogStore
	generator ContentGenerator
	renderer  *content.Renderer
	logger    zerolog.Logger
}

func NewPublisher(store BlogStore, generator ContentGenerator, renderer *content.Renderer) *Publisher {
	return &Publisher{
		store:     store,
		generator: generator,
		renderer:  renderer,
		logger:    log.With().Str("service", "publisher").Logger(),
	}
}

// Generate validates rawWord, asks the generator for a post and stores it
// under identity.
func (p *Publisher) Generate(ctx context.Context, identity Identity, rawWord string) (*models.Blog, error) {
	word, err := ValidateWord(rawWord)
	if err != nil {
		return nil, err
	}

	text, err := p.generator.Generate(ctx, word)
	if err != nil {
		return nil, err
	}

	blog := &models.Blog{
		Title:     content.ExtractTitle(text, word),
		ContentMD: text,
		Tags:      content.GeneratedTags(word),
		Owner:     models.OwnedBy(identity.UserID),
	}
	if err := p.publish(ctx, blog); err != nil {
		return nil, err
	}
	p.logger.Info().Str("word", word).Str("slug", blog.Slug).Stringer("owner", blog.Owner).Msg("Published generated blog")
	return blog, nil
}

// CreateManual stores a post written by identity. Title and content are
// trimmed and must not be empty.
func (p *Publisher) CreateManual(ctx context.Context, identity Identity, post ManualPost) (*models.Blog, error) {
	title := strings.TrimSpace(post.Title)
	if title == "" {
		return nil, errs.NewMissingRequiredFieldError("title")
	}
	body := strings.TrimSpace(post.Content)
	if body == "" {
		return nil, errs.NewMissingRequiredFieldError("content")
	}
	tags, err := checkTags(content.ManualTags(post.Tags))
	if err != nil {
		return nil, err
	}

	blog := &models.Blog{
		Title:     title,
		ContentMD: body,
		Tags:      tags,
		Owner:     models.OwnedBy(identity.UserID),
	}
	if err := p.publish(ctx, blog); err != nil {
		return nil, err
	}
	p.logger.Info().Str("slug", blog.Slug).Stringer("owner", blog.Owner).Msg("Published manual blog")
	return blog, nil
}

// publish renders the markdown, then inserts under a unique slug. A slug
// taken between reading existing slugs and inserting is retried with a
// recomputed suffix.
func (p *Publisher) publish(ctx context.Context, blog *models.Blog) error {
	html, err := p.renderer.Render(blog.ContentMD)
	if err != nil {
		return errs.NewInternalErrorWithCause("failed to render markdown", err)
	}
	blog.ContentHTML = html

	base := content.Slugify(blog.Title)
	var lastErr error
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		existing, err := p.store.ListSlugsWithPrefix(ctx, base)
		if err != nil {
			return err
		}
		blog.Slug = content.UniqueSlug(base, existing)

		err = p.store.Insert(ctx, blog)
		if err == nil {
			return nil
		}
		if !errs.IsUniqueConstraintViolationError(err) {
			return err
		}
		p.logger.Debug().Str("slug", blog.Slug).Int("attempt", attempt).Msg("Slug taken, retrying")
		lastErr = err
	}
	return errs.NewInternalErrorWithCause(fmt.Sprintf("could not find a free slug for %q", base), lastErr)
}

// Delete removes a blog owned by identity.
func (p *Publisher) Delete(ctx context.Context, identity Identity, id uuid.UUID) error {
	blog, err := p.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !blog.Owner.Owns(identity.UserID) {
		return errs.NewNotOwnerError("blog")
	}
	if err := p.store.DeleteByID(ctx, id); err != nil {
		return err
	}
	p.logger.Info().Str("slug", blog.Slug).Stringer("owner", blog.Owner).Msg("Deleted blog")
	return nil
}

// ListRecent clamps limit to [1, MaxListLimit]; zero or less means the default.
func (p *Publisher) ListRecent(ctx context.Context, limit int) ([]*models.Blog, error) {
	return p.store.ListRecent(ctx, ClampLimit(limit))
}

func (p *Publisher) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	return p.store.GetBySlug(ctx, slug)
}

// checkTags enforces the tag limits on an already normalised tag list.
func checkTags(tags []string) ([]string, error) {
	if len(tags)-1 > MaxTags {
		return nil, errs.NewInvalidFieldError("tags", fmt.Sprintf("at most %d tags are allowed", MaxTags))
	}
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return nil, errs.NewInvalidFieldError("tags", fmt.Sprintf("each tag must be at most %d characters", MaxTagLength))
		}
	}
	return tags, nil
}

func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// ValidateWord runs the word rules and converts a rejection into a 400
// carrying the rule's message.
func ValidateWord(raw string) (string, error) {
	word, err := validation.ValidateWord(raw)
	if err != nil {
		reason := ""
		if vErr, ok := err.(*validation.Error); ok {
			reason = string(vErr.Reason)
		}
		return "", errs.NewInvalidWordError(err, reason)
	}
	return word, nil
}
