package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/oneword-blog-backend/errs"
	"github.com/rpupo63/oneword-blog-backend/models"
	"github.com/rpupo63/oneword-blog-backend/services"
)

// blogPublisher is the part of services.Publisher the handlers use.
type blogPublisher interface {
	Generate(ctx context.Context, identity services.Identity, rawWord string) (*models.Blog, error)
	CreateManual(ctx context.Context, identity services.Identity, post services.ManualPost) (*models.Blog, error)
	Delete(ctx context.Context, identity services.Identity, id uuid.UUID) error
	ListRecent(ctx context.Context, limit int) ([]*models.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*models.Blog, error)
}

type blogHandler struct {
	responder Responder
	logger    zerolog.Logger
	publisher blogPublisher
	auth      authMiddleware
}

func newBlogHandler(publisher blogPublisher, auth authMiddleware) blogHandler {
	logger := log.With().Str("handlerName", "blogHandler").Logger()

	return blogHandler{
		responder: NewResponder(logger),
		logger:    logger,
		publisher: publisher,
		auth:      auth,
	}
}

// generateBlog turns one word into a stored blog.
// @Summary Generate blog from a word
// @Tags Blogs
// @Accept json
// @Produce json
// @Param request body generateRequest true "Word to write about"
// @Success 200 {object} blogResponse
// @Failure 400 {object} ErrorResponse "Invalid word"
// @Failure 401 {object} ErrorResponse "Missing or invalid bearer token"
// @Failure 502 {object} ErrorResponse "Completion provider error"
// @Failure 504 {object} ErrorResponse "Completion provider timed out"
// @Router /api/generate [post]
func (h blogHandler) generateBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		// Input is checked before the caller, so a bad word never costs an
		// identity lookup.
		if _, err := services.ValidateWord(req.Word); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		identity, err := h.auth.identify(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blog, err := h.publisher.Generate(r.Context(), identity, req.Word)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, blogResponse{Blog: blog})
	}
}

// createBlog stores a user written blog.
// @Summary Create blog
// @Tags Blogs
// @Accept json
// @Produce json
// @Param request body createBlogRequest true "Blog content; tags may be a list or a comma separated string"
// @Success 200 {object} blogResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/blogs [post]
func (h blogHandler) createBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Authentication handled by middleware
		identity, ok := ctxGetIdentity(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		var req createBlogRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := validateStruct(req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blog, err := h.publisher.CreateManual(r.Context(), identity, services.ManualPost{
			Title:   req.Title,
			Content: req.Content,
			Tags:    req.Tags,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, blogResponse{Blog: blog})
	}
}

// listBlogs returns the newest blogs.
// @Summary List blogs
// @Tags Blogs
// @Produce json
// @Param limit query int false "Maximum number of blogs (default 20, max 100)"
// @Success 200 {object} blogCollectionResponse
// @Router /api/blogs [get]
func (h blogHandler) listBlogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				h.responder.WriteError(w, errs.NewInvalidFieldError("limit", "must be a positive integer"))
				return
			}
			limit = n
		}

		blogs, err := h.publisher.ListRecent(r.Context(), limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if blogs == nil {
			blogs = []*models.Blog{}
		}

		h.responder.WriteJSON(w, blogCollectionResponse{Blogs: blogs, Total: len(blogs)})
	}
}

// getBlog returns one blog by slug.
// @Summary Get blog
// @Tags Blogs
// @Produce json
// @Param slug path string true "Blog slug"
// @Success 200 {object} blogResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/blogs/{slug} [get]
func (h blogHandler) getBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("slug"))
			return
		}

		blog, err := h.publisher.GetBySlug(r.Context(), slug)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, blogResponse{Blog: blog})
	}
}

// deleteBlog removes a blog owned by the caller.
// @Summary Delete blog
// @Tags Blogs
// @Produce json
// @Param id path string true "Blog ID" format(uuid)
// @Success 200 {object} statusResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/blogs/{id} [delete]
func (h blogHandler) deleteBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Authentication handled by middleware
		identity, ok := ctxGetIdentity(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError("id", "must be a UUID"))
			return
		}

		if err := h.publisher.Delete(r.Context(), identity, id); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, statusResponse{Status: "ok", Message: "Blog deleted"})
	}
}
