package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes mounts the public read endpoints and the authenticated writes.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Get("/healthz", handlers.healthHandler.health())

	r.Route("/api", func(r chi.Router) {
		r.Get("/words/validate", handlers.wordHandler.validateWord())

		// Validates the word before authenticating, so it checks the
		// bearer itself.
		r.Post("/generate", handlers.blogHandler.generateBlog())

		r.Get("/blogs", handlers.blogHandler.listBlogs())
		r.Get("/blogs/{slug}", handlers.blogHandler.getBlog())

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Post("/blogs", handlers.blogHandler.createBlog())
			r.Delete("/blogs/{id}", handlers.blogHandler.deleteBlog())
		})
	})
}
