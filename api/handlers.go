package api

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(r router, auth authMiddleware) *routeHandlers {
	return &routeHandlers{
		blogHandler:   newBlogHandler(r.publisher, auth),
		wordHandler:   newWordHandler(),
		healthHandler: newHealthHandler(r.db, r.startupTime),
	}
}
