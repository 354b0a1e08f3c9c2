package server

import "net/http"

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("GET /api/stocks/{ticker}", s.handleStock)
	mux.HandleFunc("GET /api/stocks/{ticker}/{risk}", s.handleStock)
	mux.HandleFunc("GET /api/top-stocks", s.handleTopStocks)
	mux.HandleFunc("GET /api/movers", s.handleMovers)
	mux.HandleFunc("GET /api/sentiment", s.handleSentiment)
	mux.HandleFunc("GET /api/market-status", s.handleMarketStatus)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/chat", s.handleChat)

	mux.Handle("GET /metrics", s.metrics.Handler())

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "the requested endpoint does not exist")
}
