package handler

import (
	"net/http"
)

// HandleHealth responds with a 200 OK and a JSON body indicating the server is healthy.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  "healthy",
		"message": "Stock Analyst API is running",
	})
}

// HandleNotFound answers every unrouted request.
func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, CodeNotFound, "Endpoint not found")
}
