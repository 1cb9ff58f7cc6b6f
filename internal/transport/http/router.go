package http

import (
	"net/http"

	"cat-trivia-service/internal/app"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter wires the REST API, the websocket endpoint and health check behind CORS.
func NewRouter(service *app.GameService) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	NewAPIHandler(service).Register(r)
	r.HandleFunc("/ws", NewWSHandler(service).ServeWS)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}
