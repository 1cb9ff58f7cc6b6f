package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"cat-trivia-service/internal/app"
	"cat-trivia-service/internal/domain"
	"github.com/gorilla/mux"
)

// APIHandler exposes the game lifecycle as JSON over HTTP.
type APIHandler struct {
	service *app.GameService
}

func NewAPIHandler(service *app.GameService) *APIHandler {
	return &APIHandler{service: service}
}

// Register mounts the game routes on r.
func (h *APIHandler) Register(r *mux.Router) {
	api := r.PathPrefix("/api/game").Subrouter()
	api.HandleFunc("/start", h.Start).Methods(http.MethodPost)
	api.HandleFunc("/{id}", h.Get).Methods(http.MethodGet)
	api.HandleFunc("/{id}/answer", h.Answer).Methods(http.MethodPost)
	api.HandleFunc("/{id}/next", h.Next).Methods(http.MethodPost)
	api.HandleFunc("/{id}/stop", h.Stop).Methods(http.MethodPost)
}

type gameView struct {
	SessionID      string                  `json:"sessionId"`
	TotalQuestions int                     `json:"totalQuestions"`
	CurrentIndex   int                     `json:"currentIndex"`
	Score          int                     `json:"score"`
	IsFinished     bool                    `json:"isFinished"`
	Questions      []domain.PublicQuestion `json:"questions"`
}

type answerPayload struct {
	QuestionIndex int `json:"questionIndex"`
	SelectedIndex int `json:"selectedIndex"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func newGameView(state domain.GameState) gameView {
	return gameView{
		SessionID:      state.SessionID,
		TotalQuestions: state.TotalQuestions,
		CurrentIndex:   state.CurrentIndex,
		Score:          state.Score,
		IsFinished:     state.IsFinished(),
		Questions:      state.PublicQuestions(),
	}
}

func (h *APIHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req app.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid request body"})
		return
	}

	state, err := h.service.Start(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newGameView(state))
}

func (h *APIHandler) Get(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGameView(state))
}

func (h *APIHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var payload answerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid answer payload"})
		return
	}

	res, err := h.service.RecordAnswer(r.Context(), mux.Vars(r)["id"], payload.QuestionIndex, payload.SelectedIndex)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *APIHandler) Next(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Advance(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *APIHandler) Stop(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Stop(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, domain.ErrQuestionIndexOutOfRange),
		errors.Is(err, domain.ErrInvalidOption):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyAnswered):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoQuestions):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, status, errorPayload{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
