package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"clubReadsAPI/internal/engine"
	"clubReadsAPI/internal/storage"
	"clubReadsAPI/internal/types/reading"
	"clubReadsAPI/middleware"
	"clubReadsAPI/services"
)

type ReadingHandler struct {
	readingService *services.ReadingService
}

func NewReadingHandler(readingService *services.ReadingService) *ReadingHandler {
	return &ReadingHandler{
		readingService: readingService,
	}
}

func (h *ReadingHandler) RegisterReading(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req reading.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	info, err := h.readingService.RegisterReading(ctx, userID, &req)
	if err != nil {
		log.Printf("RegisterReading Handler: Service error for user %s: %v", userID, err)
		switch {
		case errors.Is(err, services.ErrInvalidRequest):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, engine.ErrInvalidDay):
			respondWithError(w, http.StatusBadRequest, "Reading day is earlier than the last recorded day")
		case errors.Is(err, storage.ErrConflict):
			respondWithError(w, http.StatusConflict, "Concurrent update, please retry")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to register reading")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, info)
}

func (h *ReadingHandler) GetStreakInfo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	info, err := h.readingService.GetStreakInfo(ctx, userID)
	if err != nil {
		log.Printf("GetStreakInfo Handler: Service error for user %s: %v", userID, err)
		if errors.Is(err, storage.ErrConflict) {
			respondWithError(w, http.StatusConflict, "Concurrent update, please retry")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to get streak info")
		return
	}

	respondWithJSON(w, http.StatusOK, info)
}

func (h *ReadingHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid limit format")
			return
		}
	}

	history, err := h.readingService.GetHistory(ctx, userID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, history)
}

func (h *ReadingHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	year := r.URL.Query().Get("year")
	month := r.URL.Query().Get("month")
	if year == "" || month == "" {
		respondWithError(w, http.StatusBadRequest, "year and month are required")
		return
	}

	var yearInt, monthInt int
	if _, err := fmt.Sscanf(year, "%d", &yearInt); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid year format")
		return
	}
	if _, err := fmt.Sscanf(month, "%d", &monthInt); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid month format")
		return
	}
	if monthInt < 1 || monthInt > 12 {
		respondWithError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	cal, err := h.readingService.GetCalendar(ctx, userID, yearInt, monthInt)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, cal)
}

func (h *ReadingHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	readingStats, err := h.readingService.GetStats(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, readingStats)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
