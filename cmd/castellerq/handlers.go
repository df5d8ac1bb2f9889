package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/janreigtorra/castellerq/internal/database"
	"github.com/janreigtorra/castellerq/internal/orchestrator"
	"github.com/janreigtorra/castellerq/types"
	"go.uber.org/zap"
)

func healthHandler(pool *database.PoolManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func questionHandler(orch *orchestrator.Orchestrator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Content == "" {
			http.Error(w, "content is required", http.StatusBadRequest)
			return
		}
		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
		}

		resp, err := orch.ProcessQuestion(r.Context(), req)
		if err != nil {
			logger.Error("process question failed", zap.Error(err))
			writeCoreError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func routeHandler(orch *orchestrator.Orchestrator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Content == "" {
			http.Error(w, "content is required", http.StatusBadRequest)
			return
		}

		result, err := orch.GetRoute(r.Context(), req.Content)
		if err != nil {
			logger.Error("get route failed", zap.Error(err))
			writeCoreError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

// writeCoreError never leaks raw error text to the caller (§4.11 "a
// graceful localized message, never raw error text"); it surfaces the
// structured Error's Message and HTTP status when one is available.
func writeCoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Hi ha hagut un error inesperat. Torna-ho a provar."

	var coreErr *types.Error
	if errors.As(err, &coreErr) {
		message = coreErr.Message
		if coreErr.HTTPStatus != 0 {
			status = coreErr.HTTPStatus
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
