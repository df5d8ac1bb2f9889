package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/janreigtorra/castellerq/types"
	"go.uber.org/zap"
)

func TestWriteCoreErrorUsesStructuredMessageAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	err := types.NewError(types.ErrVectorStoreError, "no s'ha pogut vectoritzar la pregunta").
		WithHTTPStatus(http.StatusServiceUnavailable)

	writeCoreError(rec, err)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if body["message"] != "no s'ha pogut vectoritzar la pregunta" {
		t.Errorf("message = %q, want the structured error's message", body["message"])
	}
}

func TestWriteCoreErrorFindsWrappedStructuredError(t *testing.T) {
	rec := httptest.NewRecorder()
	core := types.NewError(types.ErrQueryError, "la consulta ha fallat")
	wrapped := fmt.Errorf("orchestrator: %w", core)

	writeCoreError(rec, wrapped)

	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "la consulta ha fallat" {
		t.Errorf("message = %q, want the wrapped structured error's message", body["message"])
	}
}

func TestWriteCoreErrorFallsBackForPlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeCoreError(rec, fmt.Errorf("boom"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 for an unstructured error", rec.Code)
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if strings.Contains(body["message"], "boom") {
		t.Error("a plain error's raw text must never be leaked to the caller")
	}
}

func TestQuestionHandlerRejectsEmptyContent(t *testing.T) {
	handler := questionHandler(nil, zap.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/question", strings.NewReader(`{"content":""}`))
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for empty content", rec.Code)
	}
}

func TestQuestionHandlerRejectsInvalidJSON(t *testing.T) {
	handler := questionHandler(nil, zap.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/question", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for malformed JSON", rec.Code)
	}
}

func TestRouteHandlerRejectsEmptyContent(t *testing.T) {
	handler := routeHandler(nil, zap.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/route", strings.NewReader(`{"content":""}`))
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for empty content", rec.Code)
	}
}
