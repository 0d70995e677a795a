package respond

import (
	"log/slog"
	"net/http"

	"github.com/bitelog/bite/internal/model"
	json "github.com/goccy/go-json"
)

// LowConfidenceMessage is shown to the user when the photo could not be
// analysed reliably.
const LowConfidenceMessage = "Низкая точность анализа. Пожалуйста, попробуйте снова с более четким фото."

// CORSHeaders are set on every response.
var CORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
}

func ApplyCORS(h http.Header) {
	for k, v := range CORSHeaders {
		h.Set(k, v)
	}
}

type SuccessBody struct {
	Success    bool               `json:"success"`
	PublicURL  string             `json:"publicUrl"`
	FilePath   string             `json:"filePath"`
	Analysis   model.FoodAnalysis `json:"analysis"`
	InsertedID *int64             `json:"insertedId,omitempty"`
}

type ErrorBody struct {
	Error     string              `json:"error"`
	PublicURL string              `json:"publicUrl,omitempty"`
	Analysis  *model.FoodAnalysis `json:"analysis,omitempty"`
	Available []string            `json:"available,omitempty"`
}

// JSON writes v with CORS headers.
func JSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Internal server error"}`)
	}

	ApplyCORS(w.Header())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func Success(w http.ResponseWriter, body SuccessBody) {
	body.Success = true
	JSON(w, http.StatusOK, body)
}

// LowConfidence answers 422 so the client can offer manual entry for the stored photo.
func LowConfidence(w http.ResponseWriter, publicURL string, analysis model.FoodAnalysis) {
	JSON(w, http.StatusUnprocessableEntity, ErrorBody{
		Error:     LowConfidenceMessage,
		PublicURL: publicURL,
		Analysis:  &analysis,
	})
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// ErrorWithURL keeps the stored photo reachable for the client.
func ErrorWithURL(w http.ResponseWriter, status int, message, publicURL string) {
	JSON(w, status, ErrorBody{Error: message, PublicURL: publicURL})
}
