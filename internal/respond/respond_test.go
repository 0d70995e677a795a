package respond

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bitelog/bite/internal/model"
	json "github.com/goccy/go-json"
)

func assertEnvelope(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int) map[string]any {
	t.Helper()

	if rec.Code != wantStatus {
		t.Errorf("status = %d, want %d", rec.Code, wantStatus)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "authorization, x-client-info, apikey, content-type" {
		t.Errorf("Access-Control-Allow-Headers = %q", got)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestSuccess(t *testing.T) {
	id := int64(17)
	rec := httptest.NewRecorder()
	Success(rec, SuccessBody{
		PublicURL:  "https://cdn/u/photo-1.jpg",
		FilePath:   "u/photo-1.jpg",
		Analysis:   model.FoodAnalysis{FoodName: "Борщ", Confidence: "high"},
		InsertedID: &id,
	})

	body := assertEnvelope(t, rec, http.StatusOK)
	if body["success"] != true || body["insertedId"] != float64(17) || body["filePath"] != "u/photo-1.jpg" {
		t.Errorf("body = %v", body)
	}
	analysis := body["analysis"].(map[string]any)
	if _, ok := analysis["calories"]; ok {
		t.Error("absent calories serialized")
	}
	if _, ok := analysis["raw_response"]; ok {
		t.Error("empty raw_response serialized")
	}
}

func TestLowConfidence(t *testing.T) {
	rec := httptest.NewRecorder()
	LowConfidence(rec, "https://cdn/u/photo-1.jpg", model.FoodAnalysis{FoodName: "Unknown", Confidence: "low", RawResponse: "??"})

	body := assertEnvelope(t, rec, http.StatusUnprocessableEntity)
	if body["error"] != LowConfidenceMessage {
		t.Errorf("error = %v", body["error"])
	}
	if body["publicUrl"] != "https://cdn/u/photo-1.jpg" {
		t.Errorf("publicUrl = %v", body["publicUrl"])
	}
	analysis, ok := body["analysis"].(map[string]any)
	if !ok || analysis["raw_response"] != "??" {
		t.Errorf("analysis = %v", body["analysis"])
	}
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusUnauthorized, "Unauthorized")

	body := assertEnvelope(t, rec, http.StatusUnauthorized)
	if len(body) != 1 || body["error"] != "Unauthorized" {
		t.Errorf("body = %v", body)
	}

	rec = httptest.NewRecorder()
	ErrorWithURL(rec, http.StatusInternalServerError, "LLM API error: 502", "https://cdn/u/photo-1.jpg")
	body = assertEnvelope(t, rec, http.StatusInternalServerError)
	if body["publicUrl"] != "https://cdn/u/photo-1.jpg" {
		t.Errorf("publicUrl = %v", body["publicUrl"])
	}
}
