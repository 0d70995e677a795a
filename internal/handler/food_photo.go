package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bitelog/bite/internal/ctxkeys"
	"github.com/bitelog/bite/internal/metrics"
	"github.com/bitelog/bite/internal/photo"
	"github.com/bitelog/bite/internal/respond"
	"github.com/bitelog/bite/internal/service"
)

type FoodPhotoHandler struct {
	foodPhotoService *service.FoodPhotoService
	maxPhotoBytes    int64
}

func NewFoodPhotoHandler(foodPhotoService *service.FoodPhotoService, maxPhotoBytes int64) *FoodPhotoHandler {
	return &FoodPhotoHandler{
		foodPhotoService: foodPhotoService,
		maxPhotoBytes:    maxPhotoBytes,
	}
}

// Analyze handles the multipart photo upload. It expects RequireBearer to have
// put the caller into the context.
func (h *FoodPhotoHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	if user == nil {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	form, err := photo.ParseForm(w, r, h.maxPhotoBytes)
	if err != nil {
		metrics.PipelineOutcomes.WithLabelValues("invalid_input").Inc()
		switch {
		case errors.Is(err, photo.ErrPhotoTooLarge):
			respond.Error(w, http.StatusBadRequest, "Photo too large")
		case errors.Is(err, photo.ErrNoPhoto):
			respond.Error(w, http.StatusBadRequest, "No photo provided")
		default:
			slog.Error("failed to read photo", "error", err, "user_id", user.ID)
			respond.Error(w, http.StatusBadRequest, "Failed to read photo")
		}
		return
	}

	result, err := h.foodPhotoService.Analyze(r.Context(), service.AnalyzeInput{User: user, Form: form})
	if err != nil {
		var pe *service.PipelineError
		if errors.As(err, &pe) {
			respond.ErrorWithURL(w, pe.Status, pe.Message, pe.PublicURL)
			return
		}
		slog.Error("photo analysis failed", "error", err, "user_id", user.ID)
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !result.Accepted {
		respond.LowConfidence(w, result.PublicURL, result.Analysis)
		return
	}

	body := respond.SuccessBody{
		PublicURL: result.PublicURL,
		FilePath:  result.FilePath,
		Analysis:  result.Analysis,
	}
	if result.Product != nil {
		body.InsertedID = &result.Product.ID
	}
	respond.Success(w, body)
}
