package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/bitelog/bite/internal/analysis"
	"github.com/bitelog/bite/internal/config"
	"github.com/bitelog/bite/internal/ctxkeys"
	"github.com/bitelog/bite/internal/llm"
	"github.com/bitelog/bite/internal/metrics"
	"github.com/bitelog/bite/internal/model"
	"github.com/bitelog/bite/internal/photo"
	"github.com/bitelog/bite/internal/reconcile"
	"github.com/bitelog/bite/internal/repository"
)

// Pipeline stages, also used as metric labels.
const (
	StageUpload   = "upload"
	StageAnalyze  = "analyze"
	StageValidate = "validate"
	StagePersist  = "persist"
)

const (
	ImageSourceDataURL   = "data_url"
	ImageSourcePublicURL = "public_url"
)

// PersistFailedMessage is returned when the record could not be stored.
const PersistFailedMessage = "Failed to insert data"

// PipelineError is a terminal failure of the analysis pipeline. PublicURL is
// set whenever the photo was stored before the failure.
type PipelineError struct {
	Stage     string
	Status    int
	Message   string
	PublicURL string
	Err       error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Stage, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

type AnalyzeInput struct {
	User *model.User
	Form *photo.Form
}

// AnalyzeResult is the outcome of an analysis that reached the confidence
// gate. Product is nil when the analysis was rejected.
type AnalyzeResult struct {
	PublicURL string
	FilePath  string
	Analysis  model.FoodAnalysis
	Accepted  bool
	Product   *model.EatenProduct
}

type FoodPhotoService struct {
	photos      *PhotoStore
	llm         llm.Client
	products    repository.EatenProductRepository
	orphans     reconcile.Reporter
	imageSource string
	llmTimeout  time.Duration
	location    *time.Location
	now         func() time.Time
}

func NewFoodPhotoService(
	cfg *config.Config,
	photos *PhotoStore,
	client llm.Client,
	products repository.EatenProductRepository,
	orphans reconcile.Reporter,
) *FoodPhotoService {
	if orphans == nil {
		orphans = reconcile.LogReporter{}
	}
	return &FoodPhotoService{
		photos:      photos,
		llm:         client,
		products:    products,
		orphans:     orphans,
		imageSource: cfg.LLMImageSource,
		llmTimeout:  cfg.LLMTimeout,
		location:    cfg.Location(),
		now:         time.Now,
	}
}

// Analyze stores the photo and asks the model about it, then persists the
// record if the model is confident enough.
//
// Upload and analysis run concurrently and both run to completion; a failure
// of one does not cancel the other. An upload failure wins over everything
// else, so no record is ever written for a photo that was not stored.
func (s *FoodPhotoService) Analyze(ctx context.Context, in AnalyzeInput) (*AnalyzeResult, error) {
	now := s.now()
	p := photo.Process(in.User.ID, in.Form, now)
	log := slog.With("user_id", in.User.ID, "path", p.Path, "request_id", ctxkeys.RequestID(ctx))

	var (
		uploadErr  error
		completion string
		llmErr     error
	)

	if s.imageSource == ImageSourcePublicURL {
		// The model fetches the stored object, so it has to exist first.
		uploadErr = s.photos.Store(ctx, p)
		if uploadErr == nil {
			completion, llmErr = s.complete(ctx, llm.Image{
				MIMEType: p.ContentType,
				Data:     p.Data,
				URL:      s.photos.PublicURL(p.Path),
			})
		}
	} else {
		var wg sync.WaitGroup
		wg.Go(func() {
			uploadErr = s.photos.Store(ctx, p)
		})
		wg.Go(func() {
			completion, llmErr = s.complete(ctx, llm.Image{
				MIMEType: p.ContentType,
				Data:     p.Data,
				DataURL:  p.DataURL,
			})
		})
		wg.Wait()
	}

	if uploadErr != nil {
		log.Error("photo upload failed", "error", uploadErr)
		metrics.PipelineOutcomes.WithLabelValues("upload_error").Inc()
		return nil, &PipelineError{
			Stage:   StageUpload,
			Status:  http.StatusInternalServerError,
			Message: uploadErr.Error(),
			Err:     uploadErr,
		}
	}

	publicURL := s.photos.PublicURL(p.Path)

	if llmErr != nil {
		log.Error("photo analysis failed", "error", llmErr, "provider", s.llm.Name())
		metrics.PipelineOutcomes.WithLabelValues("analysis_error").Inc()
		return nil, &PipelineError{
			Stage:     StageAnalyze,
			Status:    http.StatusInternalServerError,
			Message:   llmErrorMessage(llmErr),
			PublicURL: publicURL,
			Err:       llmErr,
		}
	}

	parsed := analysis.Parse(completion)
	if parsed.Kind == analysis.KindFallback {
		metrics.ParseFallbacks.Inc()
		log.Warn("completion could not be parsed", "error", parsed.Cause)
	}

	result := &AnalyzeResult{
		PublicURL: publicURL,
		FilePath:  p.Path,
		Analysis:  parsed.Analysis,
	}

	if !analysis.ValidateConfidence(parsed.Analysis) {
		log.Info("analysis rejected", "confidence", parsed.Analysis.Confidence, "parse", parsed.Kind)
		metrics.PipelineOutcomes.WithLabelValues("low_confidence").Inc()
		return result, nil
	}

	product, err := PrepareEatenProduct(parsed.Analysis, in.User.ID, publicURL, in.Form.Date, now, s.location)
	if err != nil {
		metrics.PipelineOutcomes.WithLabelValues("invalid_input").Inc()
		s.reportOrphan(ctx, in.User.ID, p.Path, publicURL, err)
		return nil, &PipelineError{
			Stage:     StageValidate,
			Status:    http.StatusBadRequest,
			Message:   err.Error(),
			PublicURL: publicURL,
			Err:       err,
		}
	}

	started := time.Now()
	_, err = s.products.Create(ctx, product)
	metrics.ObserveStage(StagePersist, started)
	if err != nil {
		log.Error("failed to persist eaten product", "error", err)
		metrics.PipelineOutcomes.WithLabelValues("persist_error").Inc()
		s.reportOrphan(ctx, in.User.ID, p.Path, publicURL, err)
		return nil, &PipelineError{
			Stage:     StagePersist,
			Status:    http.StatusInternalServerError,
			Message:   PersistFailedMessage,
			PublicURL: publicURL,
			Err:       err,
		}
	}

	log.Info("eaten product recorded", "id", product.ID, "name", product.Name, "date", product.Date)
	metrics.PipelineOutcomes.WithLabelValues("success").Inc()
	result.Accepted = true
	result.Product = product
	return result, nil
}

func (s *FoodPhotoService) complete(ctx context.Context, img llm.Image) (string, error) {
	if s.llmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.llmTimeout)
		defer cancel()
	}

	started := time.Now()
	text, err := s.llm.Complete(ctx, img)
	metrics.ObserveStage(StageAnalyze, started)
	return text, err
}

func (s *FoodPhotoService) reportOrphan(ctx context.Context, userID, path, publicURL string, cause error) {
	err := s.orphans.ReportOrphan(ctx, reconcile.Orphan{
		UserID:    userID,
		Path:      path,
		PublicURL: publicURL,
		Reason:    cause.Error(),
		RequestID: ctxkeys.RequestID(ctx),
		At:        s.now().UTC(),
	})
	if err != nil {
		slog.Error("failed to report orphaned upload", "error", err, "path", path)
	}
}

func llmErrorMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "LLM request timed out"
	}
	return err.Error()
}
