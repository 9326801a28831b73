package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/matchpulse/collector/internal/platform/logging"
	"github.com/matchpulse/collector/internal/usecase"
)

var validate = validator.New()

type Handler struct {
	collectionService *usecase.CollectionService
	qualityService    *usecase.QualityService
	sourceNames       []string
	serviceName       string
	serviceVersion    string
	logger            *logging.Logger
}

func NewHandler(
	collectionService *usecase.CollectionService,
	qualityService *usecase.QualityService,
	sourceNames []string,
	serviceName string,
	serviceVersion string,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		collectionService: collectionService,
		qualityService:    qualityService,
		sourceNames:       sourceNames,
		serviceName:       serviceName,
		serviceVersion:    serviceVersion,
		logger:            logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": h.serviceName,
		"version": h.serviceVersion,
	})
}

type collectRequest struct {
	SourceName   string  `json:"source_name" validate:"required"`
	Competitions []int64 `json:"competitions" validate:"dive,gt=0"`
	DateFrom     string  `json:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo       string  `json:"date_to" validate:"omitempty,datetime=2006-01-02"`
}

// TriggerCollect runs one collection synchronously and returns the run
// summary. Per-competition failures are part of the summary body, not
// an error status.
func (h *Handler) TriggerCollect(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.TriggerCollect")
	defer span.End()

	var payload collectRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	input := usecase.CollectionInput{
		SourceName:   payload.SourceName,
		Competitions: payload.Competitions,
	}
	if payload.DateFrom != "" {
		input.DateFrom, _ = time.Parse("2006-01-02", payload.DateFrom)
	}
	if payload.DateTo != "" {
		input.DateTo, _ = time.Parse("2006-01-02", payload.DateTo)
	}

	summary, err := h.collectionService.Collect(ctx, input)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}

type collectAllRequest struct {
	Competitions []int64 `json:"competitions" validate:"dive,gt=0"`
	DateFrom     string  `json:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo       string  `json:"date_to" validate:"omitempty,datetime=2006-01-02"`
	MaxWorkers   int     `json:"max_workers" validate:"omitempty,min=1,max=32"`
}

func (h *Handler) TriggerCollectAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.TriggerCollectAll")
	defer span.End()

	var payload collectAllRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	input := usecase.MultiSourceInput{
		Competitions: payload.Competitions,
		MaxWorkers:   payload.MaxWorkers,
	}
	if payload.DateFrom != "" {
		input.DateFrom, _ = time.Parse("2006-01-02", payload.DateFrom)
	}
	if payload.DateTo != "" {
		input.DateTo, _ = time.Parse("2006-01-02", payload.DateTo)
	}

	result, err := h.collectionService.CollectSources(ctx, input)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetQuality(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.GetQuality")
	defer span.End()

	report, err := h.qualityService.GetQualityReport(ctx, h.sourceNames)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}
