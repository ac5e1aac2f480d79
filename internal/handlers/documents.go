package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ztoursph/booking-api/internal/auth"
	"github.com/ztoursph/booking-api/internal/composer"
	"github.com/ztoursph/booking-api/internal/documents"
	"github.com/ztoursph/booking-api/internal/records"
	"github.com/ztoursph/booking-api/internal/storage"
)

// DocumentService generates and stores documents.
type DocumentService interface {
	GenerateItinerary(ctx context.Context, id, bucketHint string) (*documents.Result, error)
	GenerateTourDetails(ctx context.Context, slug, bucketHint string) (*documents.Result, error)
	GenerateBatch(ctx context.Context, ids []string, bucketHint string) ([]documents.BatchItem, error)
}

type DocumentHandler struct {
	docs        DocumentService
	authHandler *auth.AuthHandler
	logger      *slog.Logger
}

func NewDocumentHandler(docs DocumentService, authHandler *auth.AuthHandler, logger *slog.Logger) *DocumentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentHandler{docs: docs, authHandler: authHandler, logger: logger}
}

type DocumentOutput struct {
	Body *documents.Result
}

type GenerateItineraryInput struct {
	auth.AuthInput
	ID     string `path:"id" doc:"Booking id"`
	Bucket string `query:"bucket" doc:"Target bucket; the configured bucket when empty"`
}

func (h *DocumentHandler) HandleItinerary(ctx context.Context, input *GenerateItineraryInput) (*DocumentOutput, error) {
	if _, err := h.authHandler.Authorize(ctx, &input.AuthInput); err != nil {
		return nil, err
	}
	res, err := h.docs.GenerateItinerary(ctx, input.ID, input.Bucket)
	if err != nil {
		return nil, h.generationError(err, "Booking not found")
	}
	return &DocumentOutput{Body: res}, nil
}

type GenerateTourDetailsInput struct {
	auth.AuthInput
	Slug   string `path:"slug"`
	Bucket string `query:"bucket"`
}

func (h *DocumentHandler) HandleTourDetails(ctx context.Context, input *GenerateTourDetailsInput) (*DocumentOutput, error) {
	if _, err := h.authHandler.Authorize(ctx, &input.AuthInput); err != nil {
		return nil, err
	}
	res, err := h.docs.GenerateTourDetails(ctx, input.Slug, input.Bucket)
	if err != nil {
		return nil, h.generationError(err, "Package not found")
	}
	return &DocumentOutput{Body: res}, nil
}

type GenerateBatchInput struct {
	auth.AuthInput
	Body struct {
		BookingIDs []string `json:"booking_ids" minItems:"1" maxItems:"100"`
		Bucket     string   `json:"bucket,omitempty"`
	}
}

type BatchItemResponse struct {
	BookingID string            `json:"booking_id"`
	Result    *documents.Result `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
}

type GenerateBatchOutput struct {
	Body struct {
		Succeeded int                 `json:"succeeded"`
		Failed    int                 `json:"failed"`
		Items     []BatchItemResponse `json:"items"`
	}
}

func (h *DocumentHandler) HandleBatch(ctx context.Context, input *GenerateBatchInput) (*GenerateBatchOutput, error) {
	if _, err := h.authHandler.Authorize(ctx, &input.AuthInput); err != nil {
		return nil, err
	}
	items, err := h.docs.GenerateBatch(ctx, input.Body.BookingIDs, input.Body.Bucket)
	if err != nil {
		return nil, huma.Error503ServiceUnavailable("Batch interrupted")
	}

	resp := &GenerateBatchOutput{}
	resp.Body.Items = make([]BatchItemResponse, 0, len(items))
	for _, item := range items {
		out := BatchItemResponse{BookingID: item.BookingID, Result: item.Result}
		if item.Err != nil {
			out.Error = clientMessage(item.Err)
			resp.Body.Failed++
		} else {
			resp.Body.Succeeded++
		}
		resp.Body.Items = append(resp.Body.Items, out)
	}
	return resp, nil
}

func (h *DocumentHandler) generationError(err error, notFound string) error {
	switch {
	case errors.Is(err, records.ErrNotFound):
		return huma.Error404NotFound(notFound)
	case errors.Is(err, composer.ErrInput), errors.Is(err, documents.ErrNoSections), errors.Is(err, storage.ErrInvalidKey):
		return huma.Error422UnprocessableEntity(clientMessage(err))
	default:
		h.logger.Error("document generation failed", "error", err)
		return huma.Error500InternalServerError(clientMessage(err))
	}
}

// clientMessage names the failure class without internal detail.
func clientMessage(err error) string {
	switch {
	case errors.Is(err, records.ErrNotFound):
		return "record not found"
	case errors.Is(err, documents.ErrNoSections):
		return "package has no sections"
	case errors.Is(err, storage.ErrInvalidKey):
		return "document name is not a valid storage key"
	case errors.Is(err, composer.ErrInput):
		return "booking is incomplete"
	case errors.Is(err, composer.ErrAsset):
		return "document assets unavailable"
	case errors.Is(err, composer.ErrEncoding):
		return "scan code could not be encoded"
	case errors.Is(err, composer.ErrLayout):
		return "document layout failed"
	case errors.Is(err, composer.ErrStream):
		return "document output failed"
	default:
		return "document generation failed"
	}
}
