package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ztoursph/booking-api/internal/models"
	"github.com/ztoursph/booking-api/internal/records"
)

type PackageHandler struct {
	records *records.Store
}

func NewPackageHandler(store *records.Store) *PackageHandler {
	return &PackageHandler{records: store}
}

type ListPackagesInput struct {
	Search   string `query:"search" doc:"Case-insensitive text matched against every package field"`
	Page     int    `query:"page" minimum:"0" doc:"1-based page number; 0 lists everything"`
	PageSize int    `query:"page_size" minimum:"0" maximum:"100"`
}

type ListPackagesOutput struct {
	Body *records.PackagePage
}

func (h *PackageHandler) HandleList(ctx context.Context, input *ListPackagesInput) (*ListPackagesOutput, error) {
	page, err := h.records.FindPackages(ctx, records.FindOptions{
		SearchText: input.Search,
		PageNumber: input.Page,
		PageSize:   input.PageSize,
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list packages")
	}
	return &ListPackagesOutput{Body: page}, nil
}

type GetPackageInput struct {
	Slug string `path:"slug"`
}

type GetPackageOutput struct {
	Body *models.Package
}

func (h *PackageHandler) HandleGet(ctx context.Context, input *GetPackageInput) (*GetPackageOutput, error) {
	pkg, err := h.records.FindPackageBySlug(ctx, input.Slug)
	if errors.Is(err, records.ErrNotFound) {
		return nil, huma.Error404NotFound("Package not found")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load package")
	}
	return &GetPackageOutput{Body: pkg}, nil
}
