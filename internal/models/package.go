package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Package is a tour package offered on the storefront.
type Package struct {
	ID           string           `json:"id" gorm:"primaryKey;size:36"`
	Slug         string           `json:"slug" gorm:"uniqueIndex"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Location     string           `json:"location"`
	Price        decimal.Decimal  `json:"price" gorm:"type:decimal(12,2)"`
	ViewPriority int              `json:"view_priority" gorm:"index"`
	Sections     []PackageSection `json:"sections" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (p *Package) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PackageSection is one titled HTML block of a package's details page.
type PackageSection struct {
	ID          uint   `json:"-" gorm:"primaryKey"`
	PackageID   string `json:"-" gorm:"size:36;index"`
	Position    int    `json:"position"`
	Title       string `json:"title"`
	HTMLContent string `json:"html_content"`
}
