package models

import (
	"gorm.io/gorm"
)

const (
	DocumentItinerary   = "itinerary"
	DocumentTourDetails = "tour-details"
)

// Document indexes a generated file kept in object storage.
type Document struct {
	gorm.Model
	Kind      string  `json:"kind" gorm:"index"`
	BookingID *string `json:"booking_id" gorm:"size:36;index"`
	PackageID *string `json:"package_id" gorm:"size:36;index"`
	Bucket    string  `json:"bucket" gorm:"uniqueIndex:idx_bucket_key"`
	Key       string  `json:"key" gorm:"uniqueIndex:idx_bucket_key"`
	MediaType string  `json:"media_type"`
	Size      int64   `json:"size"`
	Pages     int     `json:"pages"`
}
