package models

import (
	"gorm.io/gorm"
)

// Operator is a staff account allowed to generate and download documents.
type Operator struct {
	gorm.Model
	Subject string `gorm:"uniqueIndex"`
	Name    string
	Email   string
	Avatar  string
}
