package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Booking struct {
	ID              string          `json:"id" gorm:"primaryKey;size:36"`
	ReferenceNumber string          `json:"reference_number" gorm:"uniqueIndex"`
	FirstName       string          `json:"first_name"`
	MiddleName      string          `json:"middle_name"`
	LastName        string          `json:"last_name"`
	Suffix          string          `json:"suffix"`
	Email           string          `json:"email"`
	MobileNumber1   string          `json:"mobile_number1"`
	MobileNumber2   string          `json:"mobile_number2"`
	Nationality     string          `json:"nationality"`
	BookingDate     time.Time       `json:"booking_date"`
	GrandTotal      decimal.Decimal `json:"grand_total" gorm:"type:decimal(12,2)"`
	Fees            decimal.Decimal `json:"fees" gorm:"type:decimal(12,2)"`
	Tours           []BookingTour   `json:"tours" gorm:"constraint:OnDelete:CASCADE"`
	Guests          []BookingGuest  `json:"guests" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// BookingTour is one tour of a booking. Position keeps booking order.
type BookingTour struct {
	ID         string          `json:"id" gorm:"primaryKey;size:36"`
	BookingID  string          `json:"-" gorm:"size:36;index"`
	PackageID  *string         `json:"package_id" gorm:"size:36"`
	Position   int             `json:"position"`
	Title      string          `json:"title"`
	Date       time.Time       `json:"date"`
	PickupTime string          `json:"pickup_time"`
	Pax        int             `json:"pax"`
	Subtotal   decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2)"`
}

func (t *BookingTour) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// BookingGuest places a guest on one tour. The same GuestID appears once per
// tour the guest joins.
type BookingGuest struct {
	ID            uint   `json:"-" gorm:"primaryKey"`
	BookingID     string `json:"-" gorm:"size:36;index"`
	BookingTourID string `json:"booking_tour_id" gorm:"size:36;index"`
	GuestID       string `json:"guest_id" gorm:"size:36"`
	Position      int    `json:"position"`
	FirstName     string `json:"first_name"`
	MiddleName    string `json:"middle_name"`
	LastName      string `json:"last_name"`
	Suffix        string `json:"suffix"`
	Age           int    `json:"age"`
	Nationality   string `json:"nationality"`
}
