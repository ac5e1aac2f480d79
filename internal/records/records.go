// Package records looks up persisted packages and bookings.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ztoursph/booking-api/internal/booking"
	"github.com/ztoursph/booking-api/internal/models"
)

var ErrNotFound = errors.New("record not found")

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

type FindOptions struct {
	SearchText string
	PageNumber int
	PageSize   int
}

type PackagePage struct {
	Records      []models.Package `json:"records"`
	TotalRecords int64            `json:"total_records"`
}

func orderedSections(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindPackages lists packages by view priority. With both PageNumber and
// PageSize set the list is paged and TotalRecords counts every package;
// otherwise all packages are returned and TotalRecords is their count. A
// search text then keeps only records whose JSON form contains it, ignoring
// case. TotalRecords is not reduced by the search.
func (s *Store) FindPackages(ctx context.Context, opts FindOptions) (*PackagePage, error) {
	db := s.db.WithContext(ctx)
	q := db.Preload("Sections", orderedSections).Order("view_priority ASC")

	var (
		result []models.Package
		total  int64
	)
	paged := opts.PageNumber > 0 && opts.PageSize > 0
	if paged {
		if err := db.Model(&models.Package{}).Count(&total).Error; err != nil {
			return nil, fmt.Errorf("count packages: %w", err)
		}
		q = q.Offset((opts.PageNumber - 1) * opts.PageSize).Limit(opts.PageSize)
	}
	if err := q.Find(&result).Error; err != nil {
		return nil, fmt.Errorf("find packages: %w", err)
	}
	if !paged {
		total = int64(len(result))
	}

	if opts.SearchText != "" {
		needle := strings.ToLower(opts.SearchText)
		filtered := result[:0]
		for _, p := range result {
			raw, err := json.Marshal(p)
			if err != nil {
				return nil, fmt.Errorf("encode package %s: %w", p.ID, err)
			}
			if strings.Contains(strings.ToLower(string(raw)), needle) {
				filtered = append(filtered, p)
			}
		}
		result = filtered
	}
	return &PackagePage{Records: result, TotalRecords: total}, nil
}

func (s *Store) FindPackageBySlug(ctx context.Context, slug string) (*models.Package, error) {
	var p models.Package
	err := s.db.WithContext(ctx).Preload("Sections", orderedSections).Where("slug = ?", slug).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find package %q: %w", slug, err)
	}
	return &p, nil
}

// FindPackageByID returns ErrNotFound for ids that are not UUIDs without
// querying.
func (s *Store) FindPackageByID(ctx context.Context, id string) (*models.Package, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	var p models.Package
	err := s.db.WithContext(ctx).Preload("Sections", orderedSections).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find package %s: %w", id, err)
	}
	return &p, nil
}

// FindPackagesByIDs ignores ids that are not UUIDs.
func (s *Store) FindPackagesByIDs(ctx context.Context, ids []string) ([]models.Package, error) {
	var valid []string
	for _, id := range ids {
		if isUUID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []models.Package{}, nil
	}
	var out []models.Package
	if err := s.db.WithContext(ctx).Where("id IN ?", valid).Order("view_priority ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("find packages: %w", err)
	}
	return out, nil
}

func (s *Store) CreatePackage(ctx context.Context, p *models.Package) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *Store) CreateBooking(ctx context.Context, b *models.Booking) error {
	return s.db.WithContext(ctx).Create(b).Error
}

func (s *Store) BookingByID(ctx context.Context, id string) (booking.Record, error) {
	if !isUUID(id) {
		return booking.Record{}, ErrNotFound
	}
	return s.loadBooking(ctx, "id = ?", id)
}

func (s *Store) BookingByReference(ctx context.Context, ref string) (booking.Record, error) {
	return s.loadBooking(ctx, "reference_number = ?", ref)
}

func (s *Store) loadBooking(ctx context.Context, query string, arg any) (booking.Record, error) {
	var b models.Booking
	err := s.db.WithContext(ctx).
		Preload("Tours", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Guests", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		Where(query, arg).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return booking.Record{}, ErrNotFound
	}
	if err != nil {
		return booking.Record{}, fmt.Errorf("load booking: %w", err)
	}
	return ToRecord(b), nil
}

// ToRecord converts a stored booking. Tours keep their position order and
// guest groupings appear in the order their first guest was stored.
func ToRecord(b models.Booking) booking.Record {
	r := booking.Record{
		ReferenceNumber: b.ReferenceNumber,
		FirstName:       b.FirstName,
		MiddleName:      b.MiddleName,
		LastName:        b.LastName,
		Suffix:          b.Suffix,
		Email:           b.Email,
		MobileNumber1:   b.MobileNumber1,
		MobileNumber2:   b.MobileNumber2,
		Nationality:     b.Nationality,
		BookingDate:     b.BookingDate,
		GrandTotal:      b.GrandTotal,
		Fees:            b.Fees,
	}

	tours := append([]models.BookingTour(nil), b.Tours...)
	sort.SliceStable(tours, func(i, j int) bool { return tours[i].Position < tours[j].Position })
	for _, t := range tours {
		r.BookedTours = append(r.BookedTours, booking.BookedTour{
			ID:         t.ID,
			Title:      t.Title,
			Date:       t.Date,
			PickupTime: t.PickupTime,
			Pax:        t.Pax,
			Subtotal:   t.Subtotal,
		})
	}

	guests := append([]models.BookingGuest(nil), b.Guests...)
	sort.SliceStable(guests, func(i, j int) bool { return guests[i].Position < guests[j].Position })
	index := make(map[string]int)
	for _, g := range guests {
		i, ok := index[g.BookingTourID]
		if !ok {
			i = len(r.Guests)
			index[g.BookingTourID] = i
			r.Guests = append(r.Guests, booking.TourGuests{TourID: g.BookingTourID})
		}
		r.Guests[i].Guests = append(r.Guests[i].Guests, booking.Guest{
			ID:          g.GuestID,
			FirstName:   g.FirstName,
			MiddleName:  g.MiddleName,
			LastName:    g.LastName,
			Suffix:      g.Suffix,
			Age:         g.Age,
			Nationality: g.Nationality,
		})
	}
	return r
}

// SaveDocument records a stored artifact, replacing the entry with the same
// bucket and key.
func (s *Store) SaveDocument(ctx context.Context, d *models.Document) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bucket"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "booking_id", "package_id", "media_type", "size", "pages", "updated_at"}),
	}).Create(d).Error
}

func (s *Store) DocumentsForBooking(ctx context.Context, bookingID string) ([]models.Document, error) {
	var docs []models.Document
	if err := s.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func isUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
