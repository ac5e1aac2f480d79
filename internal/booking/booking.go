package booking

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// KidAgeLimit is the exclusive upper bound for a guest to count as a kid.
const KidAgeLimit = 7

type Guest struct {
	ID          string
	FirstName   string
	MiddleName  string
	LastName    string
	Suffix      string
	Age         int
	Nationality string
}

func (g Guest) FullName() string {
	return JoinName(g.FirstName, g.MiddleName, g.LastName, g.Suffix)
}

func (g Guest) IsKid() bool {
	return g.Age < KidAgeLimit
}

type BookedTour struct {
	ID         string
	Title      string
	Date       time.Time
	PickupTime string
	Pax        int
	Subtotal   decimal.Decimal
}

// TourGuests is one guest grouping of a booking. A record keeps its
// groupings as an ordered slice so first-seen order is deterministic.
type TourGuests struct {
	TourID string
	Guests []Guest
}

type Record struct {
	ReferenceNumber string
	FirstName       string
	MiddleName      string
	LastName        string
	Suffix          string
	Email           string
	MobileNumber1   string
	MobileNumber2   string
	Nationality     string
	BookingDate     time.Time
	GrandTotal      decimal.Decimal
	Fees            decimal.Decimal
	BookedTours     []BookedTour
	Guests          []TourGuests
}

func (r *Record) LeadGuestName() string {
	return JoinName(r.FirstName, r.MiddleName, r.LastName, r.Suffix)
}

// ContactNumbers joins the non-empty mobile numbers with " / ".
func (r *Record) ContactNumbers() string {
	var nums []string
	for _, n := range []string{r.MobileNumber1, r.MobileNumber2} {
		if n = strings.TrimSpace(n); n != "" {
			nums = append(nums, n)
		}
	}
	return strings.Join(nums, " / ")
}

// ToursSubtotal sums the subtotal of every booked tour.
func (r *Record) ToursSubtotal() decimal.Decimal {
	total := decimal.Zero
	for _, t := range r.BookedTours {
		total = total.Add(t.Subtotal)
	}
	return total
}

// JoinName builds a display name from first, middle, last and suffix parts.
// The middle name is reduced to its initial. Empty parts are skipped.
func JoinName(first, middle, last, suffix string) string {
	parts := make([]string, 0, 4)
	if s := strings.TrimSpace(first); s != "" {
		parts = append(parts, s)
	}
	if initial := middleInitial(middle); initial != "" {
		parts = append(parts, initial)
	}
	for _, p := range []string{last, suffix} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func middleInitial(middle string) string {
	for _, r := range strings.TrimSpace(middle) {
		return string(unicode.ToUpper(r)) + "."
	}
	return ""
}
