package booking

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guest(id string, age int) Guest {
	return Guest{ID: id, FirstName: "Guest", LastName: id, Age: age, Nationality: "Filipino"}
}

func TestAggregate(t *testing.T) {
	rec := Record{
		FirstName:  "John",
		MiddleName: "dela",
		LastName:   "Cruz",
		BookedTours: []BookedTour{
			{ID: "t1", Title: "Island Hopping A", Subtotal: decimal.NewFromInt(1000)},
			{ID: "t2", Title: "Island Hopping C", Subtotal: decimal.NewFromInt(1200)},
		},
		Guests: []TourGuests{
			{TourID: "t1", Guests: []Guest{guest("g1", 30), guest("g2", 5)}},
			{TourID: "t2", Guests: []Guest{guest("g2", 5), guest("g3", 7), guest("g1", 30)}},
		},
	}

	t.Run("Masterlist", func(t *testing.T) {
		s := Aggregate(rec)
		require.Len(t, s.Masterlist, 3)
		assert.Equal(t, "g1", s.Masterlist[0].ID)
		assert.Equal(t, "g2", s.Masterlist[1].ID)
		assert.Equal(t, "g3", s.Masterlist[2].ID)
		assert.Equal(t, 2, s.Adults, "age 7 counts as adult")
		assert.Equal(t, 1, s.Kids)
		assert.Equal(t, len(s.Masterlist), s.Adults+s.Kids)
		assert.Empty(t, s.Orphans)
		assert.Equal(t, "John D. Cruz", s.LeadGuestName)
	})

	t.Run("Idempotent", func(t *testing.T) {
		first := Aggregate(rec)
		second := Aggregate(rec)
		assert.Equal(t, first, second)
	})

	t.Run("Orphans", func(t *testing.T) {
		orphaned := rec
		orphaned.Guests = append([]TourGuests{}, rec.Guests...)
		orphaned.Guests = append(orphaned.Guests, TourGuests{TourID: "missing", Guests: []Guest{guest("g9", 3)}})

		s := Aggregate(orphaned)
		require.Len(t, s.Masterlist, 4)
		assert.Equal(t, 2, s.Kids)
		require.Len(t, s.Orphans, 1)
		assert.Equal(t, "g9", s.Orphans[0].ID)

		for _, roster := range Rosters(orphaned) {
			for _, g := range roster.Guests {
				assert.NotEqual(t, "g9", g.ID)
			}
		}
	})

	t.Run("Empty", func(t *testing.T) {
		s := Aggregate(Record{})
		assert.Empty(t, s.Masterlist)
		assert.Zero(t, s.Adults+s.Kids)
		assert.Equal(t, "", s.LeadGuestName)
	})
}

func TestRosters(t *testing.T) {
	rec := Record{
		BookedTours: []BookedTour{{ID: "t2"}, {ID: "t1"}, {ID: "t3"}},
		Guests: []TourGuests{
			{TourID: "t1", Guests: []Guest{guest("a", 10)}},
			{TourID: "t2", Guests: []Guest{guest("b", 10)}},
			{TourID: "t1", Guests: []Guest{guest("c", 10), guest("a", 10)}},
		},
	}

	rosters := Rosters(rec)
	require.Len(t, rosters, 3)
	assert.Equal(t, "t2", rosters[0].Tour.ID, "rosters follow booked tour order")
	assert.Equal(t, "t1", rosters[1].Tour.ID)
	assert.Len(t, rosters[1].Guests, 2)
	assert.Empty(t, rosters[2].Guests)
}

func TestJoinName(t *testing.T) {
	cases := []struct {
		name                        string
		first, middle, last, suffix string
		want                        string
	}{
		{"all parts", "Maria", "santos", "Reyes", "Jr.", "Maria S. Reyes Jr."},
		{"no middle", "Maria", "", "Reyes", "", "Maria Reyes"},
		{"blank parts", "  ", " ", "Reyes", " ", "Reyes"},
		{"only first", "Maria", "", "", "", "Maria"},
		{"none", "", "", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, JoinName(tc.first, tc.middle, tc.last, tc.suffix))
		})
	}
}

func TestRecordHelpers(t *testing.T) {
	rec := Record{
		MobileNumber1: "0917 000 0000",
		MobileNumber2: " ",
		BookedTours: []BookedTour{
			{Subtotal: decimal.NewFromInt(1000)},
			{Subtotal: decimal.RequireFromString("250.50")},
		},
	}
	assert.Equal(t, "0917 000 0000", rec.ContactNumbers())
	assert.True(t, rec.ToursSubtotal().Equal(decimal.RequireFromString("1250.50")))
}
