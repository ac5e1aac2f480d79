package booking

// Summary is the derived view of a record used by the itinerary sections.
type Summary struct {
	Masterlist    []Guest
	Adults        int
	Kids          int
	LeadGuestName string
	// Orphans are masterlist guests whose grouping names a tour that is not
	// booked. They are counted but get no per-tour page.
	Orphans []Guest
}

// TourRoster is the guest list of one booked tour.
type TourRoster struct {
	Tour   BookedTour
	Guests []Guest
}

// Aggregate flattens the guest groupings into the masterlist, keeping the
// first occurrence of every guest id in first-seen order.
func Aggregate(r Record) Summary {
	booked := make(map[string]struct{}, len(r.BookedTours))
	for _, t := range r.BookedTours {
		booked[t.ID] = struct{}{}
	}

	s := Summary{LeadGuestName: r.LeadGuestName()}
	seen := make(map[string]struct{})
	for _, group := range r.Guests {
		_, known := booked[group.TourID]
		for _, g := range group.Guests {
			if _, dup := seen[g.ID]; dup {
				continue
			}
			seen[g.ID] = struct{}{}
			s.Masterlist = append(s.Masterlist, g)
			if g.IsKid() {
				s.Kids++
			} else {
				s.Adults++
			}
			if !known {
				s.Orphans = append(s.Orphans, g)
			}
		}
	}
	return s
}

// Rosters returns one roster per booked tour in booking order. Groupings that
// share a tour id are concatenated and deduplicated by guest id.
func Rosters(r Record) []TourRoster {
	rosters := make([]TourRoster, 0, len(r.BookedTours))
	for _, t := range r.BookedTours {
		rosters = append(rosters, TourRoster{Tour: t, Guests: GuestsFor(r, t.ID)})
	}
	return rosters
}

func GuestsFor(r Record, tourID string) []Guest {
	var guests []Guest
	seen := make(map[string]struct{})
	for _, group := range r.Guests {
		if group.TourID != tourID {
			continue
		}
		for _, g := range group.Guests {
			if _, dup := seen[g.ID]; dup {
				continue
			}
			seen[g.ID] = struct{}{}
			guests = append(guests, g)
		}
	}
	return guests
}
