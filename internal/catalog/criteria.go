package catalog

import (
	"fmt"

	"merithub/internal/models"
)

// Predicate is the boolean criteria function bound to a badge's
// criteria key, evaluated against a user's stats snapshot.
type Predicate func(stats *models.UserStats) bool

// Criteria keys known to the engine. Every key in the in-code catalog
// must appear here; unknown keys are rejected at load time so a catalog
// typo fails the process start instead of silently never qualifying.
const (
	CriteriaFirstSale     = "first_sale"
	CriteriaSales10       = "sales_10"
	CriteriaSales50       = "sales_50"
	CriteriaFirstListing  = "first_listing"
	CriteriaListings25    = "listings_25"
	CriteriaFiveStar      = "five_star"
	CriteriaMemberOneYear = "member_1y"
	CriteriaFullyVerified = "fully_verified"
)

// VeteranThresholdDays is the smallest (and currently only) time-based
// criteria threshold. The periodic sweep keys its candidate query on it.
const VeteranThresholdDays = 365

var predicates = map[string]Predicate{
	CriteriaFirstSale: func(s *models.UserStats) bool {
		return s.TotalSales >= 1
	},
	CriteriaSales10: func(s *models.UserStats) bool {
		return s.TotalSales >= 10
	},
	CriteriaSales50: func(s *models.UserStats) bool {
		return s.TotalSales >= 50
	},
	CriteriaFirstListing: func(s *models.UserStats) bool {
		return s.TotalListings >= 1
	},
	CriteriaListings25: func(s *models.UserStats) bool {
		return s.TotalListings >= 25
	},
	// Composite: rating quality is meaningless on a thin review base.
	CriteriaFiveStar: func(s *models.UserStats) bool {
		return s.AvgRating >= 4.9 && s.ReviewCount >= 10
	},
	CriteriaMemberOneYear: func(s *models.UserStats) bool {
		return s.AccountAgeDays >= VeteranThresholdDays
	},
	CriteriaFullyVerified: func(s *models.UserStats) bool {
		return s.IDVerified && s.EmailVerified && s.PhoneVerified
	},
}

// PredicateFor returns the predicate bound to a criteria key.
func PredicateFor(key string) (Predicate, error) {
	p, ok := predicates[key]
	if !ok {
		return nil, fmt.Errorf("unknown criteria key %q", key)
	}
	return p, nil
}
