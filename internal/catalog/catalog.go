// Package catalog owns the fixed achievement catalog: badge definitions,
// their criteria predicates, and the derived milestone definitions.
// The catalog is immutable configuration; it is validated once at load
// and passed by reference to the services that read it.
package catalog

import (
	"fmt"

	"merithub/internal/models"
)

// Badge IDs, referenced from tests and the sweep.
const (
	BadgeFirstSale      = "badge_first_sale"
	BadgeActiveSeller   = "badge_active_seller"
	BadgePowerSeller    = "badge_power_seller"
	BadgeFirstListing   = "badge_first_listing"
	BadgeProlificLister = "badge_prolific_lister"
	BadgeFiveStar       = "badge_five_star"
	BadgeVeteran        = "badge_veteran"
	BadgeVerified       = "badge_verified"
)

// Entry is one validated catalog entry: a badge definition with its
// criteria predicate already bound.
type Entry struct {
	Definition models.BadgeDefinition
	Predicate  Predicate
}

// Catalog is the loaded, validated badge catalog.
type Catalog struct {
	entries []Entry
	byID    map[string]*Entry
}

// definitions is the authoritative in-code catalog, in display order.
// ensureInitialized seeds missing rows from this list and never updates
// existing rows, so admin edits to stored rows survive deploys.
var definitions = []models.BadgeDefinition{
	{
		ID: BadgeFirstSale, Name: "First Sale",
		Description: "Completed your first sale on the marketplace.",
		Icon:        "badges/first_sale", Color: "#2e8b57", Category: "sales",
		CriteriaKey: CriteriaFirstSale, DisplayPriority: 10, PointsValue: 50,
		AutoAward: true, IsActive: true,
	},
	{
		ID: BadgeActiveSeller, Name: "Active Seller",
		Description: "Completed 10 sales.",
		Icon:        "badges/active_seller", Color: "#1e90ff", Category: "sales",
		CriteriaKey: CriteriaSales10, DisplayPriority: 20, PointsValue: 150,
		AutoAward: true, IsActive: true,
	},
	{
		ID: BadgePowerSeller, Name: "Power Seller",
		Description: "Completed 50 sales.",
		Icon:        "badges/power_seller", Color: "#ffd700", Category: "sales",
		CriteriaKey: CriteriaSales50, DisplayPriority: 30, PointsValue: 500,
		AutoAward: true, IsActive: true,
	},
	{
		ID: BadgeFirstListing, Name: "First Listing",
		Description: "Published your first listing.",
		Icon:        "badges/first_listing", Color: "#9370db", Category: "listings",
		CriteriaKey: CriteriaFirstListing, DisplayPriority: 40, PointsValue: 25,
		AutoAward: true, IsActive: true,
	},
	{
		ID: BadgeProlificLister, Name: "Prolific Lister",
		Description: "Published 25 listings.",
		Icon:        "badges/prolific_lister", Color: "#8a2be2", Category: "listings",
		CriteriaKey: CriteriaListings25, DisplayPriority: 50, PointsValue: 200,
		AutoAward: true, IsActive: true,
	},
	{
		ID: BadgeFiveStar, Name: "5-Star Seller",
		Description: "Maintained a 4.9+ rating across at least 10 reviews.",
		Icon:        "badges/five_star", Color: "#ff8c00", Category: "reputation",
		CriteriaKey: CriteriaFiveStar, DisplayPriority: 60, PointsValue: 300,
		AutoAward: true, IsActive: true,
	},
	{
		ID: BadgeVeteran, Name: "Veteran",
		Description: "A member for over a year.",
		Icon:        "badges/veteran", Color: "#b22222", Category: "tenure",
		CriteriaKey: CriteriaMemberOneYear, DisplayPriority: 70, PointsValue: 100,
		AutoAward: true, IsActive: true,
	},
	{
		ID: BadgeVerified, Name: "Verified",
		Description: "Verified ID, email, and phone.",
		Icon:        "badges/verified", Color: "#008080", Category: "trust",
		CriteriaKey: CriteriaFullyVerified, DisplayPriority: 80, PointsValue: 75,
		AutoAward: true, IsActive: true,
	},
}

// Load validates the in-code catalog and binds criteria predicates.
// It fails on duplicate IDs and unknown criteria keys.
func Load() (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(definitions)),
		byID:    make(map[string]*Entry, len(definitions)),
	}
	for _, def := range definitions {
		if _, dup := c.byID[def.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate badge id %q", def.ID)
		}
		pred, err := PredicateFor(def.CriteriaKey)
		if err != nil {
			return nil, fmt.Errorf("catalog: badge %q: %w", def.ID, err)
		}
		c.entries = append(c.entries, Entry{Definition: def, Predicate: pred})
		c.byID[def.ID] = &c.entries[len(c.entries)-1]
	}
	return c, nil
}

// Entries returns catalog entries in display order.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Definitions returns the badge definitions in display order.
func (c *Catalog) Definitions() []models.BadgeDefinition {
	defs := make([]models.BadgeDefinition, len(c.entries))
	for i, e := range c.entries {
		defs[i] = e.Definition
	}
	return defs
}

// Get returns the entry for a badge ID, or nil when unknown.
func (c *Catalog) Get(id string) *Entry {
	return c.byID[id]
}

// Size returns the number of catalog entries.
func (c *Catalog) Size() int {
	return len(c.entries)
}
