package catalog

import (
	"fmt"
	"strings"

	"merithub/internal/models"
)

// CountThresholds are the fixed, ascending badge-count milestones.
var CountThresholds = []int{1, 5, 10, 25, 50}

// specialBadgeNames are the badge names that double as named milestones.
var specialBadgeNames = []string{"First Sale", "First Listing", "5-Star Seller", "Veteran"}

// Milestones returns every milestone definition in a stable order:
// count milestones ascending, then specials in catalog order. IDs are
// deterministic so acknowledgment rows stay meaningful across calls.
func Milestones() []models.Milestone {
	out := make([]models.Milestone, 0, len(CountThresholds)+len(specialBadgeNames))
	for _, threshold := range CountThresholds {
		name := fmt.Sprintf("%d Badges", threshold)
		message := fmt.Sprintf("You have collected %d badges!", threshold)
		if threshold == 1 {
			name = "First Badge"
			message = "You earned your first badge!"
		}
		out = append(out, models.Milestone{
			ID:        CountMilestoneID(threshold),
			Kind:      models.MilestoneKindCount,
			Name:      name,
			Message:   message,
			Icon:      fmt.Sprintf("milestones/count_%d", threshold),
			Threshold: threshold,
		})
	}
	for _, name := range specialBadgeNames {
		out = append(out, models.Milestone{
			ID:        SpecialMilestoneID(name),
			Kind:      models.MilestoneKindSpecial,
			Name:      name,
			Message:   fmt.Sprintf("You earned the %s badge!", name),
			Icon:      "milestones/" + Slug(name),
			BadgeName: name,
		})
	}
	return out
}

// IsKnownMilestoneID reports whether id names a derivable milestone.
func IsKnownMilestoneID(id string) bool {
	for _, m := range Milestones() {
		if m.ID == id {
			return true
		}
	}
	return false
}

// CountMilestoneID builds the deterministic id for a count milestone.
func CountMilestoneID(threshold int) string {
	return fmt.Sprintf("count_%d", threshold)
}

// SpecialMilestoneID builds the deterministic id for a named milestone.
func SpecialMilestoneID(badgeName string) string {
	return "special_" + Slug(badgeName)
}

// Slug lowercases a badge name and collapses every non-alphanumeric run
// to a single underscore: "5-Star Seller" -> "5_star_seller".
func Slug(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
