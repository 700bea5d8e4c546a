package models

import "strings"

// UserProfile is the read-only profile handed to the personalization provider.
type UserProfile struct {
	Name          string   `json:"name"`
	Gender        string   `json:"gender"`
	AgeGroup      string   `json:"ageGroup"`
	Region        string   `json:"region"`
	PrefCategory  string   `json:"prefCategory"`
	FavCategories []string `json:"favCategories,omitempty"`
}

// SplitFavCategories derives the favorite-category set from the
// comma-delimited column the profile table stores. Empty or missing input
// yields no favorites.
func SplitFavCategories(stored string) []string {
	if strings.TrimSpace(stored) == "" {
		return nil
	}
	parts := strings.Split(stored, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
