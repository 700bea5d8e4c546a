package recommend

import "chatfood-service/internal/models"

type recommendResponse struct {
	Status          string                  `json:"status"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

// DefaultRecommendations is the static fallback served whenever the
// personalization provider cannot produce a usable list.
func DefaultRecommendations() []models.Recommendation {
	return []models.Recommendation{
		{FoodName: "Kimchi Jjigae", PriceMin: 8000, PriceMax: 10000},
		{FoodName: "Bibimbap", PriceMin: 9000, PriceMax: 11000},
		{FoodName: "Jeyuk Bokkeum", PriceMin: 10000, PriceMax: 12000},
	}
}
