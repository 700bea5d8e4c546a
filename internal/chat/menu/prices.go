// internal/chat/menu/prices.go
package menu

import (
	"math/rand"

	"chatfood-service/internal/models"
)

// priceTiers are placeholder won amounts, not a real price lookup. The
// displayed range is [tier, tier+2000].
var priceTiers = []int{8000, 10000, 12000, 15000}

const priceSpread = 2000

// ToRecommendations attaches a synthetic price range to each extracted dish
// name, with the tier chosen uniformly at random.
func ToRecommendations(names []string) []models.Recommendation {
	recs := make([]models.Recommendation, 0, len(names))
	for _, name := range names {
		tier := priceTiers[rand.Intn(len(priceTiers))]
		recs = append(recs, models.Recommendation{
			FoodName: name,
			PriceMin: tier,
			PriceMax: tier + priceSpread,
		})
	}
	return recs
}
