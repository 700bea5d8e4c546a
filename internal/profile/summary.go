package profile

import (
	"fmt"
	"strings"

	"chatfood-service/internal/models"
)

// Summary renders the profile line fed into the generative system prompt.
func Summary(p *models.UserProfile) string {
	if p == nil {
		return "unregistered user"
	}
	summary := fmt.Sprintf("Name: %s, Age group: %s, Gender: %s, Region: %s, Preferred category: %s",
		p.Name, p.AgeGroup, p.Gender, p.Region, p.PrefCategory)
	if len(p.FavCategories) > 0 {
		summary += ", Favorite categories: " + strings.Join(p.FavCategories, "/")
	}
	return summary
}
