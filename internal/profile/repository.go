// internal/profile/repository.go
package profile

import (
	"context"
	"database/sql"

	stderrors "chatfood-service/internal/common/errors"
	"chatfood-service/internal/common/logger"
	"chatfood-service/internal/models"
)

// Source resolves a user identity to a profile. A nil profile with a nil
// error means the user is unknown.
type Source interface {
	FindByEmail(ctx context.Context, email string) (*models.UserProfile, error)
}

const findByEmailQuery = `SELECT name, gender, age_group, region, pref_category, fav_categories FROM users WHERE email = $1`

// Repository reads profiles from Postgres.
type Repository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRepository(db *sql.DB, log logger.Logger) *Repository {
	return &Repository{
		db: db,
		logger: log.With(map[string]interface{}{
			"component": "profile",
		}),
	}
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	if email == "" {
		return nil, nil
	}

	var (
		p             models.UserProfile
		favCategories sql.NullString
	)
	err := r.db.QueryRowContext(ctx, findByEmailQuery, email).
		Scan(&p.Name, &p.Gender, &p.AgeGroup, &p.Region, &p.PrefCategory, &favCategories)
	if err == sql.ErrNoRows {
		r.logger.Info("no profile for user", map[string]interface{}{
			"email": email,
		})
		return nil, nil
	}
	if err != nil {
		return nil, stderrors.NewProfileLookupFailedError(err)
	}

	if favCategories.Valid {
		p.FavCategories = models.SplitFavCategories(favCategories.String)
	}
	return &p, nil
}
