package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	stderrors "chatfood-service/internal/common/errors"
	"chatfood-service/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db, logger.NewZapAdapter(zaptest.NewLogger(t))), mock
}

func profileColumns() []string {
	return []string{"name", "gender", "age_group", "region", "pref_category", "fav_categories"}
}

// ==========================
// Repository Tests
// ==========================

func TestRepository_FindByEmail_ReturnsProfile(t *testing.T) {
	repo, mock := newTestRepository(t)

	rows := sqlmock.NewRows(profileColumns()).
		AddRow("Kim Minji", "female", "20s", "Seoul", "Korean", "stew, rice ,noodles")
	mock.ExpectQuery(`SELECT name, gender, age_group, region, pref_category, fav_categories FROM users WHERE email = \$1`).
		WithArgs("minji@example.com").
		WillReturnRows(rows)

	p, err := repo.FindByEmail(context.Background(), "minji@example.com")
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, "Kim Minji", p.Name)
	assert.Equal(t, "20s", p.AgeGroup)
	assert.Equal(t, "Seoul", p.Region)
	assert.Equal(t, "Korean", p.PrefCategory)
	assert.Equal(t, []string{"stew", "rice", "noodles"}, p.FavCategories)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByEmail_UnknownUserIsNil(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(`SELECT name, gender, age_group, region, pref_category, fav_categories FROM users WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(profileColumns()))

	p, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestRepository_FindByEmail_NullFavCategories(t *testing.T) {
	repo, mock := newTestRepository(t)

	rows := sqlmock.NewRows(profileColumns()).
		AddRow("Lee Joon", "male", "30s", "Busan", "Korean", nil)
	mock.ExpectQuery(`SELECT name, gender, age_group, region, pref_category, fav_categories FROM users WHERE email = \$1`).
		WithArgs("joon@example.com").
		WillReturnRows(rows)

	p, err := repo.FindByEmail(context.Background(), "joon@example.com")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Empty(t, p.FavCategories)
}

func TestRepository_FindByEmail_QueryErrorIsLookupFailure(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(`SELECT name, gender, age_group, region, pref_category, fav_categories FROM users WHERE email = \$1`).
		WithArgs("minji@example.com").
		WillReturnError(errors.New("connection refused"))

	p, err := repo.FindByEmail(context.Background(), "minji@example.com")
	assert.Nil(t, p)
	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeProfileLookupFailed, stdErr.Code)
}

func TestRepository_FindByEmail_EmptyEmailSkipsQuery(t *testing.T) {
	repo, _ := newTestRepository(t)

	p, err := repo.FindByEmail(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, p)
}

// ==========================
// Summary Tests
// ==========================

func TestSummary(t *testing.T) {
	repo, mock := newTestRepository(t)

	rows := sqlmock.NewRows(profileColumns()).
		AddRow("Kim Minji", "female", "20s", "Seoul", "Korean", "stew,rice")
	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("minji@example.com").
		WillReturnRows(rows)

	p, err := repo.FindByEmail(context.Background(), "minji@example.com")
	require.NoError(t, err)

	assert.Equal(t,
		"Name: Kim Minji, Age group: 20s, Gender: female, Region: Seoul, Preferred category: Korean, Favorite categories: stew/rice",
		Summary(p))
	assert.Equal(t, "unregistered user", Summary(nil))
}
