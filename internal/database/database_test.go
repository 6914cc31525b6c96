package database_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestNewSQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	}
	db, err := database.New(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, "", zap.NewNop()))
	assert.NoError(t, database.HealthCheck(context.Background(), db))
	assert.True(t, db.Migrator().HasTable("recipe_selections"))
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := database.New(&config.Config{DBDriver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "foodgram.db?_foreign_keys=on", database.SQLiteDSN("foodgram.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", database.SQLiteDSN("file:x?mode=memory"))
	assert.Equal(t, "a.db?_foreign_keys=off", database.SQLiteDSN("a.db?_foreign_keys=off"))
}

func TestConstraintErrors(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	user := testhelpers.CreateUser(t, db, "alice")

	t.Run("unique", func(t *testing.T) {
		err := db.Create(&models.User{Email: user.Email, Username: "other", PasswordHash: "x"}).Error
		require.Error(t, err)
		assert.True(t, database.IsUniqueViolation(err))
		assert.False(t, database.IsForeignKeyViolation(err))
	})

	t.Run("foreign key", func(t *testing.T) {
		err := db.Omit("Follower", "Followee").Create(&models.Follow{FollowerID: user.ID, FolloweeID: 9999}).Error
		require.Error(t, err)
		assert.True(t, database.IsForeignKeyViolation(err))
	})

	t.Run("check", func(t *testing.T) {
		err := db.Omit("Follower", "Followee").Create(&models.Follow{FollowerID: user.ID, FolloweeID: user.ID}).Error
		require.Error(t, err)
		assert.True(t, database.IsCheckViolation(err))
	})

	t.Run("duplicate selection", func(t *testing.T) {
		tag := testhelpers.CreateTag(t, db, "dinner")
		recipe := models.Recipe{AuthorID: user.ID, Name: "Rice", Image: "x", Text: "Boil", CookingTime: 10}
		require.NoError(t, db.Omit("Author", "Tags", "Ingredients").Create(&recipe).Error)
		require.NoError(t, db.Create(&models.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}).Error)

		entry := func() *models.Selection {
			return &models.Selection{Kind: models.SelectionFavorite, UserID: user.ID, RecipeID: recipe.ID}
		}
		require.NoError(t, db.Omit("User", "Recipe").Create(entry()).Error)
		err := db.Omit("User", "Recipe").Create(entry()).Error
		assert.True(t, database.IsUniqueViolation(err))

		cart := entry()
		cart.Kind = models.SelectionShoppingCart
		assert.NoError(t, db.Omit("User", "Recipe").Create(cart).Error)
	})
}

func TestPostgresErrorCodes(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("insert: %w", &pgconn.PgError{Code: code})
	}
	assert.True(t, database.IsUniqueViolation(wrap("23505")))
	assert.True(t, database.IsForeignKeyViolation(wrap("23503")))
	assert.True(t, database.IsCheckViolation(wrap("23514")))
	assert.False(t, database.IsUniqueViolation(wrap("23503")))

	assert.True(t, database.IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, database.IsUniqueViolation(nil))
	assert.False(t, database.IsCheckViolation(errors.New("connection refused")))
}
