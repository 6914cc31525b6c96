package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pageza/foodgram/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ShoppingItem is one aggregated row of the shopping list.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	TotalAmount     float64
}

// ShoppingListService aggregates the ingredients of every recipe in a user's
// shopping cart.
type ShoppingListService struct {
	db     *gorm.DB
	now    func() time.Time
	logger *zap.Logger
}

func NewShoppingListService(db *gorm.DB, logger *zap.Logger) *ShoppingListService {
	return &ShoppingListService{db: db, now: time.Now, logger: logger}
}

// Aggregate sums line amounts per (ingredient name, unit) across the cart,
// ordered by name and then unit.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uint) ([]ShoppingItem, error) {
	var rows []struct {
		Name            string
		MeasurementUnit string
		TotalAmount     float64
	}
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total_amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN recipe_selections ON recipe_selections.recipe_id = recipe_ingredients.recipe_id").
		Where("recipe_selections.kind = ? AND recipe_selections.user_id = ?", models.SelectionShoppingCart, userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate shopping list: %w", err)
	}

	items := make([]ShoppingItem, len(rows))
	for i, r := range rows {
		items[i] = ShoppingItem(r)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].MeasurementUnit < items[j].MeasurementUnit
	})
	return items, nil
}

// Export aggregates the cart and renders it for download.
func (s *ShoppingListService) Export(ctx context.Context, user *models.User) (string, error) {
	items, err := s.Aggregate(ctx, user.ID)
	if err != nil {
		return "", err
	}
	s.logger.Info("shopping list exported", zap.Uint("user_id", user.ID), zap.Int("items", len(items)))
	return RenderShoppingList(items, user, s.now()), nil
}

const (
	listWidth       = 50
	listTitleWidth  = 62
	listItemColumn  = 45
	listQtyHeading  = 40
	listNameLimit   = 30
	listNameKeep    = 28
	listTimeLayout  = "02.01.2006 15:04"
	listTitle       = "🛒 SHOPPING LIST 🛒"
	listEndTitle    = "HAPPY SHOPPING!"
	listItemHeading = "   Item "
)

// RenderShoppingList formats the aggregated list as a plain-text document.
// The output depends only on its arguments.
func RenderShoppingList(items []ShoppingItem, user *models.User, generatedAt time.Time) string {
	border := strings.Repeat("═", listWidth)
	rule := " " + strings.Repeat("─", listWidth)

	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line("╔" + border + "╗")
	line(center(listTitle, listTitleWidth))
	line("╚" + border + "╝")
	line("")
	line("👤 User: " + user.DisplayName())
	line("📅 Created: " + generatedAt.Format(listTimeLayout))
	line("🥬 Total ingredients: " + strconv.Itoa(len(items)))
	line("")
	line(listItemHeading + padLeft("Qty", listQtyHeading))
	line(rule)

	for _, item := range items {
		label := "☐ " + truncateName(item.Name) + " (" + item.MeasurementUnit + ")"
		line(padRight(label, listItemColumn) + formatQuantity(item.TotalAmount))
	}

	line(rule)
	line("Tick ☑ the items you have already bought")
	line("")
	line("")
	line("╔" + border + "╗")
	line(center(listEndTitle, listTitleWidth))
	line("╚" + border + "╝")
	line("")
	line(center("Foodgram", listTitleWidth))
	b.WriteString(center("Your guide to the world of recipes", listTitleWidth))

	return b.String()
}

func truncateName(name string) string {
	if utf8.RuneCountInString(name) <= listNameLimit {
		return name
	}
	return string([]rune(name)[:listNameKeep]) + "..."
}

func formatQuantity(amount float64) string {
	if amount == math.Trunc(amount) {
		return strconv.FormatFloat(amount, 'f', 0, 64)
	}
	return strconv.FormatFloat(amount, 'f', 1, 64)
}

func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func padLeft(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}
