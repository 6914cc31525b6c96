package service

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MinCookingTime      = 1
	MinIngredientAmount = 1
	MaxRecipeNameLength = 256
)

func validateRecipeInput(in RecipeInput) error {
	if err := validateName(in.Name); err != nil {
		return err
	}
	if err := validateText(in.Text); err != nil {
		return err
	}
	if strings.TrimSpace(in.Image) == "" {
		return withDetail(ErrInvalidValue, "image", "this field is required")
	}
	if err := validateCookingTime(in.CookingTime); err != nil {
		return err
	}
	if err := validateTagIDs(in.TagIDs); err != nil {
		return err
	}
	return validateIngredientLines(in.Ingredients)
}

func validateRecipePatch(p RecipePatch) error {
	if p.Name != nil {
		if err := validateName(*p.Name); err != nil {
			return err
		}
	}
	if p.Text != nil {
		if err := validateText(*p.Text); err != nil {
			return err
		}
	}
	if p.Image != nil && strings.TrimSpace(*p.Image) == "" {
		return withDetail(ErrInvalidValue, "image", "this field may not be blank")
	}
	if p.CookingTime != nil {
		if err := validateCookingTime(*p.CookingTime); err != nil {
			return err
		}
	}
	if p.TagIDs != nil {
		if err := validateTagIDs(p.TagIDs); err != nil {
			return err
		}
	}
	if p.Ingredients != nil {
		return validateIngredientLines(p.Ingredients)
	}
	return nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return withDetail(ErrInvalidValue, "name", "this field is required")
	}
	if utf8.RuneCountInString(name) > MaxRecipeNameLength {
		return withDetail(ErrInvalidValue, "name", fmt.Sprintf("must be at most %d characters", MaxRecipeNameLength))
	}
	return nil
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return withDetail(ErrInvalidValue, "text", "this field is required")
	}
	return nil
}

func validateCookingTime(minutes int) error {
	if minutes < MinCookingTime {
		return withDetail(ErrInvalidValue, "cooking_time", fmt.Sprintf("must be at least %d", MinCookingTime))
	}
	return nil
}

func validateTagIDs(ids []uint) error {
	if len(ids) == 0 {
		return withDetail(ErrEmptyOrDuplicate, "tags", "at least one tag is required")
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return withDetail(ErrEmptyOrDuplicate, "tags", "tags must not repeat")
		}
		seen[id] = struct{}{}
	}
	return nil
}

func validateIngredientLines(lines []IngredientLine) error {
	if len(lines) == 0 {
		return withDetail(ErrEmptyOrDuplicate, "ingredients", "at least one ingredient is required")
	}
	seen := make(map[uint]struct{}, len(lines))
	for _, line := range lines {
		if line.Amount < MinIngredientAmount {
			return withDetail(ErrInvalidValue, "ingredients", fmt.Sprintf("amount must be at least %d", MinIngredientAmount))
		}
		if _, dup := seen[line.IngredientID]; dup {
			return withDetail(ErrEmptyOrDuplicate, "ingredients", "ingredients must not repeat")
		}
		seen[line.IngredientID] = struct{}{}
	}
	return nil
}
