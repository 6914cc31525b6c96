// Package fixtures reads catalog seed files.
package fixtures

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pageza/foodgram/backend/internal/models"
)

type ingredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type tagRecord struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

type tagFile struct {
	Tags []tagRecord `yaml:"tags"`
}

// ReadIngredients parses a JSON array of {"name", "measurement_unit"} objects.
// Duplicate names keep the first occurrence.
func ReadIngredients(r io.Reader) ([]models.Ingredient, error) {
	var records []ingredientRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}

	seen := make(map[string]struct{}, len(records))
	ingredients := make([]models.Ingredient, 0, len(records))
	for i, rec := range records {
		name := strings.TrimSpace(rec.Name)
		unit := strings.TrimSpace(rec.MeasurementUnit)
		if name == "" || unit == "" {
			return nil, fmt.Errorf("ingredient %d: name and measurement_unit are required", i)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		ingredients = append(ingredients, models.Ingredient{Name: name, MeasurementUnit: unit})
	}
	return ingredients, nil
}

// ReadTags parses a YAML document with a top-level "tags" list.
func ReadTags(r io.Reader) ([]models.Tag, error) {
	var file tagFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}

	tags := make([]models.Tag, 0, len(file.Tags))
	for i, rec := range file.Tags {
		name := strings.TrimSpace(rec.Name)
		slug := strings.TrimSpace(rec.Slug)
		if name == "" || slug == "" {
			return nil, fmt.Errorf("tag %d: name and slug are required", i)
		}
		tags = append(tags, models.Tag{Name: name, Slug: slug})
	}
	return tags, nil
}
