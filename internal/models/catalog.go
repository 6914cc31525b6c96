package models

// Ingredient is a catalog entry. Names are unique.
type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:128;not null;uniqueIndex" json:"name"`
	MeasurementUnit string `gorm:"size:20;not null" json:"measurement_unit"`
}

// Tag is a recipe label with a unique name and slug.
type Tag struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"size:32;not null;uniqueIndex" json:"name"`
	Slug string `gorm:"size:32;not null;uniqueIndex" json:"slug"`
}
