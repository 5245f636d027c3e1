package models

import "github.com/shopspring/decimal"

type Recipe struct {
	Base
	UserID uint `gorm:"index;not null" json:"user_id"`

	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"size:255" json:"description,omitempty"`
	TimeMinutes int             `gorm:"not null" json:"time_minutes"`
	Price       decimal.Decimal `gorm:"type:decimal(5,2)" json:"price"`
	Link        string          `gorm:"size:255" json:"link,omitempty"`

	// Filename of the uploaded image, empty until one is attached.
	Image string `gorm:"size:255" json:"-"`

	// Relationships
	User        *User        `gorm:"foreignKey:UserID" json:"-"`
	Tags        []Tag        `gorm:"many2many:recipe_tags;" json:"tags,omitempty"`
	Ingredients []Ingredient `gorm:"many2many:recipe_ingredients;" json:"ingredients,omitempty"`
}

func (Recipe) TableName() string {
	return "recipes"
}
