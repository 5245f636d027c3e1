package models

// Ingredient shares the (user_id, name) dedup key pattern with Tag.
type Ingredient struct {
	Base
	UserID uint   `gorm:"not null;uniqueIndex:idx_ingredients_user_name" json:"-"`
	Name   string `gorm:"size:255;not null;uniqueIndex:idx_ingredients_user_name" json:"name"`

	// Relationships
	User    *User    `gorm:"foreignKey:UserID" json:"-"`
	Recipes []Recipe `gorm:"many2many:recipe_ingredients;" json:"-"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}
