package models

// Tag is an owner-scoped recipe label. The composite unique index on
// (user_id, name) backs the atomic get-or-create used when reconciling
// nested recipe payloads.
type Tag struct {
	Base
	UserID uint   `gorm:"not null;uniqueIndex:idx_tags_user_name" json:"-"`
	Name   string `gorm:"size:255;not null;uniqueIndex:idx_tags_user_name" json:"name"`

	// Relationships
	User    *User    `gorm:"foreignKey:UserID" json:"-"`
	Recipes []Recipe `gorm:"many2many:recipe_tags;" json:"-"`
}

func (Tag) TableName() string {
	return "tags"
}
