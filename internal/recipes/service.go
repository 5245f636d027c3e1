// Package recipes implements recipe persistence: owner-scoped queries,
// reconciliation of nested tag/ingredient collections, and image
// attachment.
package recipes

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/plateful/recipebox/internal/database/models"
	"github.com/plateful/recipebox/internal/media"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound covers both "does not exist" and "exists but owned by
	// someone else" so ownership is never revealed.
	ErrNotFound     = errors.New("recipe not found")
	ErrInvalidImage = errors.New("uploaded data is not a supported image")
)

type Service struct {
	db     *gorm.DB
	store  media.Store
	logger *slog.Logger
}

func NewService(db *gorm.DB, store media.Store, logger *slog.Logger) *Service {
	return &Service{db: db, store: store, logger: logger}
}

// NameInput is a nested tag or ingredient reference inside a recipe
// payload.
type NameInput struct {
	Name string `json:"name"`
}

type CreateInput struct {
	Title       string
	Description string
	TimeMinutes int
	Price       decimal.Decimal
	Link        string
	Tags        []NameInput
	Ingredients []NameInput
}

// UpdateInput carries a partial patch. Nil scalar fields are left
// untouched. Tags/Ingredients distinguish "key absent" (nil, keep
// existing associations) from "key present" (replace associations,
// even when the list is empty).
type UpdateInput struct {
	Title       *string
	Description *string
	TimeMinutes *int
	Price       *decimal.Decimal
	Link        *string
	Tags        *[]NameInput
	Ingredients *[]NameInput
}

// ListFilter restricts List results. Non-empty TagIDs/IngredientIDs
// each filter with OR across their ids; the two compose with AND.
type ListFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
	Offset        int
	Limit         int
}

func (s *Service) List(ctx context.Context, userID uint, filter ListFilter) ([]models.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("user_id = ?", userID)

	// Subqueries against the join tables keep the result set free of
	// duplicates when a recipe matches several filter ids.
	if len(filter.TagIDs) > 0 {
		query = query.Where("id IN (?)",
			s.db.Table("recipe_tags").Select("recipe_id").Where("tag_id IN ?", filter.TagIDs))
	}
	if len(filter.IngredientIDs) > 0 {
		query = query.Where("id IN (?)",
			s.db.Table("recipe_ingredients").Select("recipe_id").Where("ingredient_id IN ?", filter.IngredientIDs))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}

	var list []models.Recipe
	if err := query.
		Preload("Tags").
		Preload("Ingredients").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *Service) Get(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Tags").
		Preload("Ingredients").
		Where("id = ? AND user_id = ?", id, userID).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (s *Service) Create(ctx context.Context, userID uint, input CreateInput) (*models.Recipe, error) {
	recipe := models.Recipe{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		TimeMinutes: input.TimeMinutes,
		Price:       input.Price,
		Link:        input.Link,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := s.reconcileTags(tx, &recipe, userID, input.Tags); err != nil {
			return err
		}
		return s.reconcileIngredients(tx, &recipe, userID, input.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, recipe.ID)
}

func (s *Service) Update(ctx context.Context, userID, id uint, input UpdateInput) (*models.Recipe, error) {
	recipe, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.TimeMinutes != nil {
		updates["time_minutes"] = *input.TimeMinutes
	}
	if input.Price != nil {
		updates["price"] = *input.Price
	}
	if input.Link != nil {
		updates["link"] = *input.Link
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(recipe).Updates(updates).Error; err != nil {
				return err
			}
		}
		if input.Tags != nil {
			if err := s.reconcileTags(tx, recipe, userID, *input.Tags); err != nil {
				return err
			}
		}
		if input.Ingredients != nil {
			if err := s.reconcileIngredients(tx, recipe, userID, *input.Ingredients); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID, id)
}

func (s *Service) Delete(ctx context.Context, userID, id uint) error {
	recipe, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Ingredients").Clear(); err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		return err
	}

	if recipe.Image != "" {
		if err := s.store.Remove(ctx, recipe.Image); err != nil {
			s.logger.Warn("failed to remove recipe image", "image", recipe.Image, "error", err)
		}
	}
	return nil
}

// AttachImage validates data as a raster image, stores it, and records
// the reference on the recipe. A previously attached image is removed
// after the new reference is persisted; invalid data leaves the recipe
// untouched.
func (s *Service) AttachImage(ctx context.Context, userID, id uint, data []byte) (*models.Recipe, error) {
	recipe, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	format, ok := DetectImageFormat(data)
	if !ok {
		return nil, ErrInvalidImage
	}

	name := uuid.New().String() + "." + imageExtension(format)
	if err := s.store.Save(ctx, name, data); err != nil {
		return nil, err
	}

	previous := recipe.Image
	if err := s.db.WithContext(ctx).Model(recipe).Update("image", name).Error; err != nil {
		// Keep storage consistent with the unchanged DB reference.
		if rmErr := s.store.Remove(ctx, name); rmErr != nil {
			s.logger.Warn("failed to remove orphaned image", "image", name, "error", rmErr)
		}
		return nil, err
	}
	recipe.Image = name

	if previous != "" {
		if err := s.store.Remove(ctx, previous); err != nil {
			s.logger.Warn("failed to remove replaced image", "image", previous, "error", err)
		}
	}
	return recipe, nil
}

// ImageURL resolves the stored image reference to a client-facing URL,
// or "" when no image is attached.
func (s *Service) ImageURL(recipe *models.Recipe) string {
	if recipe.Image == "" {
		return ""
	}
	return s.store.URL(recipe.Image)
}

func (s *Service) reconcileTags(tx *gorm.DB, recipe *models.Recipe, userID uint, inputs []NameInput) error {
	tags := make([]models.Tag, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if seen[in.Name] {
			continue
		}
		seen[in.Name] = true

		tag := models.Tag{UserID: userID, Name: in.Name}
		if err := getOrCreate(tx, &tag, "user_id = ? AND name = ?", userID, in.Name); err != nil {
			return err
		}
		tags = append(tags, tag)
	}
	return tx.Model(recipe).Association("Tags").Replace(&tags)
}

func (s *Service) reconcileIngredients(tx *gorm.DB, recipe *models.Recipe, userID uint, inputs []NameInput) error {
	ingredients := make([]models.Ingredient, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if seen[in.Name] {
			continue
		}
		seen[in.Name] = true

		ingredient := models.Ingredient{UserID: userID, Name: in.Name}
		if err := getOrCreate(tx, &ingredient, "user_id = ? AND name = ?", userID, in.Name); err != nil {
			return err
		}
		ingredients = append(ingredients, ingredient)
	}
	return tx.Model(recipe).Association("Ingredients").Replace(&ingredients)
}

// getOrCreate is an atomic lookup-or-insert against the (user_id, name)
// unique index: the insert is attempted with ON CONFLICT DO NOTHING and
// the surviving row is fetched afterwards, so two concurrent requests
// can never produce duplicate rows.
func getOrCreate(tx *gorm.DB, dest interface{}, query string, args ...interface{}) error {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(dest)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tx.Where(query, args...).First(dest).Error
	}
	return nil
}
