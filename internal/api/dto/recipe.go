package dto

import "github.com/shopspring/decimal"

// NameRef is a nested tag or ingredient reference inside a recipe
// payload, and the body of the standalone tag/ingredient endpoints.
type NameRef struct {
	Name string `json:"name"`
}

func (r NameRef) Validate() map[string]string {
	errors := make(map[string]string)
	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	return errors
}

type CreateRecipeRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	Link        string          `json:"link,omitempty"`
	Tags        []NameRef       `json:"tags,omitempty"`
	Ingredients []NameRef       `json:"ingredients,omitempty"`
}

func (r CreateRecipeRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Title == "" {
		errors["title"] = "Title is required"
	}
	if r.TimeMinutes <= 0 {
		errors["time_minutes"] = "Time in minutes must be positive"
	}
	if r.Price.IsNegative() {
		errors["price"] = "Price cannot be negative"
	}
	validateNames(errors, "tags", r.Tags)
	validateNames(errors, "ingredients", r.Ingredients)

	return errors
}

// UpdateRecipeRequest carries a partial update. Nil fields are absent
// from the payload and leave the corresponding recipe state untouched;
// a present-but-empty Tags/Ingredients list clears the associations.
// An owner field in the payload is ignored.
type UpdateRecipeRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	TimeMinutes *int             `json:"time_minutes,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Link        *string          `json:"link,omitempty"`
	Tags        *[]NameRef       `json:"tags,omitempty"`
	Ingredients *[]NameRef       `json:"ingredients,omitempty"`
}

func (r UpdateRecipeRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Title != nil && *r.Title == "" {
		errors["title"] = "Title cannot be empty"
	}
	if r.TimeMinutes != nil && *r.TimeMinutes <= 0 {
		errors["time_minutes"] = "Time in minutes must be positive"
	}
	if r.Price != nil && r.Price.IsNegative() {
		errors["price"] = "Price cannot be negative"
	}
	if r.Tags != nil {
		validateNames(errors, "tags", *r.Tags)
	}
	if r.Ingredients != nil {
		validateNames(errors, "ingredients", *r.Ingredients)
	}

	return errors
}

func validateNames(errors map[string]string, field string, refs []NameRef) {
	for _, ref := range refs {
		if ref.Name == "" {
			errors[field] = "Names cannot be empty"
			return
		}
	}
}

type TagResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type IngredientResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type RecipeResponse struct {
	ID          uint                 `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	TimeMinutes int                  `json:"time_minutes"`
	Price       decimal.Decimal      `json:"price"`
	Link        string               `json:"link,omitempty"`
	Image       string               `json:"image,omitempty"`
	Tags        []TagResponse        `json:"tags"`
	Ingredients []IngredientResponse `json:"ingredients"`
	CreatedAt   string               `json:"created_at"`
}
