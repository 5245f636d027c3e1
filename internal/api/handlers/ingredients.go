package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/plateful/recipebox/internal/api/dto"
	"github.com/plateful/recipebox/internal/api/middleware"
	"github.com/plateful/recipebox/internal/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IngredientHandler struct {
	db *gorm.DB
}

func NewIngredientHandler(db *gorm.DB) *IngredientHandler {
	return &IngredientHandler{db: db}
}

// List handles GET /api/v1/ingredients
func (h *IngredientHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	query := h.db.Model(&models.Ingredient{}).Where("user_id = ?", userID)

	if r.URL.Query().Get("assigned_only") == "true" {
		query = query.Where("id IN (?)", h.db.Table("recipe_ingredients").Select("ingredient_id"))
	}

	var ingredients []models.Ingredient
	if err := query.Order("name DESC").Find(&ingredients).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list ingredients"})
		return
	}

	response := make([]dto.IngredientResponse, len(ingredients))
	for i, ingredient := range ingredients {
		response[i] = dto.IngredientResponse{ID: ingredient.ID, Name: ingredient.Name}
	}
	writeJSON(w, http.StatusOK, response)
}

// Create handles POST /api/v1/ingredients
func (h *IngredientHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req dto.NameRef
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	ingredient := models.Ingredient{UserID: userID, Name: req.Name}
	res := h.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ingredient)
	if res.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create ingredient"})
		return
	}
	if res.RowsAffected == 0 {
		if err := h.db.Where("user_id = ? AND name = ?", userID, req.Name).First(&ingredient).Error; err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create ingredient"})
			return
		}
	}

	writeJSON(w, http.StatusCreated, dto.IngredientResponse{ID: ingredient.ID, Name: ingredient.Name})
}

// Update handles PATCH /api/v1/ingredients/{id}
func (h *IngredientHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req dto.NameRef
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	var ingredient models.Ingredient
	if err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&ingredient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Ingredient not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update ingredient"})
		return
	}

	if err := h.db.Model(&ingredient).Update("name", req.Name).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Details: map[string]string{"name": "An ingredient with this name already exists"},
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update ingredient"})
		return
	}

	writeJSON(w, http.StatusOK, dto.IngredientResponse{ID: ingredient.ID, Name: ingredient.Name})
}

// Delete handles DELETE /api/v1/ingredients/{id}
func (h *IngredientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var ingredient models.Ingredient
	if err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&ingredient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Ingredient not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete ingredient"})
		return
	}

	if err := h.db.Model(&ingredient).Association("Recipes").Clear(); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete ingredient"})
		return
	}
	if err := h.db.Delete(&ingredient).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete ingredient"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
