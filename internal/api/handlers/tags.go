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

type TagHandler struct {
	db *gorm.DB
}

func NewTagHandler(db *gorm.DB) *TagHandler {
	return &TagHandler{db: db}
}

// List handles GET /api/v1/tags
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	query := h.db.Model(&models.Tag{}).Where("user_id = ?", userID)

	// assigned_only restricts to tags attached to at least one recipe.
	// The subquery keeps the result duplicate-free however many recipes
	// share a tag.
	if r.URL.Query().Get("assigned_only") == "true" {
		query = query.Where("id IN (?)", h.db.Table("recipe_tags").Select("tag_id"))
	}

	var tags []models.Tag
	if err := query.Order("name DESC").Find(&tags).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list tags"})
		return
	}

	response := make([]dto.TagResponse, len(tags))
	for i, tag := range tags {
		response[i] = dto.TagResponse{ID: tag.ID, Name: tag.Name}
	}
	writeJSON(w, http.StatusOK, response)
}

// Create handles POST /api/v1/tags
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	// Same atomic get-or-create as the nested recipe flow: a name that
	// already exists for this user yields the existing row.
	tag := models.Tag{UserID: userID, Name: req.Name}
	res := h.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag)
	if res.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create tag"})
		return
	}
	if res.RowsAffected == 0 {
		if err := h.db.Where("user_id = ? AND name = ?", userID, req.Name).First(&tag).Error; err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create tag"})
			return
		}
	}

	writeJSON(w, http.StatusCreated, dto.TagResponse{ID: tag.ID, Name: tag.Name})
}

// Update handles PATCH /api/v1/tags/{id}
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var tag models.Tag
	if err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Tag not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update tag"})
		return
	}

	if err := h.db.Model(&tag).Update("name", req.Name).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Details: map[string]string{"name": "A tag with this name already exists"},
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update tag"})
		return
	}

	writeJSON(w, http.StatusOK, dto.TagResponse{ID: tag.ID, Name: tag.Name})
}

// Delete handles DELETE /api/v1/tags/{id}
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var tag models.Tag
	if err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Tag not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete tag"})
		return
	}

	if err := h.db.Model(&tag).Association("Recipes").Clear(); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete tag"})
		return
	}
	if err := h.db.Delete(&tag).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete tag"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
