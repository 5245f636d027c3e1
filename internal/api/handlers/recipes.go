package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/plateful/recipebox/internal/api/dto"
	"github.com/plateful/recipebox/internal/api/middleware"
	"github.com/plateful/recipebox/internal/database/models"
	"github.com/plateful/recipebox/internal/recipes"
)

// maxImageBytes caps a single image upload.
const maxImageBytes = 10 << 20

type RecipeHandler struct {
	service *recipes.Service
}

func NewRecipeHandler(service *recipes.Service) *RecipeHandler {
	return &RecipeHandler{service: service}
}

func (h *RecipeHandler) toResponse(recipe *models.Recipe) dto.RecipeResponse {
	resp := dto.RecipeResponse{
		ID:          recipe.ID,
		Title:       recipe.Title,
		Description: recipe.Description,
		TimeMinutes: recipe.TimeMinutes,
		Price:       recipe.Price,
		Link:        recipe.Link,
		Image:       h.service.ImageURL(recipe),
		Tags:        make([]dto.TagResponse, len(recipe.Tags)),
		Ingredients: make([]dto.IngredientResponse, len(recipe.Ingredients)),
		CreatedAt:   recipe.CreatedAt.Format(time.RFC3339),
	}
	for i, tag := range recipe.Tags {
		resp.Tags[i] = dto.TagResponse{ID: tag.ID, Name: tag.Name}
	}
	for i, ingredient := range recipe.Ingredients {
		resp.Ingredients[i] = dto.IngredientResponse{ID: ingredient.ID, Name: ingredient.Name}
	}
	return resp
}

// List handles GET /api/v1/recipes
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pagination := dto.PaginationParams{Page: page, PerPage: perPage}
	pagination.Normalize()

	tagIDs, ok := parseIDList(r.URL.Query().Get("tags"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid tags filter"})
		return
	}
	ingredientIDs, ok := parseIDList(r.URL.Query().Get("ingredients"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid ingredients filter"})
		return
	}

	list, total, err := h.service.List(r.Context(), userID, recipes.ListFilter{
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
		Offset:        pagination.Offset(),
		Limit:         pagination.PerPage,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list recipes"})
		return
	}

	response := make([]dto.RecipeResponse, len(list))
	for i := range list {
		response[i] = h.toResponse(&list[i])
	}

	totalPages := int(total) / pagination.PerPage
	if int(total)%pagination.PerPage > 0 {
		totalPages++
	}

	writeJSON(w, http.StatusOK, dto.PaginatedResponse{
		Data:       response,
		Total:      total,
		Page:       pagination.Page,
		PerPage:    pagination.PerPage,
		TotalPages: totalPages,
	})
}

// Get handles GET /api/v1/recipes/{id}
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	recipe, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		writeRecipeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(recipe))
}

// Create handles POST /api/v1/recipes
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req dto.CreateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	recipe, err := h.service.Create(r.Context(), userID, recipes.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		TimeMinutes: req.TimeMinutes,
		Price:       req.Price,
		Link:        req.Link,
		Tags:        toNameInputs(req.Tags),
		Ingredients: toNameInputs(req.Ingredients),
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create recipe"})
		return
	}

	writeJSON(w, http.StatusCreated, h.toResponse(recipe))
}

// Update handles PATCH and PUT /api/v1/recipes/{id}
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	input := recipes.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		TimeMinutes: req.TimeMinutes,
		Price:       req.Price,
		Link:        req.Link,
	}
	if req.Tags != nil {
		tags := toNameInputs(*req.Tags)
		input.Tags = &tags
	}
	if req.Ingredients != nil {
		ingredients := toNameInputs(*req.Ingredients)
		input.Ingredients = &ingredients
	}

	recipe, err := h.service.Update(r.Context(), userID, id, input)
	if err != nil {
		writeRecipeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(recipe))
}

// Delete handles DELETE /api/v1/recipes/{id}
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeRecipeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles POST /api/v1/recipes/{id}/image
func (h *RecipeHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	// Reject oversize bodies outright rather than truncating them into
	// images that still carry a valid header.
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Details: map[string]string{"image": "Image must be smaller than 10MB"},
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid multipart form"})
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Details: map[string]string{"image": "Image file is required"},
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Failed to read upload"})
		return
	}

	recipe, err := h.service.AttachImage(r.Context(), userID, id, data)
	if err != nil {
		if errors.Is(err, recipes.ErrInvalidImage) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Details: map[string]string{"image": "Upload a valid image"},
			})
			return
		}
		writeRecipeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(recipe))
}

func writeRecipeError(w http.ResponseWriter, err error) {
	if errors.Is(err, recipes.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Recipe not found"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Recipe operation failed"})
}

func toNameInputs(refs []dto.NameRef) []recipes.NameInput {
	inputs := make([]recipes.NameInput, len(refs))
	for i, ref := range refs {
		inputs[i] = recipes.NameInput{Name: ref.Name}
	}
	return inputs
}

// parseID extracts the numeric {id} route parameter, writing a 400 on
// malformed input.
func parseID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

// parseIDList parses a comma-separated numeric id list ("1,2,3").
// An empty value yields an empty list.
func parseIDList(raw string) ([]uint, bool) {
	if raw == "" {
		return nil, true
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, false
		}
		ids = append(ids, uint(id))
	}
	return ids, true
}
