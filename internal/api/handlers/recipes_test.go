package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/plateful/recipebox/internal/api/dto"
	"github.com/plateful/recipebox/internal/database/models"
	"github.com/plateful/recipebox/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recipePage mirrors dto.PaginatedResponse with a typed Data field.
type recipePage struct {
	Data       []dto.RecipeResponse `json:"data"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	PerPage    int                  `json:"per_page"`
	TotalPages int                  `json:"total_pages"`
}

func TestRecipeList(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		req := testutil.UnauthenticatedRequest(t, "GET", "/api/v1/recipes", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("returns only own recipes, newest first", func(t *testing.T) {
		router, ts := setupTestRouter(t)

		first := testutil.CreateTestRecipe(t, ts.DB, ts.User.ID, "First")
		second := testutil.CreateTestRecipe(t, ts.DB, ts.User.ID, "Second")

		other := testutil.CreateTestUser(t, ts.DB)
		testutil.CreateTestRecipe(t, ts.DB, other.ID, "Foreign")

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/recipes", nil, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var page recipePage
		testutil.ParseJSONResponse(t, rr, &page)
		assert.Equal(t, int64(2), page.Total)
		require.Len(t, page.Data, 2)
		assert.Equal(t, second.ID, page.Data[0].ID)
		assert.Equal(t, first.ID, page.Data[1].ID)
	})

	t.Run("filters by comma-separated tag ids", func(t *testing.T) {
		router, ts := setupTestRouter(t)

		thai := testutil.CreateTestTag(t, ts.DB, ts.User.ID, "Thai")
		asia := testutil.CreateTestTag(t, ts.DB, ts.User.ID, "Asia")

		both := testutil.CreateTestRecipe(t, ts.DB, ts.User.ID, "Both")
		testutil.AttachTags(t, ts.DB, both, thai, asia)

		one := testutil.CreateTestRecipe(t, ts.DB, ts.User.ID, "One")
		testutil.AttachTags(t, ts.DB, one, thai)

		testutil.CreateTestRecipe(t, ts.DB, ts.User.ID, "None")

		path := fmt.Sprintf("/api/v1/recipes?tags=%d,%d", thai.ID, asia.ID)
		req := testutil.AuthenticatedRequest(t, "GET", path, nil, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var page recipePage
		testutil.ParseJSONResponse(t, rr, &page)
		assert.Equal(t, int64(2), page.Total)
		assert.Len(t, page.Data, 2, "a recipe matching both tags appears once")
	})

	t.Run("combines tag and ingredient filters", func(t *testing.T) {
		router, ts := setupTestRouter(t)

		tag := testutil.CreateTestTag(t, ts.DB, ts.User.ID, "Quick")
		ingredient := testutil.CreateTestIngredient(t, ts.DB, ts.User.ID, "Eggs")

		match := testutil.CreateTestRecipe(t, ts.DB, ts.User.ID, "Omelette")
		testutil.AttachTags(t, ts.DB, match, tag)
		testutil.AttachIngredients(t, ts.DB, match, ingredient)

		tagOnly := testutil.CreateTestRecipe(t, ts.DB, ts.User.ID, "Toast")
		testutil.AttachTags(t, ts.DB, tagOnly, tag)

		path := fmt.Sprintf("/api/v1/recipes?tags=%d&ingredients=%d", tag.ID, ingredient.ID)
		req := testutil.AuthenticatedRequest(t, "GET", path, nil, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var page recipePage
		testutil.ParseJSONResponse(t, rr, &page)
		require.Len(t, page.Data, 1)
		assert.Equal(t, match.ID, page.Data[0].ID)
	})

	t.Run("rejects a malformed filter", func(t *testing.T) {
		router, ts := setupTestRouter(t)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/recipes?tags=1,abc", nil, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("paginates", func(t *testing.T) {
		router, ts := setupTestRouter(t)

		for i := 0; i < 3; i++ {
			testutil.CreateTestRecipe(t, ts.DB, ts.User.ID, fmt.Sprintf("Recipe %d", i))
		}

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/recipes?page=2&per_page=2", nil, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var page recipePage
		testutil.ParseJSONResponse(t, rr, &page)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 2, page.TotalPages)
		assert.Len(t, page.Data, 1)
	})
}

func TestRecipeCreate(t *testing.T) {
	t.Run("creates a recipe with nested tags and ingredients", func(t *testing.T) {
		router, ts := setupTestRouter(t)

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/recipes", map[string]interface{}{
			"title":        "Thai green curry",
			"time_minutes": 30,
			"price":        "12.50",
			"tags":         []map[string]string{{"name": "Thai"}, {"name": "Dinner"}},
			"ingredients":  []map[string]string{{"name": "Coconut milk"}},
		}, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp dto.RecipeResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.NotZero(t, resp.ID)
		assert.Equal(t, "Thai green curry", resp.Title)
		assert.Len(t, resp.Tags, 2)
		assert.Len(t, resp.Ingredients, 1)
		assert.Equal(t, "12.5", resp.Price.String())
	})

	t.Run("ignores an owner field in the payload", func(t *testing.T) {
		router, ts := setupTestRouter(t)
		other := testutil.CreateTestUser(t, ts.DB)

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/recipes", map[string]interface{}{
			"title":        "Mine anyway",
			"time_minutes": 10,
			"price":        "1.00",
			"user_id":      other.ID,
		}, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp dto.RecipeResponse
		testutil.ParseJSONResponse(t, rr, &resp)

		var stored models.Recipe
		require.NoError(t, ts.DB.First(&stored, resp.ID).Error)
		assert.Equal(t, ts.User.ID, stored.UserID)
	})

	t.Run("rejects missing title and non-positive time", func(t *testing.T) {
		router, ts := setupTestRouter(t)

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/recipes", map[string]interface{}{
			"title":        "",
			"time_minutes": 0,
			"price":        "1.00",
		}, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Details, "title")
		assert.Contains(t, resp.Details, "time_minutes")
	})
}

func TestRecipeGet(t *testing.T) {
	t.Run("returns own recipe with detail fields", func(t *testing.T) {
		router, ts := setupTestRouter(t)
		recipe := testutil.CreateTestRecipe(t, ts.DB, ts.User.ID, "Detail")

		req := testutil.AuthenticatedRequest(t, "GET", fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), nil, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.RecipeResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, recipe.ID, resp.ID)
		assert.Equal(t, "Detail", resp.Title)
		assert.Equal(t, 10, resp.TimeMinutes)
	})

	t.Run("returns not found for another owner's recipe", func(t *testing.T) {
		router, ts := setupTestRouter(t)
		other := testutil.CreateTestUser(t, ts.DB)
		foreign := testutil.CreateTestRecipe(t, ts.DB, other.ID, "Foreign")

		req := testutil.AuthenticatedRequest(t, "GET", fmt.Sprintf("/api/v1/recipes/%d", foreign.ID), nil, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("rejects a malformed id", func(t *testing.T) {
		router, ts := setupTestRouter(t)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/recipes/abc", nil, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRecipeUpdate(t *testing.T) {
	t.Run("patches only the provided fields", func(t *testing.T) {
		router, ts := setupTestRouter(t)

		tag := testutil.CreateTestTag(t, ts.DB, ts.User.ID, "Keep")
		recipe := testutil.CreateTestRecipe(t, ts.DB, ts.User.ID, "Original")
		testutil.AttachTags(t, ts.DB, recipe, tag)

		req := testutil.AuthenticatedRequest(t, "PATCH", fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), map[string]interface{}{
			"title": "Patched",
		}, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.RecipeResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "Patched", resp.Title)
		assert.Equal(t, 10, resp.TimeMinutes)
		assert.Len(t, resp.Tags, 1, "omitted tags key leaves associations untouched")
	})

	t.Run("an empty tags list clears associations", func(t *testing.T) {
		router, ts := setupTestRouter(t)

		tag := testutil.CreateTestTag(t, ts.DB, ts.User.ID, "Drop")
		recipe := testutil.CreateTestRecipe(t, ts.DB, ts.User.ID, "Cleared")
		testutil.AttachTags(t, ts.DB, recipe, tag)

		req := testutil.AuthenticatedRequest(t, "PATCH", fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), map[string]interface{}{
			"tags": []map[string]string{},
		}, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.RecipeResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Empty(t, resp.Tags)
		assert.Equal(t, "Cleared", resp.Title)
	})

	t.Run("returns not found for another owner's recipe", func(t *testing.T) {
		router, ts := setupTestRouter(t)
		other := testutil.CreateTestUser(t, ts.DB)
		foreign := testutil.CreateTestRecipe(t, ts.DB, other.ID, "Foreign")

		req := testutil.AuthenticatedRequest(t, "PATCH", fmt.Sprintf("/api/v1/recipes/%d", foreign.ID), map[string]interface{}{
			"title": "Hijacked",
		}, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)

		var stored models.Recipe
		require.NoError(t, ts.DB.First(&stored, foreign.ID).Error)
		assert.Equal(t, "Foreign", stored.Title)
	})

	t.Run("rejects an empty replacement title", func(t *testing.T) {
		router, ts := setupTestRouter(t)
		recipe := testutil.CreateTestRecipe(t, ts.DB, ts.User.ID, "Original")

		req := testutil.AuthenticatedRequest(t, "PATCH", fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), map[string]interface{}{
			"title": "",
		}, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRecipeDelete(t *testing.T) {
	t.Run("deletes own recipe", func(t *testing.T) {
		router, ts := setupTestRouter(t)
		recipe := testutil.CreateTestRecipe(t, ts.DB, ts.User.ID, "Doomed")

		req := testutil.AuthenticatedRequest(t, "DELETE", fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), nil, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusNoContent, rr.Code)

		get := testutil.AuthenticatedRequest(t, "GET", fmt.Sprintf("/api/v1/recipes/%d", recipe.ID), nil, ts.Token)
		grr := httptest.NewRecorder()
		router.ServeHTTP(grr, get)
		assert.Equal(t, http.StatusNotFound, grr.Code)
	})

	t.Run("returns not found for another owner's recipe", func(t *testing.T) {
		router, ts := setupTestRouter(t)
		other := testutil.CreateTestUser(t, ts.DB)
		foreign := testutil.CreateTestRecipe(t, ts.DB, other.ID, "Foreign")

		req := testutil.AuthenticatedRequest(t, "DELETE", fmt.Sprintf("/api/v1/recipes/%d", foreign.ID), nil, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)

		var count int64
		require.NoError(t, ts.DB.Model(&models.Recipe{}).Where("id = ?", foreign.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestRecipeUploadImage(t *testing.T) {
	t.Run("accepts a valid image and returns its URL", func(t *testing.T) {
		router, ts := setupTestRouter(t)
		recipe := testutil.CreateTestRecipe(t, ts.DB, ts.User.ID, "Photogenic")

		req := testutil.MultipartImageRequest(t, fmt.Sprintf("/api/v1/recipes/%d/image", recipe.ID), testutil.PNGBytes(t), ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.RecipeResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Image, "/media/")
		assert.Contains(t, resp.Image, ".png")
	})

	t.Run("rejects non-image bytes with a field error", func(t *testing.T) {
		router, ts := setupTestRouter(t)
		recipe := testutil.CreateTestRecipe(t, ts.DB, ts.User.ID, "Photogenic")

		req := testutil.MultipartImageRequest(t, fmt.Sprintf("/api/v1/recipes/%d/image", recipe.ID), []byte("not an image"), ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Details, "image")

		var stored models.Recipe
		require.NoError(t, ts.DB.First(&stored, recipe.ID).Error)
		assert.Empty(t, stored.Image)
	})

	t.Run("rejects an oversize upload instead of truncating it", func(t *testing.T) {
		router, ts := setupTestRouter(t)
		recipe := testutil.CreateTestRecipe(t, ts.DB, ts.User.ID, "Photogenic")

		// One byte past the 10MB cap.
		oversize := make([]byte, 10<<20+1)
		req := testutil.MultipartImageRequest(t, fmt.Sprintf("/api/v1/recipes/%d/image", recipe.ID), oversize, ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Details, "image")

		var stored models.Recipe
		require.NoError(t, ts.DB.First(&stored, recipe.ID).Error)
		assert.Empty(t, stored.Image)
	})

	t.Run("returns not found for another owner's recipe", func(t *testing.T) {
		router, ts := setupTestRouter(t)
		other := testutil.CreateTestUser(t, ts.DB)
		foreign := testutil.CreateTestRecipe(t, ts.DB, other.ID, "Foreign")

		req := testutil.MultipartImageRequest(t, fmt.Sprintf("/api/v1/recipes/%d/image", foreign.ID), testutil.PNGBytes(t), ts.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
