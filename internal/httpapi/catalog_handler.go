package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/notfawkes/FitMeat/internal/catalog"
)

type CatalogHandler struct {
	repo    catalog.RepoInterface
	timeout time.Duration
}

func NewCatalogHandler(repo catalog.RepoInterface, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		repo:    repo,
		timeout: timeout,
	}
}

type MealsResponse struct {
	Meals []*catalog.Meal `json:"meals"`
}

func (h *CatalogHandler) ListMeals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var meals []*catalog.Meal
	var err error
	if category := r.URL.Query().Get("category"); category != "" {
		meals, err = h.repo.GetMealsByCategory(ctx, category)
	} else {
		meals, err = h.repo.GetAllMeals(ctx)
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &MealsResponse{Meals: meals})
}

func (h *CatalogHandler) GetMeal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	mealIDStr := chi.URLParam(r, "meal_id")
	mealID, err := strconv.ParseInt(mealIDStr, 10, 64)
	if err != nil || mealID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_meal_id", "meal_id must be a positive integer")
		return
	}

	meal, err := h.repo.GetMeal(ctx, mealID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, meal)
}
