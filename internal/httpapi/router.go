package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/notfawkes/FitMeat/internal/identity"
)

// NewRouter assembles the storefront API. Basket routes only need the
// session cookie; orders need a verified user; checkout needs both.
func NewRouter(
	catalogHandler *CatalogHandler,
	basketHandler *BasketHandler,
	checkoutHandler *CheckoutHandler,
	ordersHandler *OrdersHandler,
	verifier identity.Verifier,
	requestTimeout time.Duration,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	auth := AuthMiddleware(verifier)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/meals", func(r chi.Router) {
			r.Get("/", catalogHandler.ListMeals)
			r.Get("/{meal_id}", catalogHandler.GetMeal)
		})

		r.Route("/basket", func(r chi.Router) {
			r.Use(SessionMiddleware)
			r.Get("/", basketHandler.GetBasket)
			r.Delete("/", basketHandler.ClearBasket)
			r.Post("/items", basketHandler.AddItem)
			r.Put("/items/{meal_id}", basketHandler.UpdateQuantity)
			r.Delete("/items/{meal_id}", basketHandler.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/timeslots", checkoutHandler.GetTimeSlots)
			r.With(SessionMiddleware, auth).Post("/", checkoutHandler.PlaceOrder)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(auth)
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{order_id}", ordersHandler.GetOrder)
		})
	})

	return otelhttp.NewHandler(r, "fitmeat-api")
}
