package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Health   *handler.HealthHandler
	User     *handler.UserHandler
	Category *handler.CategoryHandler
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
}

// Options configures the middleware chain.
type Options struct {
	CORSAllowedOrigin string
	// RateLimiter is nil when rate limiting is disabled.
	RateLimiter *middleware.RateLimiter
	Resolver    middleware.IdentityResolver
	Users       middleware.UserLookup
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery runs inside RequestID so panic responses carry the correlation id.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(opts.CORSAllowedOrigin))
	if opts.RateLimiter != nil {
		r.Use(middleware.RateLimit(opts.RateLimiter, logger))
	}

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	authenticate := middleware.Authenticate(opts.Resolver, opts.Users, logger)
	admin := func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RequireAdmin)
	}

	r.Get("/health", h.Health.Health)

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", h.User.Register)
		r.Post("/login", h.User.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", h.User.Me)
			r.Get("/{id}", h.User.GetByID)
		})

		r.Group(func(r chi.Router) {
			admin(r)
			r.Get("/", h.User.List)
			r.Post("/register-admin", h.User.RegisterAdmin)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.Category.List)
		r.Get("/{id}", h.Category.GetByID)
		r.Get("/{id}/subcategories", h.Category.ListSubCategories)

		r.Group(func(r chi.Router) {
			admin(r)
			r.Post("/", h.Category.Create)
			r.Put("/{id}", h.Category.Update)
			r.Delete("/{id}", h.Category.Delete)
			r.Delete("/{id}/soft", h.Category.SoftDelete)
			r.Post("/{id}/subcategories", h.Category.CreateSubCategory)
		})
	})

	r.With(authenticate, middleware.RequireAdmin).Delete("/subcategories/{id}/soft", h.Category.SoftDeleteSubCategory)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.Product.List)
		r.Get("/search", h.Product.Search)
		r.Get("/featured", h.Product.Featured)
		r.Get("/autocomplete", h.Product.Autocomplete)
		r.Get("/category/{categoryId}", h.Product.ByCategory)
		r.Get("/{id}", h.Product.GetByID)

		r.Group(func(r chi.Router) {
			admin(r)
			r.Post("/", h.Product.Create)
			r.Put("/{id}", h.Product.Update)
			r.Delete("/{id}", h.Product.Delete)
			r.Delete("/{id}/soft", h.Product.SoftDelete)
		})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", h.Cart.Get)
		r.Delete("/", h.Cart.Clear)
		r.Post("/items", h.Cart.AddItem)
		r.Put("/items/{itemId}", h.Cart.UpdateItem)
		r.Delete("/items/{itemId}", h.Cart.RemoveItem)
		r.Post("/coupon", h.Cart.ApplyCoupon)
		r.Put("/shipping", h.Cart.UpdateShipping)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/", h.Checkout.Initiate)
		r.Get("/", h.Checkout.List)
		r.Get("/{id}", h.Checkout.Get)
		r.Post("/{id}/payment", h.Checkout.ProcessPayment)
	})

	return r
}
