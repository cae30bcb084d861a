package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/observability"
	"storefront/internal/pricing"
	cartsvc "storefront/internal/service/cart"
	productsvc "storefront/internal/service/product"
	"storefront/internal/variant"
)

type productService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Save(ctx context.Context, p domain.Product) (*domain.Product, error)
	SetStock(ctx context.Context, id string, inStock bool) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Duplicates(p domain.Product) variant.DuplicateReport
	Quote(ctx context.Context, id string, sel pricing.Selection) (*productsvc.QuoteResult, error)
}

type cartService interface {
	NewSession() string
	Add(ctx context.Context, sessionID string, in cartsvc.AddInput) (domain.CartLine, error)
	SetQuantity(ctx context.Context, sessionID, lineID string, quantity int) error
	Remove(ctx context.Context, sessionID, lineID string) error
	Lines(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	Find(ctx context.Context, sessionID, productID string) (domain.CartLine, error)
	Persisted(ctx context.Context, sessionID string) (bool, error)
	Subscribe(ctx context.Context, sessionID string) (<-chan []domain.CartLine, func(), error)
	Checkout(ctx context.Context, sessionID string) (checkout.Snapshot, error)
}

// Deps carries the services behind the routes.
type Deps struct {
	ProductSvc  productService
	CartSvc     cartService
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db Pinger, deps Deps) (*gin.Engine, error) {
	if deps.ProductSvc == nil {
		return nil, errors.New("httpserver: product service required")
	}
	if deps.CartSvc == nil {
		return nil, errors.New("httpserver: cart service required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(observability.RequestLogger(logger), gin.Recovery(), cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	products := &productHandlers{svc: deps.ProductSvc, logger: logger}
	router.GET("/products", products.list)
	router.GET("/products/:id", products.get)
	router.POST("/products/:id/quote", products.quote)

	admin := router.Group("/admin/products")
	admin.PUT("", products.save)
	admin.POST("/duplicates", products.duplicates)
	admin.PUT("/:id/stock", products.setStock)
	admin.DELETE("/:id", products.remove)

	carts := &cartHandlers{svc: deps.CartSvc, logger: logger}
	router.POST("/carts", carts.create)
	session := router.Group("/carts/:session")
	session.GET("", carts.get)
	session.POST("/lines", carts.addLine)
	session.PUT("/lines/:lineId", carts.setQuantity)
	session.DELETE("/lines/:lineId", carts.removeLine)
	session.GET("/products/:id", carts.findProduct)
	session.GET("/checkout", carts.checkout)
	session.GET("/ws", carts.stream)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
