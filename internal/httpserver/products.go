package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/pricing"
)

type productHandlers struct {
	svc    productService
	logger *zap.Logger
}

func (h *productHandlers) list(c *gin.Context) {
	products, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"results": out, "count": len(out)})
}

func (h *productHandlers) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}

// quote accepts an empty body, which prices the default selection.
func (h *productHandlers) quote(c *gin.Context) {
	var sel pricing.Selection
	if err := c.ShouldBindJSON(&sel); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid selection body")
		return
	}
	q, err := h.svc.Quote(c.Request.Context(), c.Param("id"), sel)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *productHandlers) save(c *gin.Context) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid product body")
		return
	}
	saved, err := h.svc.Save(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*saved))
}

func (h *productHandlers) duplicates(c *gin.Context) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid product body")
		return
	}
	report := h.svc.Duplicates(p)
	c.JSON(http.StatusOK, gin.H{
		"lengths":   orEmpty(report.Lengths.Indices),
		"laceSizes": orEmpty(report.LaceSizes.Indices),
		"densities": orEmpty(report.Densities.Indices),
		"empty":     report.Empty(),
	})
}

type stockRequest struct {
	InStock *bool `json:"inStock"`
}

func (h *productHandlers) setStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.InStock == nil {
		badRequest(c, "inStock required")
		return
	}
	p, err := h.svc.SetStock(c.Request.Context(), c.Param("id"), *req.InStock)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}

func (h *productHandlers) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
