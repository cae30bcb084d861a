package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/cart"
	cartsvc "storefront/internal/service/cart"
)

type cartHandlers struct {
	svc    cartService
	logger *zap.Logger
}

func (h *cartHandlers) create(c *gin.Context) {
	session := h.svc.NewSession()
	c.JSON(http.StatusCreated, toCartResponse(session, nil, true))
}

func (h *cartHandlers) get(c *gin.Context) {
	h.respondCart(c, http.StatusOK, nil)
}

func (h *cartHandlers) addLine(c *gin.Context) {
	var in cartsvc.AddInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid line body")
		return
	}
	_, err := h.svc.Add(c.Request.Context(), c.Param("session"), in)
	h.respondCart(c, http.StatusCreated, err)
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *cartHandlers) setQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		badRequest(c, "quantity required")
		return
	}
	err := h.svc.SetQuantity(c.Request.Context(), c.Param("session"), c.Param("lineId"), *req.Quantity)
	h.respondCart(c, http.StatusOK, err)
}

func (h *cartHandlers) removeLine(c *gin.Context) {
	err := h.svc.Remove(c.Request.Context(), c.Param("session"), c.Param("lineId"))
	h.respondCart(c, http.StatusOK, err)
}

// findProduct answers whether a product is in the cart in any variant.
func (h *cartHandlers) findProduct(c *gin.Context) {
	line, err := h.svc.Find(c.Request.Context(), c.Param("session"), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (h *cartHandlers) checkout(c *gin.Context) {
	snap, err := h.svc.Checkout(c.Request.Context(), c.Param("session"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// respondCart writes the session cart after a mutation. A mutation that was applied but not saved still returns
// the cart, flagged as not persisted.
func (h *cartHandlers) respondCart(c *gin.Context, status int, mutationErr error) {
	persisted := true
	if mutationErr != nil {
		if !cart.IsNotDurable(mutationErr) {
			respondError(c, h.logger, mutationErr)
			return
		}
		persisted = false
		status = http.StatusAccepted
	}
	session := c.Param("session")
	lines, err := h.svc.Lines(c.Request.Context(), session)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(status, toCartResponse(session, lines, persisted))
}
