package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Batussaii/BANT3D/models"
	"github.com/Batussaii/BANT3D/services"
)

type CheckoutController struct {
	svc services.CheckoutService
}

func NewCheckoutController(svc services.CheckoutService) *CheckoutController {
	return &CheckoutController{svc: svc}
}

// CreateSession handles POST /api/checkout/:provider and returns the
// provider redirect URL.
func (cc *CheckoutController) CreateSession(c *gin.Context) {
	provider := c.Param("provider")

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No hay productos para cobrar."})
		return
	}

	url, svcErr := cc.svc.InitiateCheckout(c.Request.Context(), provider, &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
