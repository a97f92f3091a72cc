package routes

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/Batussaii/BANT3D/controllers"
	"github.com/Batussaii/BANT3D/middleware"
)

// RegisterRoutes wires the checkout, webhook and form endpoints plus the
// static storefront files.
func RegisterRoutes(
	r *gin.Engine,
	checkoutCtrl *controllers.CheckoutController,
	webhookCtrl *controllers.WebhookController,
	requestCtrl *controllers.RequestController,
	staticDir string,
) {
	r.Use(middleware.SecurityHeaders())

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware())
	{
		api.POST("/checkout/:provider", checkoutCtrl.CreateSession)
		api.POST("/request", requestCtrl.SubmitRequest)
		api.POST("/color-request", requestCtrl.SubmitColorRequest)
	}

	// Webhook deliveries are authenticated by signature, not rate limited.
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/stripe", webhookCtrl.HandleStripe)
		webhooks.POST("/paypal", webhookCtrl.HandlePayPal)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Static storefront with index fallback for unknown paths.
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Status(http.StatusNotFound)
			return
		}
		path := filepath.Join(staticDir, filepath.Clean("/"+c.Request.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			c.File(path)
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	})
}
