package routes

import (
	"wholesale-service/controllers"
	"wholesale-service/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterStorefrontRoutes sets up the public retailer-facing routes. They
// are rate limited per client IP by the caller-supplied limiter.
func RegisterStorefrontRoutes(r *gin.Engine, limiter gin.HandlerFunc, oc *controllers.OrderController, cc *controllers.CatalogController) {
	storefront := r.Group("")
	if limiter != nil {
		storefront.Use(limiter)
	}
	storefront.POST("/orders", oc.SubmitOrder)
	storefront.GET("/catalogs/:id/access", cc.CheckAccess)
}

// RegisterAdminRoutes sets up order review and purchase order routes.
func RegisterAdminRoutes(r *gin.Engine, oc *controllers.OrderController, pc *controllers.PurchaseOrderController) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminOnly())

	orders := admin.Group("/orders")
	orders.GET("", oc.ListOrders)
	orders.GET("/:id", oc.GetOrder)
	orders.POST("/:id/review", oc.ReviewOrder)
	orders.POST("/:id/purchase-order", pc.GeneratePurchaseOrder)

	pos := admin.Group("/purchase-orders")
	pos.GET("", pc.ListPurchaseOrders)
	pos.GET("/:id", pc.GetPurchaseOrder)
	pos.GET("/:id/document", pc.GetDocument)
	pos.PATCH("/:id/status", pc.UpdateStatus)
	pos.DELETE("/:id", pc.DeletePurchaseOrder)
}
