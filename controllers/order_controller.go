package controllers

import (
	"net/http"

	"wholesale-service/middleware"
	"wholesale-service/models"
	"wholesale-service/services"

	"github.com/gin-gonic/gin"
)

// OrderController handles storefront submission and admin order endpoints.
type OrderController struct {
	orderService  services.OrderService
	reviewService services.ReviewService
}

func NewOrderController(orderService services.OrderService, reviewService services.ReviewService) *OrderController {
	return &OrderController{orderService: orderService, reviewService: reviewService}
}

// SubmitOrder handles POST /orders.
func (oc *OrderController) SubmitOrder(ctx *gin.Context) {
	var req models.SubmitOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if err := validate.Struct(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": validationDetails(err)})
		return
	}

	order, svcErr := oc.orderService.SubmitOrder(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.Code, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"order":   order,
		"message": "Order submitted successfully",
	})
}

// ListOrders handles GET /admin/orders.
func (oc *OrderController) ListOrders(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	filter := models.OrderFilter{
		Status: models.OrderStatus(ctx.Query("status")),
		Phone:  ctx.Query("phone"),
	}

	orders, total, svcErr := oc.orderService.ListOrders(ctx.Request.Context(), filter, page, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.Code, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"orders": orders, "meta": paginationMeta(page, limit, total)})
}

// GetOrder handles GET /admin/orders/:id, where id is an ObjectID or order number.
func (oc *OrderController) GetOrder(ctx *gin.Context) {
	order, svcErr := oc.orderService.GetOrder(ctx.Request.Context(), ctx.Param("id"))
	if svcErr != nil {
		ctx.JSON(svcErr.Code, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// ReviewOrder handles POST /admin/orders/:id/review.
func (oc *OrderController) ReviewOrder(ctx *gin.Context) {
	var req models.ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	reviewer, _ := middleware.GetUserID(ctx)
	order, message, svcErr := oc.reviewService.ReviewOrder(ctx.Request.Context(), ctx.Param("id"), &req, reviewer)
	if svcErr != nil {
		ctx.JSON(svcErr.Code, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   order,
		"message": message,
	})
}
