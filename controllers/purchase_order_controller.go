package controllers

import (
	"net/http"

	"wholesale-service/models"
	"wholesale-service/services"

	"github.com/gin-gonic/gin"
)

// PurchaseOrderController handles the admin purchase order endpoints.
type PurchaseOrderController struct {
	poService services.PurchaseOrderService
}

func NewPurchaseOrderController(poService services.PurchaseOrderService) *PurchaseOrderController {
	return &PurchaseOrderController{poService: poService}
}

// GeneratePurchaseOrder handles POST /admin/orders/:id/purchase-order.
func (pc *PurchaseOrderController) GeneratePurchaseOrder(ctx *gin.Context) {
	po, svcErr := pc.poService.GeneratePurchaseOrder(ctx.Request.Context(), ctx.Param("id"))
	if svcErr != nil {
		ctx.JSON(svcErr.Code, gin.H{"success": false, "error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"purchaseOrder": po,
		"message":       "Purchase order generated",
	})
}

// ListPurchaseOrders handles GET /admin/purchase-orders.
func (pc *PurchaseOrderController) ListPurchaseOrders(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	status := models.PurchaseOrderStatus(ctx.Query("status"))

	pos, total, svcErr := pc.poService.ListPurchaseOrders(ctx.Request.Context(), status, page, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.Code, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"purchaseOrders": pos, "meta": paginationMeta(page, limit, total)})
}

// GetPurchaseOrder handles GET /admin/purchase-orders/:id.
func (pc *PurchaseOrderController) GetPurchaseOrder(ctx *gin.Context) {
	po, svcErr := pc.poService.GetPurchaseOrder(ctx.Request.Context(), ctx.Param("id"))
	if svcErr != nil {
		ctx.JSON(svcErr.Code, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"purchaseOrder": po})
}

// GetDocument handles GET /admin/purchase-orders/:id/document. Stored
// documents are returned as a presigned link, others as inline HTML.
func (pc *PurchaseOrderController) GetDocument(ctx *gin.Context) {
	doc, svcErr := pc.poService.GetDocument(ctx.Request.Context(), ctx.Param("id"))
	if svcErr != nil {
		ctx.JSON(svcErr.Code, gin.H{"error": svcErr.Message})
		return
	}
	if doc.URL != "" {
		ctx.JSON(http.StatusOK, doc)
		return
	}
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc.HTML))
}

// UpdateStatus handles PATCH /admin/purchase-orders/:id/status.
func (pc *PurchaseOrderController) UpdateStatus(ctx *gin.Context) {
	var req models.UpdatePOStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	po, svcErr := pc.poService.UpdateStatus(ctx.Request.Context(), ctx.Param("id"), req.Status)
	if svcErr != nil {
		ctx.JSON(svcErr.Code, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"purchaseOrder": po})
}

// DeletePurchaseOrder handles DELETE /admin/purchase-orders/:id.
func (pc *PurchaseOrderController) DeletePurchaseOrder(ctx *gin.Context) {
	if svcErr := pc.poService.DeletePurchaseOrder(ctx.Request.Context(), ctx.Param("id")); svcErr != nil {
		ctx.JSON(svcErr.Code, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Purchase order deleted and order reverted to approved"})
}
