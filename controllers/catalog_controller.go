package controllers

import (
	"net/http"

	"wholesale-service/services"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	catalogService services.CatalogService
}

func NewCatalogController(catalogService services.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// CheckAccess handles GET /catalogs/:id/access?phone=.
func (cc *CatalogController) CheckAccess(ctx *gin.Context) {
	phone := ctx.Query("phone")
	if phone == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Phone number is required"})
		return
	}

	resp, svcErr := cc.catalogService.CheckAccess(ctx.Request.Context(), ctx.Param("id"), phone)
	if svcErr != nil {
		ctx.JSON(svcErr.Code, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
