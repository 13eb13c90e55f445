package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "wholesale-service/common/errors"
	"wholesale-service/controllers"
	"wholesale-service/models"
	"wholesale-service/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Mock OrderService ---

type mockOrderService struct {
	submitFn func(ctx context.Context, req *models.SubmitOrderRequest) (*models.Order, *apperrors.Error)
	getFn    func(ctx context.Context, ref string) (*models.Order, *apperrors.Error)
	listFn   func(ctx context.Context, filter models.OrderFilter, page, limit int) ([]models.Order, int64, *apperrors.Error)
}

func (m *mockOrderService) SubmitOrder(ctx context.Context, req *models.SubmitOrderRequest) (*models.Order, *apperrors.Error) {
	return m.submitFn(ctx, req)
}
func (m *mockOrderService) GetOrder(ctx context.Context, ref string) (*models.Order, *apperrors.Error) {
	return m.getFn(ctx, ref)
}
func (m *mockOrderService) ListOrders(ctx context.Context, filter models.OrderFilter, page, limit int) ([]models.Order, int64, *apperrors.Error) {
	return m.listFn(ctx, filter, page, limit)
}

// --- Mock ReviewService ---

type mockReviewService struct {
	reviewFn func(ctx context.Context, ref string, req *models.ReviewRequest, reviewer string) (*models.Order, string, *apperrors.Error)
}

func (m *mockReviewService) ReviewOrder(ctx context.Context, ref string, req *models.ReviewRequest, reviewer string) (*models.Order, string, *apperrors.Error) {
	return m.reviewFn(ctx, ref, req, reviewer)
}

// --- Mock CatalogService ---

type mockCatalogService struct {
	accessFn func(ctx context.Context, catalogID, phone string) (*models.CatalogAccessResponse, *apperrors.Error)
}

func (m *mockCatalogService) CheckAccess(ctx context.Context, catalogID, phone string) (*models.CatalogAccessResponse, *apperrors.Error) {
	return m.accessFn(ctx, catalogID, phone)
}

// --- Mock PurchaseOrderService ---

type mockPOService struct {
	generateFn func(ctx context.Context, orderRef string) (*models.PurchaseOrder, *apperrors.Error)
	getFn      func(ctx context.Context, id string) (*models.PurchaseOrder, *apperrors.Error)
	listFn     func(ctx context.Context, status models.PurchaseOrderStatus, page, limit int) ([]models.PurchaseOrder, int64, *apperrors.Error)
	documentFn func(ctx context.Context, id string) (*models.PODocumentResponse, *apperrors.Error)
	statusFn   func(ctx context.Context, id string, status models.PurchaseOrderStatus) (*models.PurchaseOrder, *apperrors.Error)
	deleteFn   func(ctx context.Context, id string) *apperrors.Error
}

func (m *mockPOService) GeneratePurchaseOrder(ctx context.Context, orderRef string) (*models.PurchaseOrder, *apperrors.Error) {
	return m.generateFn(ctx, orderRef)
}
func (m *mockPOService) GetPurchaseOrder(ctx context.Context, id string) (*models.PurchaseOrder, *apperrors.Error) {
	return m.getFn(ctx, id)
}
func (m *mockPOService) ListPurchaseOrders(ctx context.Context, status models.PurchaseOrderStatus, page, limit int) ([]models.PurchaseOrder, int64, *apperrors.Error) {
	return m.listFn(ctx, status, page, limit)
}
func (m *mockPOService) GetDocument(ctx context.Context, id string) (*models.PODocumentResponse, *apperrors.Error) {
	return m.documentFn(ctx, id)
}
func (m *mockPOService) UpdateStatus(ctx context.Context, id string, status models.PurchaseOrderStatus) (*models.PurchaseOrder, *apperrors.Error) {
	return m.statusFn(ctx, id, status)
}
func (m *mockPOService) DeletePurchaseOrder(ctx context.Context, id string) *apperrors.Error {
	return m.deleteFn(ctx, id)
}

var (
	_ services.OrderService         = (*mockOrderService)(nil)
	_ services.ReviewService        = (*mockReviewService)(nil)
	_ services.CatalogService       = (*mockCatalogService)(nil)
	_ services.PurchaseOrderService = (*mockPOService)(nil)
)

// --- Helpers ---

func setupRouter(orderSvc *mockOrderService, rs *mockReviewService, cs *mockCatalogService, ps *mockPOService) *gin.Engine {
	r := gin.New()
	oc := controllers.NewOrderController(orderSvc, rs)
	cc := controllers.NewCatalogController(cs)
	pc := controllers.NewPurchaseOrderController(ps)

	r.Use(func(c *gin.Context) {
		c.Set("userID", "admin-1")
		c.Set("role", "admin")
		c.Next()
	})

	r.POST("/orders", oc.SubmitOrder)
	r.GET("/catalogs/:id/access", cc.CheckAccess)
	r.GET("/admin/orders", oc.ListOrders)
	r.GET("/admin/orders/:id", oc.GetOrder)
	r.POST("/admin/orders/:id/review", oc.ReviewOrder)
	r.POST("/admin/orders/:id/purchase-order", pc.GeneratePurchaseOrder)
	r.GET("/admin/purchase-orders", pc.ListPurchaseOrders)
	r.GET("/admin/purchase-orders/:id", pc.GetPurchaseOrder)
	r.GET("/admin/purchase-orders/:id/document", pc.GetDocument)
	r.PATCH("/admin/purchase-orders/:id/status", pc.UpdateStatus)
	r.DELETE("/admin/purchase-orders/:id", pc.DeletePurchaseOrder)
	return r
}

func doJSON(r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	switch p := payload.(type) {
	case nil:
		body = &bytes.Buffer{}
	case string:
		body = bytes.NewBufferString(p)
	default:
		b, _ := json.Marshal(p)
		body = bytes.NewBuffer(b)
	}
	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// --- Order tests ---

func TestController_SubmitOrder_Success(t *testing.T) {
	productID := primitive.NewObjectID().Hex()
	orderSvc := &mockOrderService{
		submitFn: func(_ context.Context, req *models.SubmitOrderRequest) (*models.Order, *apperrors.Error) {
			assert.Equal(t, productID, req.Items[0].ProductID.RawString())
			return &models.Order{OrderNumber: "EBA-261015-0A1B", Status: models.OrderStatusSubmitted}, nil
		},
	}
	r := setupRouter(orderSvc, nil, nil, nil)

	w := doJSON(r, http.MethodPost, "/orders", map[string]interface{}{
		"catalogId":     primitive.NewObjectID().Hex(),
		"retailerPhone": "9876543210",
		"items":         []map[string]interface{}{{"productId": productID, "sets": 2}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Order submitted successfully", resp["message"])
	assert.Equal(t, "EBA-261015-0A1B", resp["order"].(map[string]interface{})["orderNumber"])
}

func TestController_SubmitOrder_ValidationError(t *testing.T) {
	called := false
	orderSvc := &mockOrderService{
		submitFn: func(context.Context, *models.SubmitOrderRequest) (*models.Order, *apperrors.Error) {
			called = true
			return nil, nil
		},
	}
	r := setupRouter(orderSvc, nil, nil, nil)

	w := doJSON(r, http.MethodPost, "/orders", map[string]interface{}{
		"catalogId":     "short",
		"retailerPhone": "123",
		"items":         []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)

	resp := decode(t, w)
	details := resp["details"].([]interface{})
	assert.Contains(t, details, "CatalogID: len=24")
	assert.Contains(t, details, "RetailerPhone: min=10")
}

func TestController_SubmitOrder_MalformedJSON(t *testing.T) {
	r := setupRouter(&mockOrderService{}, nil, nil, nil)
	w := doJSON(r, http.MethodPost, "/orders", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestController_SubmitOrder_ServiceError(t *testing.T) {
	orderSvc := &mockOrderService{
		submitFn: func(context.Context, *models.SubmitOrderRequest) (*models.Order, *apperrors.Error) {
			return nil, apperrors.Validation("Catalog is not active")
		},
	}
	r := setupRouter(orderSvc, nil, nil, nil)

	w := doJSON(r, http.MethodPost, "/orders", map[string]interface{}{
		"catalogId":     primitive.NewObjectID().Hex(),
		"retailerPhone": "9876543210",
		"items":         []map[string]interface{}{{"productId": primitive.NewObjectID().Hex(), "sets": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Catalog is not active", resp["error"])
}

func TestController_ListOrders_PassesFiltersAndPagination(t *testing.T) {
	orderSvc := &mockOrderService{
		listFn: func(_ context.Context, filter models.OrderFilter, page, limit int) ([]models.Order, int64, *apperrors.Error) {
			assert.Equal(t, models.OrderStatusSubmitted, filter.Status)
			assert.Equal(t, "9876543210", filter.Phone)
			assert.Equal(t, 2, page)
			assert.Equal(t, controllers.MaxPageSize, limit)
			return []models.Order{{OrderNumber: "EBA-1"}}, 101, nil
		},
	}
	r := setupRouter(orderSvc, nil, nil, nil)

	w := doJSON(r, http.MethodGet, "/admin/orders?status=submitted&phone=9876543210&page=2&limit=500", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	meta := decode(t, w)["meta"].(map[string]interface{})
	assert.Equal(t, float64(101), meta["total"])
	assert.Equal(t, float64(2), meta["total_pages"])
	assert.Equal(t, false, meta["has_more"])
}

func TestController_GetOrder_NotFound(t *testing.T) {
	orderSvc := &mockOrderService{
		getFn: func(context.Context, string) (*models.Order, *apperrors.Error) {
			return nil, apperrors.NotFound("Order not found")
		},
	}
	r := setupRouter(orderSvc, nil, nil, nil)

	w := doJSON(r, http.MethodGet, "/admin/orders/EBA-000000-0000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", decode(t, w)["error"])
}

func TestController_ReviewOrder_Success(t *testing.T) {
	rs := &mockReviewService{
		reviewFn: func(_ context.Context, ref string, req *models.ReviewRequest, reviewer string) (*models.Order, string, *apperrors.Error) {
			assert.Equal(t, "EBA-261015-0A1B", ref)
			assert.Equal(t, "admin-1", reviewer)
			assert.Equal(t, models.ReviewActionApprove, req.Action)
			assert.Equal(t, 10, req.SizeQuantities["p1-0"].Total())
			return &models.Order{Status: models.OrderStatusApproved}, "Order approved successfully", nil
		},
	}
	r := setupRouter(nil, rs, nil, nil)

	w := doJSON(r, http.MethodPost, "/admin/orders/EBA-261015-0A1B/review", map[string]interface{}{
		"action":         "approve",
		"sizeQuantities": map[string]map[string]int{"p1-0": {"S": 2, "M": 2, "L": 2, "XL": 2, "XXL": 2}},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Order approved successfully", resp["message"])
}

func TestController_ReviewOrder_UnknownAction(t *testing.T) {
	r := setupRouter(nil, &mockReviewService{}, nil, nil)

	w := doJSON(r, http.MethodPost, "/admin/orders/abc/review", map[string]interface{}{"action": "escalate"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestController_ReviewOrder_Conflict(t *testing.T) {
	rs := &mockReviewService{
		reviewFn: func(context.Context, string, *models.ReviewRequest, string) (*models.Order, string, *apperrors.Error) {
			return nil, "", apperrors.Conflict("Order was changed by another review; reload it and try again")
		},
	}
	r := setupRouter(nil, rs, nil, nil)

	w := doJSON(r, http.MethodPost, "/admin/orders/abc/review", map[string]interface{}{"action": "reject"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

// --- Catalog tests ---

func TestController_CheckAccess(t *testing.T) {
	cs := &mockCatalogService{
		accessFn: func(_ context.Context, catalogID, phone string) (*models.CatalogAccessResponse, *apperrors.Error) {
			assert.Equal(t, "9876543210", phone)
			return &models.CatalogAccessResponse{
				Allowed:         true,
				Catalog:         models.CatalogSummary{ID: catalogID, Name: "Festive"},
				DiscountPercent: 10,
			}, nil
		},
	}
	r := setupRouter(nil, nil, cs, nil)

	w := doJSON(r, http.MethodGet, "/catalogs/abc/access?phone=9876543210", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, true, resp["allowed"])
	assert.Equal(t, float64(10), resp["discountPercent"])
}

func TestController_CheckAccess_RequiresPhone(t *testing.T) {
	r := setupRouter(nil, nil, &mockCatalogService{}, nil)

	w := doJSON(r, http.MethodGet, "/catalogs/abc/access", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Purchase order tests ---

func TestController_GeneratePurchaseOrder(t *testing.T) {
	ps := &mockPOService{
		generateFn: func(_ context.Context, orderRef string) (*models.PurchaseOrder, *apperrors.Error) {
			return &models.PurchaseOrder{PONumber: "PO-261015-0001", OrderNumber: orderRef}, nil
		},
	}
	r := setupRouter(nil, nil, nil, ps)

	w := doJSON(r, http.MethodPost, "/admin/orders/EBA-1/purchase-order", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	po := decode(t, w)["purchaseOrder"].(map[string]interface{})
	assert.Equal(t, "PO-261015-0001", po["poNumber"])
}

func TestController_GeneratePurchaseOrder_NotApproved(t *testing.T) {
	ps := &mockPOService{
		generateFn: func(context.Context, string) (*models.PurchaseOrder, *apperrors.Error) {
			return nil, apperrors.Conflict("Purchase orders can only be generated for approved orders (current status: submitted)")
		},
	}
	r := setupRouter(nil, nil, nil, ps)

	w := doJSON(r, http.MethodPost, "/admin/orders/EBA-1/purchase-order", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestController_GetDocument(t *testing.T) {
	ps := &mockPOService{
		documentFn: func(_ context.Context, id string) (*models.PODocumentResponse, *apperrors.Error) {
			if id == "stored" {
				return &models.PODocumentResponse{URL: "https://docs.example.com/po.html"}, nil
			}
			return &models.PODocumentResponse{HTML: "<html>PO</html>"}, nil
		},
	}
	r := setupRouter(nil, nil, nil, ps)

	w := doJSON(r, http.MethodGet, "/admin/purchase-orders/stored/document", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://docs.example.com/po.html", decode(t, w)["url"])

	w = doJSON(r, http.MethodGet, "/admin/purchase-orders/inline/document", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "<html>PO</html>", w.Body.String())
}

func TestController_UpdatePOStatus(t *testing.T) {
	ps := &mockPOService{
		statusFn: func(_ context.Context, _ string, status models.PurchaseOrderStatus) (*models.PurchaseOrder, *apperrors.Error) {
			return &models.PurchaseOrder{Status: status}, nil
		},
	}
	r := setupRouter(nil, nil, nil, ps)

	w := doJSON(r, http.MethodPatch, "/admin/purchase-orders/abc/status", map[string]string{"status": "sent"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPatch, "/admin/purchase-orders/abc/status", map[string]string{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestController_DeletePurchaseOrder(t *testing.T) {
	ps := &mockPOService{
		deleteFn: func(_ context.Context, id string) *apperrors.Error {
			if id == "missing" {
				return apperrors.NotFound("Purchase order not found")
			}
			return nil
		},
	}
	r := setupRouter(nil, nil, nil, ps)

	w := doJSON(r, http.MethodDelete, "/admin/purchase-orders/abc", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])

	w = doJSON(r, http.MethodDelete, "/admin/purchase-orders/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestController_ListPurchaseOrders(t *testing.T) {
	ps := &mockPOService{
		listFn: func(_ context.Context, status models.PurchaseOrderStatus, page, limit int) ([]models.PurchaseOrder, int64, *apperrors.Error) {
			assert.Equal(t, models.POStatusSent, status)
			assert.Equal(t, controllers.DefaultPage, page)
			assert.Equal(t, controllers.DefaultLimit, limit)
			return []models.PurchaseOrder{{PONumber: "PO-1"}}, 1, nil
		},
	}
	r := setupRouter(nil, nil, nil, ps)

	w := doJSON(r, http.MethodGet, "/admin/purchase-orders?status=sent", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["purchaseOrders"], 1)
}
