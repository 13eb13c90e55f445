package services

import (
	"context"
	"errors"
	"math"
	"time"

	apperrors "wholesale-service/common/errors"
	"wholesale-service/common/logger"
	"wholesale-service/models"
	awspkg "wholesale-service/pkg/aws"
	"wholesale-service/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OrderService handles storefront order submission and admin order queries.
type OrderService interface {
	SubmitOrder(ctx context.Context, req *models.SubmitOrderRequest) (*models.Order, *apperrors.Error)
	GetOrder(ctx context.Context, ref string) (*models.Order, *apperrors.Error)
	ListOrders(ctx context.Context, filter models.OrderFilter, page, limit int) ([]models.Order, int64, *apperrors.Error)
}

type orderServiceImpl struct {
	orders  repository.OrderRepository
	catalog repository.CatalogRepository
	events  eventPublisher
	metrics awspkg.MetricsRecorder
	gstRate float64
	logger  *zap.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	catalog repository.CatalogRepository,
	snsClient awspkg.SNSPublisher,
	snsTopicArn string,
	metrics awspkg.MetricsRecorder,
	gstRate float64,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		orders:  orders,
		catalog: catalog,
		events:  eventPublisher{sns: snsClient, topicArn: snsTopicArn, logger: logger},
		metrics: metrics,
		gstRate: gstRate,
		logger:  logger,
	}
}

// SubmitOrder prices the requested items from the product catalog, seeds the
// default size breakdown and stores the order as submitted. Client-side
// prices and totals are only compared, never trusted.
func (s *orderServiceImpl) SubmitOrder(ctx context.Context, req *models.SubmitOrderRequest) (*models.Order, *apperrors.Error) {
	catalogID, appErr := parseObjectID(req.CatalogID, "catalog")
	if appErr != nil {
		return nil, appErr
	}

	access, appErr := checkOrderAccess(ctx, s.catalog, catalogID, req.RetailerPhone, s.logger)
	if appErr != nil {
		if appErr.Err != nil {
			s.logger.Error("Order submission lookup failed", logger.RequestIDField(ctx), zap.Error(appErr.Err))
		}
		return nil, appErr
	}

	productIDs := make([]primitive.ObjectID, len(req.Items))
	for i, item := range req.Items {
		oid, err := primitive.ObjectIDFromHex(ResolveProductID(item.ProductID))
		if err != nil {
			return nil, apperrors.Validationf("Invalid product id %q", ResolveProductID(item.ProductID))
		}
		productIDs[i] = oid
	}

	products, err := s.catalog.FindProductsByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error("Failed to load products", logger.RequestIDField(ctx), zap.Error(err))
		return nil, apperrors.Upstream("Failed to submit order", err)
	}
	byID := make(map[primitive.ObjectID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	factor := 1 - access.discountPercent/100
	items := make([]models.LineItem, len(req.Items))
	sizeQuantities := make(models.SizeQuantities, len(req.Items))

	for i, reqItem := range req.Items {
		product, ok := byID[productIDs[i]]
		if !ok || !product.IsActive || !access.catalog.Contains(product.ID) {
			return nil, apperrors.Validationf("Product %s is not available in this catalog", productIDs[i].Hex())
		}

		pricePerSet := roundMoney(product.PricePerSet * factor)
		item := models.LineItem{
			ProductID:      models.ObjectIDProductRef(product.ID),
			ItemCode:       product.ItemCode,
			ItemName:       product.Name,
			Color:          product.Color,
			Fabric:         product.Fabric,
			PricePerPiece:  roundMoney(product.PricePerPiece * factor),
			PricePerSet:    pricePerSet,
			Quantity:       reqItem.Sets,
			TotalSets:      reqItem.Sets,
			TotalPcs:       reqItem.Sets * models.PiecesPerSet,
			TotalAmount:    roundMoney(float64(reqItem.Sets) * pricePerSet),
			SizeQuantities: DefaultSizeBreakdown(reqItem.Sets),
		}

		if reqItem.Pieces != 0 && reqItem.Pieces != item.TotalPcs {
			s.logger.Warn("Client piece count differs",
				zap.String("item_code", item.ItemCode), zap.Int("client", reqItem.Pieces), zap.Int("server", item.TotalPcs))
		}
		if reqItem.TotalPrice != 0 && math.Abs(reqItem.TotalPrice-item.TotalAmount) > 0.01 {
			s.logger.Warn("Client item total differs",
				zap.String("item_code", item.ItemCode), zap.Float64("client", reqItem.TotalPrice), zap.Float64("server", item.TotalAmount))
		}

		items[i] = item
		sizeQuantities[LineItemKey(item.ProductID, i)] = item.SizeQuantities.Clone()
	}

	summary := SummarizeOrder(items, req.IsGSTApplicable, s.gstRate)
	if req.Summary != nil && math.Abs(req.Summary.AmountAfterTax-summary.AmountAfterTax) > 0.01 {
		s.logger.Warn("Client order summary differs",
			logger.RequestIDField(ctx),
			zap.Float64("client_total", req.Summary.AmountAfterTax),
			zap.Float64("server_total", summary.AmountAfterTax))
	}

	now := time.Now().UTC()
	order := &models.Order{
		Status:         models.OrderStatusSubmitted,
		CatalogID:      catalogID,
		Retailer:       access.retailer.Snapshot(),
		Items:          items,
		Summary:        summary,
		SizeQuantities: sizeQuantities,
		Notes:          req.Notes,
		ReviewHistory:  []models.ReviewHistoryEntry{},
		CreatedAt:      now,
		UpdatedAt:      now,
		Version:        1,
	}

	for attempt := 1; ; attempt++ {
		order.OrderNumber = newDocumentNumber(orderNumberPrefix, now)
		err = s.orders.Create(ctx, order)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicate) && attempt < numberAttempts {
			order.ID = primitive.NilObjectID
			continue
		}
		s.logger.Error("Failed to create order", logger.RequestIDField(ctx), zap.Error(err))
		return nil, apperrors.Upstream("Failed to submit order", err)
	}

	s.logger.Info("Order submitted",
		zap.String("order_number", order.OrderNumber),
		zap.String("retailer", order.Retailer.BusinessName),
		zap.Int("total_sets", summary.TotalSets))

	recordCount(s.metrics, awspkg.MetricOrdersSubmitted, map[string]string{"Service": "wholesale-service"})
	s.events.publish(ctx, models.EventOrderSubmitted, models.OrderEvent{
		EventType:      models.EventOrderSubmitted,
		OrderID:        order.ID.Hex(),
		OrderNumber:    order.OrderNumber,
		Status:         order.Status,
		RetailerPhone:  order.Retailer.Phone,
		TotalSets:      summary.TotalSets,
		AmountAfterTax: summary.AmountAfterTax,
		Timestamp:      now,
	})

	return order, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, ref string) (*models.Order, *apperrors.Error) {
	order, err := findOrder(ctx, s.orders, ref)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("Order not found")
		}
		s.logger.Error("Failed to get order", zap.String("order", ref), zap.Error(err))
		return nil, apperrors.Upstream("Failed to get order", err)
	}
	return order, nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, filter models.OrderFilter, page, limit int) ([]models.Order, int64, *apperrors.Error) {
	orders, total, err := s.orders.FindAll(ctx, filter, page, limit)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		return nil, 0, apperrors.Upstream("Failed to list orders", err)
	}
	return orders, total, nil
}
