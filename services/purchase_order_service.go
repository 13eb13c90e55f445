package services

import (
	"context"
	"errors"
	"path"
	"time"

	apperrors "wholesale-service/common/errors"
	"wholesale-service/common/logger"
	"wholesale-service/models"
	awspkg "wholesale-service/pkg/aws"
	"wholesale-service/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const documentLinkExpiry = 15 * time.Minute

// PurchaseOrderConfig holds the purchase-order settings that come from
// configuration.
type PurchaseOrderConfig struct {
	GSTRate        float64
	DocumentPrefix string
	PlaceholderURL string
}

// PurchaseOrderService generates, tracks and deletes purchase orders.
type PurchaseOrderService interface {
	GeneratePurchaseOrder(ctx context.Context, orderRef string) (*models.PurchaseOrder, *apperrors.Error)
	GetPurchaseOrder(ctx context.Context, id string) (*models.PurchaseOrder, *apperrors.Error)
	ListPurchaseOrders(ctx context.Context, status models.PurchaseOrderStatus, page, limit int) ([]models.PurchaseOrder, int64, *apperrors.Error)
	GetDocument(ctx context.Context, id string) (*models.PODocumentResponse, *apperrors.Error)
	UpdateStatus(ctx context.Context, id string, status models.PurchaseOrderStatus) (*models.PurchaseOrder, *apperrors.Error)
	DeletePurchaseOrder(ctx context.Context, id string) *apperrors.Error
}

type purchaseOrderServiceImpl struct {
	orders  repository.OrderRepository
	pos     repository.PurchaseOrderRepository
	images  *ImageResolver
	docs    awspkg.DocumentStore
	events  eventPublisher
	metrics awspkg.MetricsRecorder
	cfg     PurchaseOrderConfig
	logger  *zap.Logger
}

// NewPurchaseOrderService creates the service. docs may be nil, in which case
// documents are rendered on request instead of stored.
func NewPurchaseOrderService(
	orders repository.OrderRepository,
	pos repository.PurchaseOrderRepository,
	images *ImageResolver,
	docs awspkg.DocumentStore,
	snsClient awspkg.SNSPublisher,
	snsTopicArn string,
	metrics awspkg.MetricsRecorder,
	cfg PurchaseOrderConfig,
	logger *zap.Logger,
) PurchaseOrderService {
	return &purchaseOrderServiceImpl{
		orders:  orders,
		pos:     pos,
		images:  images,
		docs:    docs,
		events:  eventPublisher{sns: snsClient, topicArn: snsTopicArn, logger: logger},
		metrics: metrics,
		cfg:     cfg,
		logger:  logger,
	}
}

// GeneratePurchaseOrder projects an approved order into a PO, stores the
// rendered document and marks the order po_generated together with the PO
// insert.
func (s *purchaseOrderServiceImpl) GeneratePurchaseOrder(ctx context.Context, orderRef string) (*models.PurchaseOrder, *apperrors.Error) {
	order, err := findOrder(ctx, s.orders, orderRef)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("Order not found")
		}
		s.logger.Error("Failed to load order", zap.String("order", orderRef), zap.Error(err))
		return nil, apperrors.Upstream("Failed to generate purchase order", err)
	}
	if order.Status != models.OrderStatusApproved {
		return nil, apperrors.Conflict("Purchase orders can only be generated for approved orders (current status: " + string(order.Status) + ")")
	}

	summary := ProjectPurchaseOrder(order.Items)
	if order.Summary.IsGSTApplicable {
		summary = ApplyTax(summary, s.cfg.GSTRate)
	}

	now := time.Now().UTC()
	items := make([]models.LineItem, len(order.Items))
	copy(items, order.Items)
	po := &models.PurchaseOrder{
		PONumber:    newDocumentNumber(poNumberPrefix, now),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      models.POStatusGenerated,
		Retailer:    order.Retailer,
		Items:       items,
		Summary:     summary,
		GeneratedAt: now,
	}

	s.storeDocument(ctx, po)

	for attempt := 1; ; attempt++ {
		err = s.pos.CreateForOrder(ctx, po, order.Version)
		if err == nil {
			break
		}
		s.discardDocument(ctx, po)
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, apperrors.Conflict("Order changed while the purchase order was generated; reload it and try again")
		case errors.Is(err, repository.ErrDuplicate) && attempt < numberAttempts:
			if _, findErr := s.pos.FindByOrderID(ctx, order.ID); findErr == nil {
				return nil, apperrors.Conflict("A purchase order already exists for this order")
			}
			po.PONumber = newDocumentNumber(poNumberPrefix, now)
			po.ID = primitive.NilObjectID
			s.storeDocument(ctx, po)
			continue
		}
		s.logger.Error("Failed to create purchase order",
			logger.RequestIDField(ctx), zap.String("order_id", order.ID.Hex()), zap.Error(err))
		return nil, apperrors.Upstream("Failed to generate purchase order", err)
	}

	s.logger.Info("Purchase order generated",
		zap.String("po_number", po.PONumber),
		zap.String("order_number", po.OrderNumber),
		zap.Int("total_styles", summary.TotalStyles))

	recordCount(s.metrics, awspkg.MetricPurchaseOrdersGenerated, map[string]string{"Service": "wholesale-service"})
	s.events.publish(ctx, models.EventPurchaseOrderGenerated, models.PurchaseOrderEvent{
		EventType:      models.EventPurchaseOrderGenerated,
		PurchaseOrder:  po.ID.Hex(),
		PONumber:       po.PONumber,
		OrderID:        po.OrderID.Hex(),
		OrderNumber:    po.OrderNumber,
		TotalStyles:    summary.TotalStyles,
		TotalSets:      summary.TotalSets,
		AmountAfterTax: summary.AmountAfterTax,
		DocumentKey:    po.DocumentKey,
		Timestamp:      now,
	})
	return po, nil
}

// storeDocument uploads the rendered document. A failed upload leaves
// DocumentKey empty and the document is rendered on request instead.
func (s *purchaseOrderServiceImpl) storeDocument(ctx context.Context, po *models.PurchaseOrder) {
	po.DocumentKey = ""
	if s.docs == nil {
		return
	}
	html, err := s.render(ctx, po)
	if err != nil {
		s.logger.Error("Failed to render purchase order", zap.String("po_number", po.PONumber), zap.Error(err))
		return
	}
	key := path.Join(s.cfg.DocumentPrefix, po.PONumber+".html")
	if err := s.docs.Put(ctx, key, "text/html; charset=utf-8", html); err != nil {
		s.logger.Warn("Failed to upload purchase order document", zap.String("key", key), zap.Error(err))
		return
	}
	po.DocumentKey = key
}

func (s *purchaseOrderServiceImpl) discardDocument(ctx context.Context, po *models.PurchaseOrder) {
	if s.docs == nil || po.DocumentKey == "" {
		return
	}
	if err := s.docs.Delete(ctx, po.DocumentKey); err != nil {
		s.logger.Warn("Failed to delete purchase order document", zap.String("key", po.DocumentKey), zap.Error(err))
	}
}

func (s *purchaseOrderServiceImpl) render(ctx context.Context, po *models.PurchaseOrder) ([]byte, error) {
	codes := make([]string, len(po.Items))
	for i, item := range po.Items {
		codes[i] = item.ItemCode
	}
	var images map[string]string
	if s.images != nil {
		images = s.images.Resolve(ctx, codes)
	}
	return RenderPurchaseOrderDocument(po, images, s.cfg.PlaceholderURL)
}

func (s *purchaseOrderServiceImpl) GetPurchaseOrder(ctx context.Context, id string) (*models.PurchaseOrder, *apperrors.Error) {
	oid, appErr := parseObjectID(id, "purchase order")
	if appErr != nil {
		return nil, appErr
	}
	po, err := s.pos.FindByID(ctx, oid)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("Purchase order not found")
		}
		s.logger.Error("Failed to get purchase order", zap.String("po_id", id), zap.Error(err))
		return nil, apperrors.Upstream("Failed to get purchase order", err)
	}
	return po, nil
}

func (s *purchaseOrderServiceImpl) ListPurchaseOrders(ctx context.Context, status models.PurchaseOrderStatus, page, limit int) ([]models.PurchaseOrder, int64, *apperrors.Error) {
	pos, total, err := s.pos.FindAll(ctx, status, page, limit)
	if err != nil {
		s.logger.Error("Failed to list purchase orders", zap.Error(err))
		return nil, 0, apperrors.Upstream("Failed to list purchase orders", err)
	}
	return pos, total, nil
}

// GetDocument returns a presigned link to the stored document, or the
// rendered HTML when nothing was stored.
func (s *purchaseOrderServiceImpl) GetDocument(ctx context.Context, id string) (*models.PODocumentResponse, *apperrors.Error) {
	po, appErr := s.GetPurchaseOrder(ctx, id)
	if appErr != nil {
		return nil, appErr
	}

	if po.DocumentKey != "" && s.docs != nil {
		url, err := s.docs.PresignGet(ctx, po.DocumentKey, documentLinkExpiry)
		if err == nil {
			return &models.PODocumentResponse{URL: url, ExpiresAt: time.Now().UTC().Add(documentLinkExpiry)}, nil
		}
		s.logger.Warn("Failed to presign purchase order document", zap.String("key", po.DocumentKey), zap.Error(err))
	}

	html, err := s.render(ctx, po)
	if err != nil {
		s.logger.Error("Failed to render purchase order", zap.String("po_number", po.PONumber), zap.Error(err))
		return nil, apperrors.Upstream("Failed to render purchase order", err)
	}
	return &models.PODocumentResponse{HTML: string(html)}, nil
}

// UpdateStatus advances a PO exactly one step.
func (s *purchaseOrderServiceImpl) UpdateStatus(ctx context.Context, id string, status models.PurchaseOrderStatus) (*models.PurchaseOrder, *apperrors.Error) {
	po, appErr := s.GetPurchaseOrder(ctx, id)
	if appErr != nil {
		return nil, appErr
	}
	if po.Status.Next() != status {
		return nil, apperrors.Conflict("Cannot move purchase order from " + string(po.Status) + " to " + string(status))
	}

	updated, err := s.pos.AdvanceStatus(ctx, po.ID, po.Status, status, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, apperrors.Conflict("Purchase order status changed concurrently; reload it and try again")
		case isNotFound(err):
			return nil, apperrors.NotFound("Purchase order not found")
		}
		s.logger.Error("Failed to update purchase order status", zap.String("po_id", id), zap.Error(err))
		return nil, apperrors.Upstream("Failed to update purchase order", err)
	}

	s.logger.Info("Purchase order status updated",
		zap.String("po_number", updated.PONumber),
		zap.String("from", string(po.Status)),
		zap.String("to", string(updated.Status)))
	return updated, nil
}

// DeletePurchaseOrder removes the PO and reverts its order to approved in one
// transaction, then drops the stored document.
func (s *purchaseOrderServiceImpl) DeletePurchaseOrder(ctx context.Context, id string) *apperrors.Error {
	oid, appErr := parseObjectID(id, "purchase order")
	if appErr != nil {
		return appErr
	}

	deleted, reverted, err := s.pos.DeleteAndRevertOrder(ctx, oid)
	if err != nil {
		if isNotFound(err) {
			return apperrors.NotFound("Purchase order not found")
		}
		s.logger.Error("Failed to delete purchase order", zap.String("po_id", id), zap.Error(err))
		return apperrors.Upstream("Failed to delete purchase order", err)
	}
	if !reverted {
		s.logger.Warn("Deleted purchase order left its order unchanged",
			zap.String("po_number", deleted.PONumber),
			zap.String("order_id", deleted.OrderID.Hex()))
	}

	s.discardDocument(ctx, deleted)
	recordCount(s.metrics, awspkg.MetricPurchaseOrdersDeleted, map[string]string{"Service": "wholesale-service"})
	s.logger.Info("Purchase order deleted",
		zap.String("po_number", deleted.PONumber),
		zap.String("order_number", deleted.OrderNumber))
	return nil
}
