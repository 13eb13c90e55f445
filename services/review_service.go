package services

import (
	"context"
	"errors"
	"time"

	apperrors "wholesale-service/common/errors"
	"wholesale-service/common/logger"
	"wholesale-service/models"
	awspkg "wholesale-service/pkg/aws"
	"wholesale-service/repository"

	"go.uber.org/zap"
)

var reviewOutcomes = map[models.ReviewAction]struct {
	status  models.OrderStatus
	message string
}{
	models.ReviewActionApprove:        {models.OrderStatusApproved, "Order approved successfully"},
	models.ReviewActionRequestChanges: {models.OrderStatusChangesRequested, "Changes requested for order"},
	models.ReviewActionReject:         {models.OrderStatusRejected, "Order rejected"},
}

// ReviewService records admin review decisions on orders.
type ReviewService interface {
	ReviewOrder(ctx context.Context, ref string, req *models.ReviewRequest, reviewer string) (*models.Order, string, *apperrors.Error)
}

type reviewServiceImpl struct {
	orders  repository.OrderRepository
	events  eventPublisher
	metrics awspkg.MetricsRecorder
	gstRate float64
	logger  *zap.Logger
}

func NewReviewService(
	orders repository.OrderRepository,
	snsClient awspkg.SNSPublisher,
	snsTopicArn string,
	metrics awspkg.MetricsRecorder,
	gstRate float64,
	logger *zap.Logger,
) ReviewService {
	return &reviewServiceImpl{
		orders:  orders,
		events:  eventPublisher{sns: snsClient, topicArn: snsTopicArn, logger: logger},
		metrics: metrics,
		gstRate: gstRate,
		logger:  logger,
	}
}

// ReviewOrder validates the submitted size breakdown, recalculates the
// affected items and writes status, items and a new history entry in one
// version-guarded update. Nothing is written when any check fails.
func (s *reviewServiceImpl) ReviewOrder(ctx context.Context, ref string, req *models.ReviewRequest, reviewer string) (*models.Order, string, *apperrors.Error) {
	outcome, ok := reviewOutcomes[req.Action]
	if !ok {
		return nil, "", apperrors.Validationf("Unknown review action %q", req.Action)
	}
	if req.NewStatus != "" && req.NewStatus != outcome.status {
		return nil, "", apperrors.Validationf("Status %q does not match action %q", req.NewStatus, req.Action)
	}

	order, err := findOrder(ctx, s.orders, ref)
	if err != nil {
		if isNotFound(err) {
			return nil, "", apperrors.NotFound("Order not found")
		}
		s.logger.Error("Failed to load order for review", zap.String("order", ref), zap.Error(err))
		return nil, "", apperrors.Upstream("Failed to review order", err)
	}

	if !order.Status.Reviewable() {
		return nil, "", apperrors.Conflict("Order in status " + string(order.Status) + " can no longer be reviewed")
	}

	if appErr := ValidateSizeQuantities(order.Items, req.SizeQuantities); appErr != nil {
		recordCount(s.metrics, awspkg.MetricReviewValidationFailed, map[string]string{"Service": "wholesale-service"})
		s.logger.Info("Review rejected by size validation",
			logger.RequestIDField(ctx),
			zap.String("order_number", order.OrderNumber),
			zap.String("reason", appErr.Message))
		return nil, "", appErr
	}

	now := time.Now().UTC()
	change := models.ReviewChange{
		Status:         outcome.status,
		Notes:          order.Notes,
		Items:          order.Items,
		Summary:        order.Summary,
		SizeQuantities: order.SizeQuantities,
		ReviewedAt:     now,
	}
	if len(req.SizeQuantities) > 0 {
		change.Items = RecalculateLineItems(order.Items, req.SizeQuantities)
		change.Summary = SummarizeOrder(change.Items, order.Summary.IsGSTApplicable, s.gstRate)
		change.SizeQuantities = mergeSizeQuantities(order.SizeQuantities, req.SizeQuantities)
	}

	entryNotes := ""
	if req.Notes != nil {
		entryNotes = *req.Notes
		if entryNotes != "" {
			change.Notes = entryNotes
		}
	}
	change.Entry = models.ReviewHistoryEntry{
		Action:         req.Action,
		Notes:          entryNotes,
		Timestamp:      now,
		PreviousStatus: order.Status,
		NewStatus:      outcome.status,
		SizeQuantities: req.SizeQuantities,
		ReviewedBy:     reviewer,
	}

	updated, err := s.orders.ApplyReview(ctx, order.ID, order.Version, change)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, "", apperrors.Conflict("Order was changed by another review; reload it and try again")
		case isNotFound(err):
			return nil, "", apperrors.NotFound("Order not found")
		}
		s.logger.Error("Failed to persist order review",
			logger.RequestIDField(ctx),
			zap.String("order_id", order.ID.Hex()),
			zap.String("action", string(req.Action)),
			zap.Error(err))
		return nil, "", apperrors.Upstream("Failed to review order", err)
	}

	s.logger.Info("Order reviewed",
		zap.String("order_number", updated.OrderNumber),
		zap.String("action", string(req.Action)),
		zap.String("previous_status", string(order.Status)),
		zap.String("new_status", string(updated.Status)),
		zap.String("reviewed_by", reviewer))

	recordCount(s.metrics, awspkg.MetricOrdersReviewed, map[string]string{"Service": "wholesale-service", "Action": string(req.Action)})
	s.events.publish(ctx, models.EventOrderReviewed, models.OrderEvent{
		EventType:      models.EventOrderReviewed,
		OrderID:        updated.ID.Hex(),
		OrderNumber:    updated.OrderNumber,
		Status:         updated.Status,
		PreviousStatus: order.Status,
		Action:         req.Action,
		RetailerPhone:  updated.Retailer.Phone,
		TotalSets:      updated.Summary.TotalSets,
		AmountAfterTax: updated.Summary.AmountAfterTax,
		ReviewedBy:     reviewer,
		Timestamp:      now,
	})

	return updated, outcome.message, nil
}

// mergeSizeQuantities overlays submitted breakdowns on the stored ones so
// items left out of a review keep their previous breakdown.
func mergeSizeQuantities(stored, submitted models.SizeQuantities) models.SizeQuantities {
	out := make(models.SizeQuantities, len(stored)+len(submitted))
	for k, v := range stored {
		out[k] = v.Clone()
	}
	for k, v := range submitted {
		out[k] = v.Clone()
	}
	return out
}
