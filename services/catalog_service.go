package services

import (
	"context"
	"strings"

	apperrors "wholesale-service/common/errors"
	"wholesale-service/models"
	"wholesale-service/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CatalogService answers whether a retailer may order from a catalog.
type CatalogService interface {
	CheckAccess(ctx context.Context, catalogID, phone string) (*models.CatalogAccessResponse, *apperrors.Error)
}

type catalogServiceImpl struct {
	repo   repository.CatalogRepository
	logger *zap.Logger
}

func NewCatalogService(repo repository.CatalogRepository, logger *zap.Logger) CatalogService {
	return &catalogServiceImpl{repo: repo, logger: logger}
}

// CheckAccess reports the retailer's access and discount. Unknown catalogs or
// retailers are 404; a known retailer outside the allowed tiers gets
// allowed=false.
func (s *catalogServiceImpl) CheckAccess(ctx context.Context, catalogID, phone string) (*models.CatalogAccessResponse, *apperrors.Error) {
	oid, appErr := parseObjectID(catalogID, "catalog")
	if appErr != nil {
		return nil, appErr
	}

	catalog, err := s.repo.FindCatalog(ctx, oid)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("Catalog not found")
		}
		s.logger.Error("Failed to load catalog", zap.String("catalog_id", catalogID), zap.Error(err))
		return nil, apperrors.Upstream("Failed to check catalog access", err)
	}

	retailer, err := s.repo.FindRetailerByPhone(ctx, normalizePhone(phone))
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("Retailer not found")
		}
		s.logger.Error("Failed to load retailer", zap.Error(err))
		return nil, apperrors.Upstream("Failed to check catalog access", err)
	}

	resp := &models.CatalogAccessResponse{
		Allowed:  catalog.IsActive && retailer.IsActive && catalog.Admits(retailer.Priority),
		Catalog:  models.CatalogSummary{ID: catalog.ID.Hex(), Name: catalog.Name},
		Retailer: models.RetailerBrief{BusinessName: retailer.BusinessName, Priority: retailer.Priority},
	}
	if resp.Allowed {
		resp.DiscountPercent = discountFor(ctx, s.repo, retailer.Priority, s.logger)
	}
	return resp, nil
}

// orderAccess is what order submission needs after the access check passed.
type orderAccess struct {
	catalog         *models.Catalog
	retailer        *models.Retailer
	discountPercent float64
}

// checkOrderAccess applies the same rules as CheckAccess but reports every
// refusal as a validation failure for the submitting retailer.
func checkOrderAccess(ctx context.Context, repo repository.CatalogRepository, catalogID primitive.ObjectID, phone string, logger *zap.Logger) (*orderAccess, *apperrors.Error) {
	retailer, err := repo.FindRetailerByPhone(ctx, normalizePhone(phone))
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.Validation("Retailer not found for this phone number")
		}
		return nil, apperrors.Upstream("Failed to submit order", err)
	}
	if !retailer.IsActive {
		return nil, apperrors.Validation("Retailer account is not active")
	}

	catalog, err := repo.FindCatalog(ctx, catalogID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.Validation("Catalog not found")
		}
		return nil, apperrors.Upstream("Failed to submit order", err)
	}
	if !catalog.IsActive {
		return nil, apperrors.Validation("Catalog is not active")
	}
	if !catalog.Admits(retailer.Priority) {
		return nil, apperrors.Validation("Retailer does not have access to this catalog")
	}

	return &orderAccess{
		catalog:         catalog,
		retailer:        retailer,
		discountPercent: discountFor(ctx, repo, retailer.Priority, logger),
	}, nil
}

// discountFor returns the tier discount, or 0 when the tier is unknown.
func discountFor(ctx context.Context, repo repository.CatalogRepository, priority string, logger *zap.Logger) float64 {
	if priority == "" {
		return 0
	}
	p, err := repo.FindPriority(ctx, priority)
	if err != nil {
		if !isNotFound(err) {
			logger.Warn("Failed to load priority discount", zap.String("priority", priority), zap.Error(err))
		}
		return 0
	}
	if p.DiscountPercent < 0 || p.DiscountPercent > 100 {
		logger.Warn("Ignoring out-of-range discount", zap.String("priority", priority), zap.Float64("discount", p.DiscountPercent))
		return 0
	}
	return p.DiscountPercent
}

func normalizePhone(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}
