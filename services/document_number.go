package services

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "wholesale-service/common/errors"
	"wholesale-service/models"
	"wholesale-service/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	orderNumberPrefix = "EBA"
	poNumberPrefix    = "PO"
	numberAttempts    = 3
)

// newDocumentNumber returns "<prefix>-<YYMMDD>-<4 uppercase hex chars>".
func newDocumentNumber(prefix string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return prefix + "-" + now.Format("060102") + "-" + suffix
}

// findOrder accepts either an ObjectID hex string or an order number.
func findOrder(ctx context.Context, repo repository.OrderRepository, ref string) (*models.Order, error) {
	if oid, err := primitive.ObjectIDFromHex(ref); err == nil {
		return repo.FindByID(ctx, oid)
	}
	return repo.FindByNumber(ctx, ref)
}

func parseObjectID(id, what string) (primitive.ObjectID, *apperrors.Error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validationf("Invalid %s id", what)
	}
	return oid, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
