package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"wholesale-service/cache"
	awspkg "wholesale-service/pkg/aws"
	"wholesale-service/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ImageCache is the part of cache.ImageCache the resolver uses.
type ImageCache interface {
	Get(ctx context.Context, itemCode string) (string, error)
	Set(ctx context.Context, itemCode, url string) error
}

// ImageResolver maps item codes to the first image of the matching product.
// Codes without a product or image map to "".
type ImageResolver struct {
	catalog repository.CatalogRepository
	cache   ImageCache
	metrics awspkg.MetricsRecorder
	group   singleflight.Group
	logger  *zap.Logger
}

// NewImageResolver creates a resolver. imageCache may be nil.
func NewImageResolver(catalog repository.CatalogRepository, imageCache ImageCache, metrics awspkg.MetricsRecorder, logger *zap.Logger) *ImageResolver {
	return &ImageResolver{catalog: catalog, cache: imageCache, metrics: metrics, logger: logger}
}

// Resolve never fails: lookup errors are logged and the affected codes get no
// image.
func (r *ImageResolver) Resolve(ctx context.Context, itemCodes []string) map[string]string {
	images := make(map[string]string, len(itemCodes))
	var missing []string

	for _, code := range itemCodes {
		if _, seen := images[code]; seen {
			continue
		}
		images[code] = ""

		if r.cache == nil {
			missing = append(missing, code)
			continue
		}
		url, err := r.cache.Get(ctx, code)
		switch {
		case err == nil:
			images[code] = url
			recordCount(r.metrics, awspkg.MetricCacheHits, map[string]string{"Cache": "images"})
		case errors.Is(err, cache.ErrCacheMiss):
			missing = append(missing, code)
			recordCount(r.metrics, awspkg.MetricCacheMisses, map[string]string{"Cache": "images"})
		default:
			r.logger.Warn("Image cache read failed", zap.String("item_code", code), zap.Error(err))
			missing = append(missing, code)
		}
	}
	if len(missing) == 0 {
		return images
	}

	sort.Strings(missing)
	v, err, _ := r.group.Do(strings.Join(missing, ","), func() (interface{}, error) {
		return r.load(ctx, missing)
	})
	if err != nil {
		r.logger.Warn("Failed to load product images", zap.Strings("item_codes", missing), zap.Error(err))
		return images
	}
	for code, url := range v.(map[string]string) {
		images[code] = url
	}
	return images
}

func (r *ImageResolver) load(ctx context.Context, codes []string) (map[string]string, error) {
	products, err := r.catalog.FindProductsByItemCodes(ctx, codes)
	if err != nil {
		return nil, err
	}

	loaded := make(map[string]string, len(codes))
	for _, code := range codes {
		loaded[code] = ""
	}
	for _, p := range products {
		if len(p.Images) > 0 && loaded[p.ItemCode] == "" {
			loaded[p.ItemCode] = p.Images[0]
		}
	}

	if r.cache != nil {
		for code, url := range loaded {
			if err := r.cache.Set(ctx, code, url); err != nil {
				r.logger.Warn("Image cache write failed", zap.String("item_code", code), zap.Error(err))
			}
		}
	}
	return loaded, nil
}
