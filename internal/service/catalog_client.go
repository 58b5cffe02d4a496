package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pickpack-service/internal/models"
	"pickpack-service/internal/redisclient"
	"pickpack-service/internal/store"
	"pickpack-service/internal/util"
)

const productCacheTTL = 10 * time.Minute

// CatalogClient serves product display metadata for the picker UI with a
// Redis cache in front of Postgres. Allocation never depends on this data.
type CatalogClient struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCatalogClient creates a new catalog client
func NewCatalogClient(store *store.Store, redis *redisclient.Client) *CatalogClient {
	return &CatalogClient{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// GetProduct retrieves product metadata, cache-aside
func (cc *CatalogClient) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogClient.GetProduct")
	defer span.End()

	cached, err := cc.redis.GetCachedProduct(ctx, productID)
	if err != nil {
		cc.logger.Warn("Product cache lookup failed, falling back to DB",
			zap.Int64("product_id", productID),
			zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	product, err := cc.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := cc.redis.CacheProduct(ctx, product, productCacheTTL); err != nil {
		cc.logger.Warn("Failed to cache product",
			zap.Int64("product_id", productID),
			zap.Error(err))
	}

	return product, nil
}

// GetProducts retrieves metadata for several products, skipping any that
// cannot be resolved so a missing catalog entry never blocks picking.
func (cc *CatalogClient) GetProducts(ctx context.Context, ids []int64) (map[int64]*models.Product, error) {
	out := make(map[int64]*models.Product, len(ids))
	missing := make([]int64, 0, len(ids))

	for _, id := range ids {
		cached, err := cc.redis.GetCachedProduct(ctx, id)
		if err == nil && cached != nil {
			out[id] = cached
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return out, nil
	}

	products, err := cc.store.GetProductsByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}

	for i := range products {
		p := &products[i]
		out[p.ID] = p
		if err := cc.redis.CacheProduct(ctx, p, productCacheTTL); err != nil {
			cc.logger.Warn("Failed to cache product",
				zap.Int64("product_id", p.ID),
				zap.Error(err))
		}
	}

	return out, nil
}
