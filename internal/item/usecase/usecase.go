package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/stockroom-service/internal/apperror"
	"github.com/fekuna/stockroom-service/internal/item"
	"github.com/fekuna/stockroom-service/internal/item/dto"
	"github.com/fekuna/stockroom-service/internal/model"
	"github.com/fekuna/stockroom-service/internal/views"
	"github.com/fekuna/stockroom-service/pkg/database"
	"github.com/fekuna/stockroom-service/pkg/logger"
	"github.com/fekuna/stockroom-service/pkg/search"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const indexName = "items"

const indexMapping = `{
	"mappings": {
		"properties": {
			"name": { "type": "text" },
			"sku": { "type": "keyword" },
			"category": { "type": "keyword" },
			"storage_class": { "type": "keyword" }
		}
	}
}`

// Cache is satisfied by *cache.RedisClient.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// SearchIndex is satisfied by *search.Client.
type SearchIndex interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc any) error
	Search(ctx context.Context, index string, query map[string]any) (*search.SearchResult, error)
	Delete(ctx context.Context, index, id string) error
}

type Options struct {
	Cache    Cache
	CacheTTL time.Duration
	Search   SearchIndex
	Views    views.Invalidator
}

type itemUseCase struct {
	repo     item.Repository
	cache    Cache
	cacheTTL time.Duration
	es       SearchIndex
	views    views.Invalidator
	logger   logger.ZapLogger
}

func NewItemUseCase(repo item.Repository, opts Options, log logger.ZapLogger) item.UseCase {
	uc := &itemUseCase{
		repo:     repo,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		es:       opts.Search,
		views:    opts.Views,
		logger:   log,
	}
	if uc.views == nil {
		uc.views = views.Noop{}
	}
	if uc.cacheTTL <= 0 {
		uc.cacheTTL = 5 * time.Minute
	}
	return uc
}

type searchDoc struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	SKU          string             `json:"sku"`
	Category     string             `json:"category"`
	StorageClass model.StorageClass `json:"storage_class"`
}

func (uc *itemUseCase) CreateItem(ctx context.Context, input *dto.CreateItemInput) (*model.Item, error) {
	it := &model.Item{
		Name:            strings.TrimSpace(input.Name),
		SKU:             strings.TrimSpace(input.SKU),
		Category:        strings.TrimSpace(input.Category),
		Stock:           input.Stock,
		MinThreshold:    input.MinThreshold,
		QuantityPerUnit: input.QuantityPerUnit,
		UnitName:        strings.TrimSpace(input.UnitName),
		Size:            nonEmpty(input.Size),
		ImageURL:        nonEmpty(input.ImageURL),
		StorageClass:    model.StorageClass(input.StorageClass),
	}
	applyDefaults(it)
	if err := validate(it); err != nil {
		return nil, err
	}
	if it.Stock < 0 {
		return nil, apperror.Validation("Stock cannot be negative")
	}

	unique, err := uc.repo.IsSKUUnique(ctx, it.SKU, "")
	if err != nil {
		return nil, apperror.Internal("Failed to create item", err)
	}
	if !unique {
		return nil, apperror.Conflict("SKU already exists")
	}

	now := time.Now().UTC()
	it.ID = uuid.New().String()
	it.CreatedAt = now
	it.UpdatedAt = now

	if err := uc.repo.Create(ctx, it); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("SKU already exists")
		}
		return nil, apperror.Internal("Failed to create item", err)
	}

	uc.logger.Info("item created", zap.String("item_id", it.ID), zap.String("sku", it.SKU))
	// Initial stock moves the all-items total behind the history view.
	uc.views.Invalidate(ctx, views.ItemList, views.History)
	uc.syncToElastic(ctx, it)

	return it, nil
}

func (uc *itemUseCase) GetItem(ctx context.Context, id string) (*model.Item, error) {
	it, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch item", err)
	}
	if it == nil {
		return nil, apperror.NotFound("Item not found")
	}
	return it, nil
}

func (uc *itemUseCase) ListItems(ctx context.Context, filters *dto.ItemFilters) ([]model.Item, error) {
	if filters == nil {
		filters = &dto.ItemFilters{}
	}
	filters.SearchQuery = strings.TrimSpace(filters.SearchQuery)

	cacheKey := uc.cacheKey(filters)
	if uc.cache != nil && cacheKey != "" {
		var cached []model.Item
		hit, err := uc.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			uc.logger.Warn("item list cache read failed", zap.Error(err))
		}
		if hit {
			return cached, nil
		}
	}

	var items []model.Item
	if filters.SearchQuery != "" && uc.es != nil {
		found, err := uc.searchElastic(ctx, filters)
		if err == nil {
			items = found
		} else {
			uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
		}
	}

	if items == nil {
		found, err := uc.repo.FindAll(ctx, filters)
		if err != nil {
			return nil, apperror.Internal("Failed to fetch items", err)
		}
		items = found
	}

	if uc.cache != nil && cacheKey != "" {
		if err := uc.cache.SetJSON(ctx, cacheKey, items, uc.cacheTTL); err != nil {
			uc.logger.Warn("item list cache write failed", zap.Error(err))
		}
	}

	return items, nil
}

func (uc *itemUseCase) searchElastic(ctx context.Context, filters *dto.ItemFilters) ([]model.Item, error) {
	must := []map[string]any{
		{
			"query_string": map[string]any{
				"query":  fmt.Sprintf("*%s*", escapeQueryString(filters.SearchQuery)),
				"fields": []string{"name^3", "sku", "category"},
			},
		},
	}
	if filters.Category != "" {
		must = append(must, map[string]any{
			"term": map[string]any{"category": filters.Category},
		})
	}
	q := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"must": must},
		},
		"size": 200,
	}

	res, err := uc.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	// Stock is never read from the index; rows are loaded fresh.
	return uc.repo.FindByIDs(ctx, ids)
}

func (uc *itemUseCase) ListAvailableItems(ctx context.Context) ([]model.AvailableItem, error) {
	items, err := uc.repo.FindAvailable(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch items", err)
	}
	return items, nil
}

func (uc *itemUseCase) UpdateItem(ctx context.Context, input *dto.UpdateItemInput) (*model.Item, error) {
	it, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, apperror.Internal("Failed to update item", err)
	}
	if it == nil {
		return nil, apperror.NotFound("Item not found")
	}

	sku := strings.TrimSpace(input.SKU)
	if it.SKU != sku {
		unique, err := uc.repo.IsSKUUnique(ctx, sku, it.ID)
		if err != nil {
			return nil, apperror.Internal("Failed to update item", err)
		}
		if !unique {
			return nil, apperror.Conflict("SKU already exists")
		}
	}

	it.Name = strings.TrimSpace(input.Name)
	it.SKU = sku
	it.Category = strings.TrimSpace(input.Category)
	it.MinThreshold = input.MinThreshold
	it.QuantityPerUnit = input.QuantityPerUnit
	it.UnitName = strings.TrimSpace(input.UnitName)
	it.Size = nonEmpty(input.Size)
	it.ImageURL = nonEmpty(input.ImageURL)
	it.StorageClass = model.StorageClass(input.StorageClass)
	applyDefaults(it)
	if err := validate(it); err != nil {
		return nil, err
	}

	it.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, it); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("SKU already exists")
		}
		return nil, apperror.Internal("Failed to update item", err)
	}

	// Names and categories show up in history, statistics and order lines.
	uc.views.Invalidate(ctx, views.ItemList, views.ItemPage(it.ID), views.History, views.Orders)
	uc.syncToElastic(ctx, it)

	// Stock may have moved since the first read.
	updated, err := uc.repo.FindByID(ctx, it.ID)
	if err != nil || updated == nil {
		uc.logger.Warn("failed to re-read updated item", zap.String("item_id", it.ID), zap.Error(err))
		return it, nil
	}
	return updated, nil
}

func (uc *itemUseCase) DeleteItem(ctx context.Context, id string) error {
	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return apperror.Internal("Failed to delete item", err)
	}
	if !deleted {
		return apperror.NotFound("Item not found")
	}

	uc.logger.Info("item deleted", zap.String("item_id", id))
	uc.views.Invalidate(ctx, views.ItemList, views.ItemPage(id), views.History)

	if uc.es != nil {
		if err := uc.es.Delete(ctx, indexName, id); err != nil {
			uc.logger.Error("failed to delete item from ES", zap.String("item_id", id), zap.Error(err))
		}
	}
	return nil
}

func (uc *itemUseCase) SyncSearchIndex(ctx context.Context) error {
	if uc.es == nil {
		return nil
	}
	if err := uc.es.CreateIndex(ctx, indexName, indexMapping); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	items, err := uc.repo.FindAll(ctx, &dto.ItemFilters{})
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	for i := range items {
		uc.syncToElastic(ctx, &items[i])
	}
	uc.logger.Info("search index synced", zap.Int("items", len(items)))
	return nil
}

func (uc *itemUseCase) syncToElastic(ctx context.Context, it *model.Item) {
	if uc.es == nil {
		return
	}
	doc := searchDoc{
		ID:           it.ID,
		Name:         it.Name,
		SKU:          it.SKU,
		Category:     it.Category,
		StorageClass: it.StorageClass,
	}
	if err := uc.es.Index(ctx, indexName, it.ID, doc); err != nil {
		uc.logger.Error("failed to index item", zap.String("item_id", it.ID), zap.Error(err))
	}
}

func (uc *itemUseCase) cacheKey(filters *dto.ItemFilters) string {
	data, err := json.Marshal(filters)
	if err != nil {
		return ""
	}
	return views.Key(views.ItemList, "list", fmt.Sprintf("%x", md5.Sum(data)))
}

func applyDefaults(it *model.Item) {
	if it.QuantityPerUnit == 0 {
		it.QuantityPerUnit = 1
	}
	if it.UnitName == "" {
		it.UnitName = "case"
	}
	if it.StorageClass == "" {
		it.StorageClass = model.StorageNormal
	}
}

func validate(it *model.Item) error {
	switch {
	case it.Name == "":
		return apperror.Validation("Name is required")
	case it.SKU == "":
		return apperror.Validation("SKU is required")
	case it.Category == "":
		return apperror.Validation("Category is required")
	case it.MinThreshold < 0:
		return apperror.Validation("Minimum threshold cannot be negative")
	case it.QuantityPerUnit < 1:
		return apperror.Validation("Quantity per unit must be at least 1")
	case !it.StorageClass.Valid():
		return apperror.Validation("Storage class must be normal or cold")
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

var queryStringEscaper = strings.NewReplacer(
	`\`, `\\`, `+`, `\+`, `-`, `\-`, `=`, `\=`, `&`, `\&`, `|`, `\|`, `!`, `\!`,
	`(`, `\(`, `)`, `\)`, `{`, `\{`, `}`, `\}`, `[`, `\[`, `]`, `\]`, `^`, `\^`,
	`"`, `\"`, `~`, `\~`, `*`, `\*`, `?`, `\?`, `:`, `\:`, `/`, `\/`, `<`, ``, `>`, ``,
)

func escapeQueryString(s string) string {
	return queryStringEscaper.Replace(s)
}
