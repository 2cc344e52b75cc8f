package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/stockroom-service/internal/apperror"
	"github.com/fekuna/stockroom-service/internal/location"
	"github.com/fekuna/stockroom-service/internal/location/dto"
	"github.com/fekuna/stockroom-service/internal/model"
	"github.com/fekuna/stockroom-service/internal/views"
	"github.com/fekuna/stockroom-service/pkg/database"
	"github.com/fekuna/stockroom-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type locationUseCase struct {
	repo   location.Repository
	views  views.Invalidator
	logger logger.ZapLogger
}

func NewLocationUseCase(repo location.Repository, inv views.Invalidator, log logger.ZapLogger) location.UseCase {
	if inv == nil {
		inv = views.Noop{}
	}
	return &locationUseCase{
		repo:   repo,
		views:  inv,
		logger: log,
	}
}

// Slugify lowercases s and keeps only [a-z0-9-]. Runs of spaces, underscores
// and dashes become a single dash.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case r == '-' || r == '_' || r == ' ':
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (uc *locationUseCase) CreateLocation(ctx context.Context, input *dto.CreateLocationInput) (*model.Location, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("Name is required")
	}
	raw := input.Slug
	if strings.TrimSpace(raw) == "" {
		raw = name
	}
	slug := Slugify(raw)
	if slug == "" {
		return nil, apperror.Validation("Slug must contain letters or digits")
	}

	existing, err := uc.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperror.Internal("Failed to create location", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("Slug already exists")
	}

	loc := &model.Location{
		ID:        uuid.New().String(),
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.repo.Create(ctx, loc); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("Slug already exists")
		}
		return nil, apperror.Internal("Failed to create location", err)
	}

	uc.logger.Info("location created", zap.String("location_id", loc.ID), zap.String("slug", slug))
	uc.views.Invalidate(ctx, views.Orders)
	return loc, nil
}

func (uc *locationUseCase) GetLocationBySlug(ctx context.Context, slug string) (*model.Location, error) {
	loc, err := uc.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch location", err)
	}
	if loc == nil {
		return nil, apperror.NotFound("Location not found")
	}
	return loc, nil
}

func (uc *locationUseCase) ListLocations(ctx context.Context) ([]model.Location, error) {
	locations, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch locations", err)
	}
	return locations, nil
}
