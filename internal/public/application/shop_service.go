package application

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	disc "github.com/BOA-with-elephant/Header-Frontend-sub001/internal/discovery/domain"
	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/public/domain"
)

// shopQueryService is the concrete implementation of ShopQueryService.
type shopQueryService struct {
	repo ShopRepository
}

// NewShopQueryService creates a new shop query service.
func NewShopQueryService(repo ShopRepository) ShopQueryService {
	return &shopQueryService{repo: repo}
}

// List returns one page of shops. With an origin the shops are ordered
// nearest first, otherwise newest first. A page past the end is empty.
func (s *shopQueryService) List(ctx context.Context, filter ShopFilter, paging Paging) ([]domain.Shop, error) {
	filter.Keyword = NormalizeKeyword(filter.Keyword)
	filter.CategoryCode = strings.TrimSpace(filter.CategoryCode)

	shops, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	sortShops(shops, filter.Origin)

	paging = normalizePaging(paging)
	start := paging.Page * paging.Limit
	if start >= len(shops) {
		return []domain.Shop{}, nil
	}
	end := min(start+paging.Limit, len(shops))
	return shops[start:end], nil
}

func (s *shopQueryService) Detail(ctx context.Context, code string) (*domain.Shop, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrShopNotFound
	}
	return s.repo.FindByCode(ctx, code)
}

// NormalizeKeyword trims the keyword and composes it to NFC so that Hangul
// typed as separate jamo matches stored names.
func NormalizeKeyword(keyword string) string {
	return norm.NFC.String(strings.TrimSpace(keyword))
}

func normalizePaging(p Paging) Paging {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func sortShops(shops []domain.Shop, origin *Point) {
	if origin == nil {
		sort.SliceStable(shops, func(i, j int) bool {
			return shops[i].CreatedAt.After(shops[j].CreatedAt)
		})
		return
	}
	from := disc.Coordinates{Latitude: origin.Latitude, Longitude: origin.Longitude}
	distances := make(map[string]float64, len(shops))
	for _, shop := range shops {
		distances[shop.Code] = disc.DistanceKm(from, disc.Coordinates{Latitude: shop.Latitude, Longitude: shop.Longitude})
	}
	sort.SliceStable(shops, func(i, j int) bool {
		return distances[shops[i].Code] < distances[shops[j].Code]
	})
}

// categoryQueryService is the concrete implementation of CategoryQueryService.
type categoryQueryService struct {
	repo CategoryRepository
}

// NewCategoryQueryService creates a new category query service.
func NewCategoryQueryService(repo CategoryRepository) CategoryQueryService {
	return &categoryQueryService{repo: repo}
}

func (s *categoryQueryService) List(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].SortOrder < categories[j].SortOrder
	})
	return categories, nil
}
