package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateShopsIsReproducible(t *testing.T) {
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	a := generateShops(rand.New(rand.NewSource(42)), 20, now)
	b := generateShops(rand.New(rand.NewSource(42)), 20, now)

	require.Equal(t, a, b)
	require.Len(t, a, 20)

	codes := make(map[string]struct{}, len(a))
	for _, shop := range a {
		_, dup := codes[shop.Code]
		require.False(t, dup, shop.Code)
		codes[shop.Code] = struct{}{}

		require.NotEmpty(t, shop.Menus, shop.Code)
		require.False(t, shop.CreatedAt.After(now))
		require.InDelta(t, 36.5, shop.Latitude, 2)
	}
}

func TestGenerateCategoriesSortOrder(t *testing.T) {
	categories := generateCategories()
	require.Len(t, categories, len(categorySeeds))
	for i, c := range categories {
		require.Equal(t, i+1, c.SortOrder)
	}
}
