// ABOUTME: Tests for the pure read projections
// ABOUTME: Covers filtering, ordering, empty-input behavior, and non-mutation

package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelops/panelctl/internal/model"
)

func TestTrialPackages(t *testing.T) {
	pkgs := []model.Package{
		{ID: 1, IsTrial: false},
		{ID: 2, IsTrial: true},
		{ID: 3, IsTrial: true},
	}

	got := TrialPackages(pkgs)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID)
	assert.Equal(t, 3, got[1].ID)

	// Input untouched.
	assert.Len(t, pkgs, 3)
	assert.Empty(t, TrialPackages(nil))
}

func TestPackagesByPeriodType(t *testing.T) {
	pkgs := []model.Package{
		{ID: 1, PeriodType: "months"},
		{ID: 2, PeriodType: "days"},
		{ID: 3, PeriodType: "months"},
	}

	got := PackagesByPeriodType(pkgs, "months")
	require.Len(t, got, 2)
	assert.Equal(t, []int{got[0].ID, got[1].ID}, []int{1, 3})
	assert.Empty(t, PackagesByPeriodType(pkgs, "years"))
}

func TestBouquetsByType(t *testing.T) {
	bouquets := []model.Bouquet{
		{ID: 1, Type: "live"},
		{ID: 2, Type: "vod"},
		{ID: 3, Type: "live"},
	}

	got := BouquetsByType(bouquets, "live")
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 3, got[1].ID)

	assert.NotNil(t, BouquetsByType(nil, "live"))
	assert.Empty(t, BouquetsByType(nil, "live"))
}

func TestSelectedBouquetsByType_EmptyStates(t *testing.T) {
	b := &backend{}
	pkgs := NewPackages(newTestClient(t, b))

	// Nothing selected: empty slice, not an error.
	assert.Empty(t, SelectedBouquetsByType(pkgs, "live"))

	// Selected but bouquets not loaded yet: still empty.
	require.NoError(t, pkgs.FetchByID(context.Background(), "tok", 1))
	assert.Empty(t, SelectedBouquetsByType(pkgs, "live"))

	// Loaded: the projection filters and preserves order.
	require.NoError(t, pkgs.FetchBouquets(context.Background(), "tok", 1, "live"))
	got := SelectedBouquetsByType(pkgs, "live")
	require.Len(t, got, 1)
	assert.Equal(t, "Sports", got[0].Name)
	assert.Empty(t, SelectedBouquetsByType(pkgs, "vod"))
}

// The projections must never go stale relative to the store: refetching and
// projecting again reflects the new state with no caching in between.
func TestProjections_RecomputedOnRead(t *testing.T) {
	b := &backend{}
	pkgs := NewPackages(newTestClient(t, b))
	require.NoError(t, pkgs.FetchAll(context.Background(), "tok"))
	require.Len(t, TrialPackages(pkgs.Items()), 1)

	pkgs.ClearSelected()
	require.NoError(t, pkgs.FetchAll(context.Background(), "tok"))
	assert.Len(t, TrialPackages(pkgs.Items()), 1)
}
