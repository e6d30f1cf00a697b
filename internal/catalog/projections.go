// ABOUTME: Pure read projections over collection snapshots
// ABOUTME: Recomputed on every call; never cached, never stale, never mutating

package catalog

import "github.com/panelops/panelctl/internal/model"

// TrialPackages returns the packages flagged as trials, in original order.
func TrialPackages(pkgs []model.Package) []model.Package {
	out := []model.Package{}
	for _, p := range pkgs {
		if p.IsTrial {
			out = append(out, p)
		}
	}
	return out
}

// PackagesByPeriodType returns the packages whose period type matches, in
// original order.
func PackagesByPeriodType(pkgs []model.Package, periodType string) []model.Package {
	out := []model.Package{}
	for _, p := range pkgs {
		if p.PeriodType == periodType {
			out = append(out, p)
		}
	}
	return out
}

// BouquetsByType filters a bouquet slice by type, preserving order. A nil or
// empty input yields an empty slice, not an error: an absent sub-collection
// means "not loaded yet".
func BouquetsByType(bouquets []model.Bouquet, bouquetType string) []model.Bouquet {
	out := []model.Bouquet{}
	for _, b := range bouquets {
		if b.Type == bouquetType {
			out = append(out, b)
		}
	}
	return out
}

// SelectedBouquetsByType filters the selected entity's bouquets by type.
// Returns an empty slice when nothing is selected or no bouquets are loaded.
func SelectedBouquetsByType[T any](c *Collection[T], bouquetType string) []model.Bouquet {
	return BouquetsByType(c.SelectedBouquets(), bouquetType)
}
