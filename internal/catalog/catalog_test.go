// ABOUTME: Tests for the catalog resource collections
// ABOUTME: Covers fetch lifecycle, bouquet merge semantics, per-op status, and the last-write-wins race

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelops/panelctl/internal/api"
	"github.com/panelops/panelctl/internal/model"
)

type backend struct {
	mu       sync.Mutex
	requests []string
	// blockers holds channels that gate specific paths until released.
	blockers map[string]chan struct{}
}

func (b *backend) block(path string) chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.blockers == nil {
		b.blockers = make(map[string]chan struct{})
	}
	ch := make(chan struct{})
	b.blockers[path] = ch
	return ch
}

func (b *backend) handler(t *testing.T) http.Handler {
	t.Helper()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.URL.RequestURI())
		gate := b.blockers[r.URL.Path]
		b.mu.Unlock()
		if gate != nil {
			<-gate
		}

		switch r.URL.Path {
		case "/packages":
			writeJSON(w, model.List[model.Package]{Data: []model.Package{
				{ID: 1, Name: "Basic", IsTrial: false, PeriodType: "months", Credit: 10},
				{ID: 2, Name: "Trial", IsTrial: true, PeriodType: "days"},
				{ID: 3, Name: "Premium", IsTrial: false, PeriodType: "months", Credit: 25},
			}})
		case "/packages/1":
			writeJSON(w, model.Package{ID: 1, Name: "Basic", PeriodType: "months", Credit: 10})
		case "/packages/2":
			writeJSON(w, model.Package{ID: 2, Name: "Trial", IsTrial: true, PeriodType: "days"})
		case "/packages/7":
			writeJSON(w, model.Package{ID: 7, Name: "X", MaxConnections: 3})
		case "/packages/1/bouquets", "/packages/7/bouquets":
			typ := r.URL.Query().Get("filters[type]")
			writeJSON(w, model.List[model.Bouquet]{Data: []model.Bouquet{
				{ID: 1, ParentID: 1, Name: "Sports", Type: typ},
			}})
		case "/packages/404":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "package not found"}`))
		case "/templates":
			writeJSON(w, model.List[model.Template]{Data: []model.Template{
				{ID: 11, Name: "Default", IsGlobal: true, PackageID: 1},
			}})
		case "/templates/11":
			writeJSON(w, model.Template{ID: 11, Name: "Default", IsGlobal: true, PackageID: 1})
		case "/templates/11/bouquets":
			writeJSON(w, model.List[model.Bouquet]{Data: []model.Bouquet{
				{ID: 5, ParentID: 11, Name: "News", Type: r.URL.Query().Get("filters[type]")},
			}})
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "no route"}`))
		}
	})
}

func newTestClient(t *testing.T, b *backend) *api.Client {
	t.Helper()
	srv := httptest.NewServer(b.handler(t))
	t.Cleanup(srv.Close)
	return api.New(srv.URL, "42", "fp-secret", 5*time.Second)
}

func TestNewCollection_StartsIdle(t *testing.T) {
	b := &backend{}
	pkgs := NewPackages(newTestClient(t, b))

	// A fresh store is empty and Idle before any fetch is dispatched.
	snap := pkgs.Snapshot()
	assert.Equal(t, "idle", string(snap.List.State))
	assert.Equal(t, "idle", string(snap.Get.State))
	assert.Equal(t, "idle", string(snap.Bouquets.State))
	assert.Empty(t, snap.Items)
	assert.Nil(t, snap.Selected)

	tmpls := NewTemplates(newTestClient(t, b))
	assert.Equal(t, "idle", string(tmpls.Snapshot().List.State))
}

func TestFetchAll_ReplacesItems(t *testing.T) {
	b := &backend{}
	pkgs := NewPackages(newTestClient(t, b))

	require.NoError(t, pkgs.FetchAll(context.Background(), "tok"))

	items := pkgs.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "Basic", items[0].Name)
	assert.Equal(t, "ready", string(pkgs.Snapshot().List.State))

	// Packages always override the page size; templates use the default.
	assert.Contains(t, b.requests, "/packages?per_page=100")

	tmpls := NewTemplates(newTestClient(t, b))
	require.NoError(t, tmpls.FetchAll(context.Background(), "tok"))
	assert.Contains(t, b.requests, "/templates")
}

func TestFetchByID_ReplacesSelected(t *testing.T) {
	b := &backend{}
	pkgs := NewPackages(newTestClient(t, b))

	require.NoError(t, pkgs.FetchByID(context.Background(), "tok", 1))

	sel := pkgs.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, 1, sel.ID)
	assert.Equal(t, "Basic", sel.Name)

	// Selection never requires the list to be loaded.
	assert.Empty(t, pkgs.Items())
}

func TestFetchBouquets_MergesIntoSelected(t *testing.T) {
	b := &backend{}
	pkgs := NewPackages(newTestClient(t, b))

	require.NoError(t, pkgs.FetchByID(context.Background(), "tok", 7))
	require.NoError(t, pkgs.FetchBouquets(context.Background(), "tok", 7, "live"))

	sel := pkgs.Selected()
	require.NotNil(t, sel)
	// All other fields preserved, bouquets replaced.
	assert.Equal(t, 7, sel.ID)
	assert.Equal(t, "X", sel.Name)
	assert.Equal(t, 3, sel.MaxConnections)
	require.Len(t, sel.Bouquets, 1)
	assert.Equal(t, "live", sel.Bouquets[0].Type)
}

func TestFetchBouquets_PlaceholderWhenNothingSelected(t *testing.T) {
	b := &backend{}
	pkgs := NewPackages(newTestClient(t, b))

	require.NoError(t, pkgs.FetchBouquets(context.Background(), "tok", 1, "live"))

	// Bouquets preceding their parent materialize a placeholder entity
	// holding only the bouquet slice.
	sel := pkgs.Selected()
	require.NotNil(t, sel)
	assert.Zero(t, sel.ID)
	assert.Empty(t, sel.Name)
	require.Len(t, sel.Bouquets, 1)
	assert.Equal(t, "Sports", sel.Bouquets[0].Name)
}

func TestClearSelected(t *testing.T) {
	b := &backend{}
	pkgs := NewPackages(newTestClient(t, b))
	require.NoError(t, pkgs.FetchByID(context.Background(), "tok", 1))
	require.NotNil(t, pkgs.Selected())

	pkgs.ClearSelected()
	assert.Nil(t, pkgs.Selected())
	assert.Equal(t, "idle", string(pkgs.Snapshot().Get.State))
}

func TestPerOperationStatus(t *testing.T) {
	b := &backend{}
	pkgs := NewPackages(newTestClient(t, b))

	require.NoError(t, pkgs.FetchAll(context.Background(), "tok"))
	err := pkgs.FetchByID(context.Background(), "tok", 404)
	require.Error(t, err)

	snap := pkgs.Snapshot()
	// The failed detail fetch does not disturb the list status.
	assert.Equal(t, "ready", string(snap.List.State))
	assert.Equal(t, "error", string(snap.Get.State))
	assert.Equal(t, "package not found", snap.Get.Message)
	assert.Equal(t, "idle", string(snap.Bouquets.State))

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestLastWriteWins(t *testing.T) {
	b := &backend{}
	pkgs := NewPackages(newTestClient(t, b))

	// Response for id 1 is held back until the id 2 fetch has fully
	// completed, so the later-resolving response (1) wins.
	gate := b.block("/packages/1")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, pkgs.FetchByID(context.Background(), "tok", 1))
	}()

	require.NoError(t, pkgs.FetchByID(context.Background(), "tok", 2))
	require.Equal(t, 2, pkgs.Selected().ID)

	close(gate)
	wg.Wait()

	sel := pkgs.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, 1, sel.ID, "the later-resolving response overwrites the earlier one")
}

func TestSnapshot_IsACopy(t *testing.T) {
	b := &backend{}
	pkgs := NewPackages(newTestClient(t, b))
	require.NoError(t, pkgs.FetchAll(context.Background(), "tok"))
	require.NoError(t, pkgs.FetchByID(context.Background(), "tok", 1))

	snap := pkgs.Snapshot()
	snap.Items[0].Name = "mutated"
	snap.Selected.Name = "mutated"

	assert.Equal(t, "Basic", pkgs.Items()[0].Name)
	assert.Equal(t, "Basic", pkgs.Selected().Name)
}

func TestSubscribe_NotifiedPerTransition(t *testing.T) {
	b := &backend{}
	pkgs := NewPackages(newTestClient(t, b))

	var mu sync.Mutex
	calls := 0
	unsubscribe := pkgs.Subscribe(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	require.NoError(t, pkgs.FetchAll(context.Background(), "tok"))
	mu.Lock()
	got := calls
	mu.Unlock()
	assert.Equal(t, 2, got, "loading and ready transitions")

	unsubscribe()
	require.NoError(t, pkgs.FetchAll(context.Background(), "tok"))
	mu.Lock()
	assert.Equal(t, got, calls)
	mu.Unlock()
}

func TestTemplates_BouquetMerge(t *testing.T) {
	b := &backend{}
	tmpls := NewTemplates(newTestClient(t, b))

	require.NoError(t, tmpls.FetchByID(context.Background(), "tok", 11))
	require.NoError(t, tmpls.FetchBouquets(context.Background(), "tok", 11, "live"))

	sel := tmpls.Selected()
	require.NotNil(t, sel)
	assert.True(t, sel.IsGlobal)
	require.Len(t, sel.Bouquets, 1)
	assert.Equal(t, "News", sel.Bouquets[0].Name)

	// Server-side filter parameter must be forwarded.
	found := false
	for _, req := range b.requests {
		if req == fmt.Sprintf("/templates/11/bouquets?%s", "filters%5Btype%5D=live") {
			found = true
		}
	}
	assert.True(t, found, "filters[type] query not sent, saw %v", b.requests)
}
