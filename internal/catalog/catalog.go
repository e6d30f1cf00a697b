// ABOUTME: Client-side resource collections mirroring the catalog API
// ABOUTME: One Collection per entity kind with per-operation fetch status

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"github.com/panelops/panelctl/internal/api"
	"github.com/panelops/panelctl/internal/model"
	"github.com/panelops/panelctl/internal/status"
)

// Collection mirrors one server entity collection (packages or templates)
// for the lifetime of the process. Items and the selected entity are written
// last-write-wins: whichever response resolves last overwrites state,
// regardless of issue order. Status is tracked per operation kind, so
// concurrent fetches of different kinds cannot stomp each other's
// loading/error flags.
type Collection[T any] struct {
	kind     string
	pageSize int
	client   *api.Client
	attach   func(*T, []model.Bouquet)
	bouquets func(*T) []model.Bouquet
	logger   *slog.Logger

	mu       sync.RWMutex
	items    []T
	selected *T
	list     status.Op
	get      status.Op
	sub      status.Op

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// Snapshot is a point-in-time copy of a collection's state for rendering.
type Snapshot[T any] struct {
	Items    []T
	Selected *T
	List     status.Op
	Get      status.Op
	Bouquets status.Op
}

func newCollection[T any](kind string, pageSize int, client *api.Client,
	attach func(*T, []model.Bouquet), bouquets func(*T) []model.Bouquet) *Collection[T] {
	return &Collection[T]{
		kind:     kind,
		pageSize: pageSize,
		client:   client,
		attach:   attach,
		bouquets: bouquets,
		logger:   slog.Default().With("component", "catalog", "kind", kind),
		list:     status.NewOp(),
		get:      status.NewOp(),
		sub:      status.NewOp(),
		subs:     make(map[int]func()),
	}
}

// NewPackages creates the package collection. The list fetch overrides the
// server page size to 100, as the panel UI always has.
func NewPackages(client *api.Client) *Collection[model.Package] {
	return newCollection("packages", 100, client,
		func(p *model.Package, b []model.Bouquet) { p.Bouquets = b },
		func(p *model.Package) []model.Bouquet { return p.Bouquets })
}

// NewTemplates creates the template collection. Templates list at the server
// default page size.
func NewTemplates(client *api.Client) *Collection[model.Template] {
	return newCollection("templates", 0, client,
		func(t *model.Template, b []model.Bouquet) { t.Bouquets = b },
		func(t *model.Template) []model.Bouquet { return t.Bouquets })
}

// FetchAll replaces the item list wholesale from the list endpoint.
func (c *Collection[T]) FetchAll(ctx context.Context, token string) error {
	c.start(&c.list)

	q := url.Values{}
	if c.pageSize > 0 {
		q.Set("per_page", strconv.Itoa(c.pageSize))
	}

	var env model.List[T]
	if err := c.client.Get(ctx, "/"+c.kind, q, token, &env); err != nil {
		c.fail(&c.list, err)
		return err
	}

	c.mu.Lock()
	c.items = env.Data
	c.list.Succeed()
	c.mu.Unlock()
	c.notify()
	return nil
}

// FetchByID replaces the selected entity wholesale. Selection is independent
// of the list: selecting by id does not require the list to be loaded.
func (c *Collection[T]) FetchByID(ctx context.Context, token string, id int) error {
	c.start(&c.get)

	var entity T
	path := fmt.Sprintf("/%s/%d", c.kind, id)
	if err := c.client.Get(ctx, path, nil, token, &entity); err != nil {
		c.fail(&c.get, err)
		return err
	}

	c.mu.Lock()
	c.selected = &entity
	c.get.Succeed()
	c.mu.Unlock()
	c.notify()
	return nil
}

// FetchBouquets loads the sub-collection filtered by type server-side and
// merges it into the selected entity: its bouquet slice is replaced, all
// other fields kept. With nothing selected, a placeholder entity holding
// only the bouquets is materialized; bouquets arriving before their parent
// is an accepted state, not an error.
func (c *Collection[T]) FetchBouquets(ctx context.Context, token string, id int, bouquetType string) error {
	c.start(&c.sub)

	q := url.Values{}
	q.Set("filters[type]", bouquetType)

	var env model.List[model.Bouquet]
	path := fmt.Sprintf("/%s/%d/bouquets", c.kind, id)
	if err := c.client.Get(ctx, path, q, token, &env); err != nil {
		c.fail(&c.sub, err)
		return err
	}

	c.mu.Lock()
	if c.selected == nil {
		var placeholder T
		c.attach(&placeholder, env.Data)
		c.selected = &placeholder
	} else {
		c.attach(c.selected, env.Data)
	}
	c.sub.Succeed()
	c.mu.Unlock()
	c.notify()
	return nil
}

// ClearSelected resets the selection. Items are untouched; the client never
// deletes entities, it only mirrors the server.
func (c *Collection[T]) ClearSelected() {
	c.mu.Lock()
	c.selected = nil
	c.get.Reset()
	c.sub.Reset()
	c.mu.Unlock()
	c.notify()
}

// Snapshot returns a copy of the current state. The item slice and selected
// entity are copied so renderers cannot mutate the store.
func (c *Collection[T]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot[T]{
		Items:    make([]T, len(c.items)),
		List:     c.list,
		Get:      c.get,
		Bouquets: c.sub,
	}
	copy(snap.Items, c.items)
	if c.selected != nil {
		sel := *c.selected
		snap.Selected = &sel
	}
	return snap
}

// Items returns a copy of the item list in server order.
func (c *Collection[T]) Items() []T {
	return c.Snapshot().Items
}

// Selected returns a copy of the selected entity, or nil.
func (c *Collection[T]) Selected() *T {
	return c.Snapshot().Selected
}

// SelectedBouquets returns the selected entity's bouquet slice, or nil when
// nothing is selected or the sub-fetch has not completed.
func (c *Collection[T]) SelectedBouquets() []model.Bouquet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selected == nil {
		return nil
	}
	return c.bouquets(c.selected)
}

// Subscribe registers fn to run after every state transition and returns an
// unsubscribe func. A fetch completing after unsubscribe still writes to the
// collection; the store outlives any one view.
func (c *Collection[T]) Subscribe(fn func()) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Collection[T]) start(op *status.Op) {
	c.mu.Lock()
	op.Start()
	c.mu.Unlock()
	c.notify()
}

func (c *Collection[T]) fail(op *status.Op, err error) {
	c.logger.Debug("fetch failed", "error", err)
	c.mu.Lock()
	op.Fail(err.Error())
	c.mu.Unlock()
	c.notify()
}

func (c *Collection[T]) notify() {
	c.subMu.Lock()
	fns := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
