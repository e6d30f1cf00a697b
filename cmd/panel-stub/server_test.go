// ABOUTME: End-to-end tests driving the real client stack against panel-stub
// ABOUTME: Covers the full login -> refresh -> browse flow and signature enforcement

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelops/panelctl/internal/api"
	"github.com/panelops/panelctl/internal/catalog"
	"github.com/panelops/panelctl/internal/config"
	"github.com/panelops/panelctl/internal/session"
	"github.com/panelops/panelctl/internal/sign"
	"github.com/panelops/panelctl/internal/store"
)

const (
	testFPID     = "stub"
	testFPSecret = "stub-secret"
)

func newStub(t *testing.T) *httptest.Server {
	t.Helper()
	s := newServer(defaultFixtures(), testFPID, testFPSecret, []byte("test-jwt-secret"))
	srv := httptest.NewServer(s.routes())
	t.Cleanup(srv.Close)
	return srv
}

func newStack(t *testing.T, srv *httptest.Server, fpSecret string) (*session.Session, *api.Client) {
	t.Helper()
	cfg := &config.Config{
		API:        config.APIConfig{BaseURL: srv.URL, AuthBaseURL: srv.URL, Timeout: 5 * time.Second},
		OAuth:      config.OAuthConfig{ClientID: "1", ClientSecret: "cs", Scope: "admin"},
		FirstParty: config.FirstPartyConfig{ID: testFPID, Secret: fpSecret},
	}
	client := api.New(cfg.API.BaseURL, cfg.FirstParty.ID, cfg.FirstParty.Secret, cfg.API.Timeout)
	return session.New(cfg, client, store.NewMemoryStore()), client
}

func TestEndToEnd_LoginBrowseCatalog(t *testing.T) {
	srv := newStub(t)
	sess, client := newStack(t, srv, testFPSecret)
	ctx := context.Background()

	// Login persists a real minted JWT.
	require.NoError(t, sess.Login(ctx, "admin", "admin"))
	require.True(t, sess.IsAuthenticated())

	// Sequential profile + permission fetch.
	require.NoError(t, sess.FetchUserData(ctx))
	assert.Equal(t, "Stub Admin", sess.User().FullName)
	assert.Equal(t, 100.0, sess.User().Credit)
	assert.True(t, sess.HasPermission("users_show"))

	// Catalog browsing through the signed client.
	pkgs := catalog.NewPackages(client)
	require.NoError(t, pkgs.FetchAll(ctx, sess.Token()))
	assert.Len(t, pkgs.Items(), 2)

	require.NoError(t, pkgs.FetchByID(ctx, sess.Token(), 1))
	require.NoError(t, pkgs.FetchBouquets(ctx, sess.Token(), 1, "live"))
	sel := pkgs.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, "Basic", sel.Name)
	require.Len(t, sel.Bouquets, 1)
	assert.Equal(t, "Sports", sel.Bouquets[0].Name)
	assert.Equal(t, 1, sel.Bouquets[0].ParentID)

	tmpls := catalog.NewTemplates(client)
	require.NoError(t, tmpls.FetchAll(ctx, sess.Token()))
	require.Len(t, tmpls.Items(), 1)
	assert.True(t, tmpls.Items()[0].IsGlobal)
}

func TestEndToEnd_BadCredentials(t *testing.T) {
	srv := newStub(t)
	sess, _ := newStack(t, srv, testFPSecret)

	err := sess.Login(context.Background(), "admin", "nope")
	require.Error(t, err)
	assert.False(t, sess.IsAuthenticated())
	assert.Equal(t, "invalid credentials", sess.LoginStatus().Message)
}

func TestStub_RejectsBadSignature(t *testing.T) {
	srv := newStub(t)
	sess, badClient := newStack(t, srv, "wrong-secret")
	ctx := context.Background()

	// The token grant is unsigned, so login still works.
	require.NoError(t, sess.Login(ctx, "admin", "admin"))

	err := badClient.Get(ctx, "/packages", nil, sess.Token(), nil)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "invalid first-party signature", apiErr.Message)
}

func TestStub_RejectsMissingBearer(t *testing.T) {
	srv := newStub(t)

	resp, err := http.Get(srv.URL + "/packages")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStub_RejectsStaleTimestamp(t *testing.T) {
	srv := newStub(t)
	sess, _ := newStack(t, srv, testFPSecret)
	ctx := context.Background()
	require.NoError(t, sess.Login(ctx, "admin", "admin"))

	// Hand-build a request with a correctly signed but ancient timestamp.
	ts := time.Now().Add(-time.Hour).Unix()
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/packages", nil)
	require.NoError(t, err)
	req.Header = sign.Headers("/packages", ts, testFPID, testFPSecret)
	req.Header.Set("Authorization", "Bearer "+sess.Token())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestStub_PerPageLimit(t *testing.T) {
	srv := newStub(t)
	sess, client := newStack(t, srv, testFPSecret)
	ctx := context.Background()
	require.NoError(t, sess.Login(ctx, "admin", "admin"))

	q := url.Values{"per_page": {"1"}}
	var out struct {
		Data []struct {
			ID int `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, client.Get(ctx, "/packages", q, sess.Token(), &out))
	assert.Len(t, out.Data, 1)

	// A negative per_page must not crash the handler; the full list is served.
	q = url.Values{"per_page": {"-1"}}
	out.Data = nil
	require.NoError(t, client.Get(ctx, "/packages", q, sess.Token(), &out))
	assert.Len(t, out.Data, 2)

	// Zero is a valid bound: an empty page.
	q = url.Values{"per_page": {"0"}}
	out.Data = nil
	require.NoError(t, client.Get(ctx, "/packages", q, sess.Token(), &out))
	assert.Empty(t, out.Data)
}

func TestStub_BouquetTypeFilter(t *testing.T) {
	srv := newStub(t)
	sess, client := newStack(t, srv, testFPSecret)
	ctx := context.Background()
	require.NoError(t, sess.Login(ctx, "admin", "admin"))

	pkgs := catalog.NewPackages(client)
	require.NoError(t, pkgs.FetchBouquets(ctx, sess.Token(), 1, "vod"))
	bouquets := pkgs.SelectedBouquets()
	require.Len(t, bouquets, 1)
	assert.Equal(t, "Movies", bouquets[0].Name)
}

func TestLoadFixtures(t *testing.T) {
	t.Setenv("STUB_ADMIN_PASSWORD", "from-env")
	path := t.TempDir() + "/fixtures.toml"
	content := `
[[users]]
id = 5
username = "ops"
password = "${STUB_ADMIN_PASSWORD}"
email = "ops@example.com"
full_name = "Ops"
credit = 12.5
permissions = ["users_show"]

[[packages]]
id = 3
name = "Gold"
period = 12
period_type = "months"

  [[packages.bouquets]]
  id = 9
  name = "Docs"
  type = "live"
  category_id = 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	f, err := loadFixtures(path)
	require.NoError(t, err)
	require.Len(t, f.Users, 1)
	assert.Equal(t, "from-env", f.Users[0].Password)
	require.Len(t, f.Packages, 1)
	require.Len(t, f.Packages[0].Bouquets, 1)
	assert.Equal(t, "Docs", f.Packages[0].Bouquets[0].Name)
}

func TestLoadFixtures_NoUsers(t *testing.T) {
	path := t.TempDir() + "/fixtures.toml"
	require.NoError(t, os.WriteFile(path, []byte("[[packages]]\nid = 1\nname = \"x\"\n"), 0o600))
	_, err := loadFixtures(path)
	require.Error(t, err)
}
