// ABOUTME: HTTP routes and handlers for panel-stub
// ABOUTME: Password-grant token endpoint plus the signed catalog API surface

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/panelops/panelctl/internal/model"
	"github.com/panelops/panelctl/internal/sign"
)

// maxTimestampSkew bounds how stale a signed request's timestamp may be.
const maxTimestampSkew = 5 * time.Minute

const tokenTTL = time.Hour

type server struct {
	fixtures         *Fixtures
	firstPartyID     string
	firstPartySecret string
	jwtSecret        []byte
	logger           *slog.Logger
}

func newServer(fixtures *Fixtures, firstPartyID, firstPartySecret string, jwtSecret []byte) *server {
	return &server{
		fixtures:         fixtures,
		firstPartyID:     firstPartyID,
		firstPartySecret: firstPartySecret,
		jwtSecret:        jwtSecret,
		logger:           slog.Default().With("component", "stub"),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/oauth/token", s.handleToken)

	// Everything below requires a bearer token and a valid signature.
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/me", s.handleMe)
		r.Get("/users/{id}/permissions", s.handlePermissions)
		r.Get("/packages", s.handlePackages)
		r.Get("/packages/{id}", s.handlePackage)
		r.Get("/packages/{id}/bouquets", s.handlePackageBouquets)
		r.Get("/templates", s.handleTemplates)
		r.Get("/templates/{id}", s.handleTemplate)
		r.Get("/templates/{id}/bouquets", s.handleTemplateBouquets)
	})

	return r
}

// requireAuth verifies the bearer JWT and the first-party signature. The
// signature covers the bare request path, the decimal timestamp, and the
// first-party id; the query string is not part of the canonical message.
func (s *server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.userFromBearer(r); err != nil {
			s.writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		fpID := r.Header.Get(sign.HeaderID)
		sig := r.Header.Get(sign.HeaderSignature)
		tsRaw := r.Header.Get(sign.HeaderTimestamp)
		if fpID == "" || sig == "" || tsRaw == "" {
			s.writeError(w, http.StatusForbidden, "missing first-party headers")
			return
		}
		if fpID != s.firstPartyID {
			s.writeError(w, http.StatusForbidden, "unknown first-party id")
			return
		}

		ts, err := strconv.ParseInt(tsRaw, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusForbidden, "bad first-party timestamp")
			return
		}
		if skew := math.Abs(float64(time.Now().Unix() - ts)); skew > maxTimestampSkew.Seconds() {
			s.writeError(w, http.StatusForbidden, "first-party timestamp outside allowed window")
			return
		}

		if !sign.Verify(r.URL.Path, ts, fpID, s.firstPartySecret, sig) {
			s.writeError(w, http.StatusForbidden, "invalid first-party signature")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *server) userFromBearer(r *http.Request) (*FixtureUser, error) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		return nil, fmt.Errorf("missing bearer token")
	}

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(auth[len(prefix):], &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid token subject")
	}
	for i := range s.fixtures.Users {
		if s.fixtures.Users[i].ID == id {
			return &s.fixtures.Users[i], nil
		}
	}
	return nil, fmt.Errorf("unknown user")
}

func (s *server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad form body")
		return
	}
	if r.PostForm.Get("grant_type") != "password" {
		s.writeError(w, http.StatusBadRequest, "unsupported grant type")
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	for _, u := range s.fixtures.Users {
		if u.Username == username && u.Password == password {
			now := time.Now()
			claims := jwt.RegisteredClaims{
				Subject:   strconv.Itoa(u.ID),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			}
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
			if err != nil {
				s.writeError(w, http.StatusInternalServerError, "minting token failed")
				return
			}
			s.logger.Info("issued token", "username", username)
			s.writeJSON(w, model.TokenResponse{
				AccessToken: token,
				TokenType:   "Bearer",
				ExpiresIn:   int64(tokenTTL.Seconds()),
			})
			return
		}
	}
	s.writeError(w, http.StatusUnauthorized, "invalid credentials")
}

func (s *server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, _ := s.userFromBearer(r)
	s.writeJSON(w, model.User{
		ID: u.ID, Username: u.Username, Email: u.Email,
		FullName: u.FullName, Credit: u.Credit,
	})
}

func (s *server) handlePermissions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "bad user id")
		return
	}
	for _, u := range s.fixtures.Users {
		if u.ID == id {
			perms := u.Permissions
			if perms == nil {
				perms = []string{}
			}
			s.writeJSON(w, perms)
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "user not found")
}

func (s *server) handlePackages(w http.ResponseWriter, r *http.Request) {
	limit := len(s.fixtures.Packages)
	if raw := r.URL.Query().Get("per_page"); raw != "" {
		// Negative values would slice out of range below.
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 && n < limit {
			limit = n
		}
	}
	out := make([]model.Package, 0, limit)
	for _, p := range s.fixtures.Packages[:limit] {
		out = append(out, p.toModel())
	}
	s.writeJSON(w, model.List[model.Package]{Data: out})
}

func (s *server) handlePackage(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	for _, p := range s.fixtures.Packages {
		if p.ID == id {
			s.writeJSON(w, p.toModel())
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "package not found")
}

func (s *server) handlePackageBouquets(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	typ := r.URL.Query().Get("filters[type]")
	for _, p := range s.fixtures.Packages {
		if p.ID == id {
			s.writeJSON(w, model.List[model.Bouquet]{Data: filterBouquets(p.Bouquets, p.ID, typ)})
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "package not found")
}

func (s *server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	out := make([]model.Template, 0, len(s.fixtures.Templates))
	for _, t := range s.fixtures.Templates {
		out = append(out, t.toModel())
	}
	s.writeJSON(w, model.List[model.Template]{Data: out})
}

func (s *server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	for _, t := range s.fixtures.Templates {
		if t.ID == id {
			s.writeJSON(w, t.toModel())
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "template not found")
}

func (s *server) handleTemplateBouquets(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	typ := r.URL.Query().Get("filters[type]")
	for _, t := range s.fixtures.Templates {
		if t.ID == id {
			s.writeJSON(w, model.List[model.Bouquet]{Data: filterBouquets(t.Bouquets, t.ID, typ)})
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "template not found")
}

func filterBouquets(bouquets []FixtureBouquet, parentID int, typ string) []model.Bouquet {
	out := []model.Bouquet{}
	for _, b := range bouquets {
		if typ == "" || b.Type == typ {
			out = append(out, b.toModel(parentID))
		}
	}
	return out
}

func (s *server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response failed", "error", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
