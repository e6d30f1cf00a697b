// ABOUTME: Fixture catalog loading for panel-stub
// ABOUTME: Loads users, packages, and templates from TOML with environment variable expansion

package main

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/panelops/panelctl/internal/model"
)

// Fixtures is the stub's entire world: the operators who can log in and the
// catalog it serves.
type Fixtures struct {
	Users     []FixtureUser     `toml:"users"`
	Packages  []FixturePackage  `toml:"packages"`
	Templates []FixtureTemplate `toml:"templates"`
}

// FixtureUser is an operator account with its login password and grants.
type FixtureUser struct {
	ID          int      `toml:"id"`
	Username    string   `toml:"username"`
	Password    string   `toml:"password"`
	Email       string   `toml:"email"`
	FullName    string   `toml:"full_name"`
	Credit      float64  `toml:"credit"`
	Permissions []string `toml:"permissions"`
}

// FixturePackage is a package plus its bouquets.
type FixturePackage struct {
	ID             int              `toml:"id"`
	Name           string           `toml:"name"`
	IsTrial        bool             `toml:"is_trial"`
	IsPaidTrial    bool             `toml:"is_paid_trial"`
	CanEnableVPN   bool             `toml:"can_enable_vpn"`
	Credit         float64          `toml:"credit"`
	Period         int              `toml:"period"`
	PeriodType     string           `toml:"period_type"`
	MaxConnections int              `toml:"max_connections"`
	Bouquets       []FixtureBouquet `toml:"bouquets"`
}

// FixtureTemplate is a template plus its bouquets.
type FixtureTemplate struct {
	ID               int              `toml:"id"`
	Name             string           `toml:"name"`
	IsGlobal         bool             `toml:"is_global"`
	ShowForMyCreated bool             `toml:"show_for_my_created"`
	Publish          bool             `toml:"publish"`
	PackageID        int              `toml:"package_id"`
	CreatedByID      int              `toml:"created_by_id"`
	Bouquets         []FixtureBouquet `toml:"bouquets"`
}

// FixtureBouquet is one bouquet row; parent_id is filled from the enclosing
// entity.
type FixtureBouquet struct {
	ID         int    `toml:"id"`
	Name       string `toml:"name"`
	Type       string `toml:"type"`
	CategoryID int    `toml:"category_id"`
	IsAdult    bool   `toml:"is_adult"`
}

// loadFixtures reads a TOML fixture file, expanding ${VAR} references.
func loadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var f Fixtures
	if _, err := toml.Decode(expanded, &f); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}
	if len(f.Users) == 0 {
		return nil, fmt.Errorf("fixtures define no users")
	}
	return &f, nil
}

// defaultFixtures is the built-in world used when no fixture file is given.
func defaultFixtures() *Fixtures {
	return &Fixtures{
		Users: []FixtureUser{{
			ID: 1, Username: "admin", Password: "admin",
			Email: "admin@example.com", FullName: "Stub Admin", Credit: 100,
			Permissions: []string{"users_show", "packages_show", "templates_show"},
		}},
		Packages: []FixturePackage{
			{ID: 1, Name: "Basic", Period: 1, PeriodType: "months", Credit: 10, MaxConnections: 1,
				Bouquets: []FixtureBouquet{
					{ID: 1, Name: "Sports", Type: "live", CategoryID: 2},
					{ID: 2, Name: "Movies", Type: "vod", CategoryID: 3},
				}},
			{ID: 2, Name: "Trial", IsTrial: true, Period: 7, PeriodType: "days", MaxConnections: 1},
		},
		Templates: []FixtureTemplate{
			{ID: 1, Name: "Default", IsGlobal: true, Publish: true, PackageID: 1, CreatedByID: 1,
				Bouquets: []FixtureBouquet{{ID: 1, Name: "Sports", Type: "live", CategoryID: 2}}},
		},
	}
}

func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// now timestamps every entity the stub serves; the panel returns RFC 3339.
const fixtureTimestamp = "2024-01-01T00:00:00Z"

func (p FixturePackage) toModel() model.Package {
	return model.Package{
		ID: p.ID, Name: p.Name, IsTrial: p.IsTrial, IsPaidTrial: p.IsPaidTrial,
		CanEnableVPN: p.CanEnableVPN, Credit: p.Credit, Period: p.Period,
		PeriodType: p.PeriodType, MaxConnections: p.MaxConnections,
		CreatedAt: fixtureTimestamp, UpdatedAt: fixtureTimestamp,
	}
}

func (t FixtureTemplate) toModel() model.Template {
	return model.Template{
		ID: t.ID, Name: t.Name, IsGlobal: t.IsGlobal,
		ShowForMyCreated: t.ShowForMyCreated, Publish: t.Publish,
		PackageID: t.PackageID, CreatedByID: t.CreatedByID,
		CreatedAt: fixtureTimestamp, UpdatedAt: fixtureTimestamp,
	}
}

func (b FixtureBouquet) toModel(parentID int) model.Bouquet {
	return model.Bouquet{
		ID: b.ID, ParentID: parentID, Name: b.Name, Type: b.Type,
		CategoryID: b.CategoryID, IsAdult: b.IsAdult,
		CreatedAt: fixtureTimestamp, UpdatedAt: fixtureTimestamp,
	}
}
