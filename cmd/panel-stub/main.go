// ABOUTME: Local fake panel backend for development and E2E testing of panelctl
// ABOUTME: Serves the catalog REST surface from fixtures and verifies first-party signatures

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
)

func main() {
	addr := flag.String("addr", "localhost:8081", "listen address")
	fixturesPath := flag.String("fixtures", "", "TOML fixture file (built-in catalog if omitted)")
	firstPartyID := flag.String("fp-id", "stub", "expected First-Party-Id")
	firstPartySecret := flag.String("fp-secret", "stub-secret", "first-party signing secret")
	jwtSecret := flag.String("jwt-secret", "stub-jwt-secret-not-for-production", "HS256 secret for minted tokens")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	fixtures := defaultFixtures()
	if *fixturesPath != "" {
		loaded, err := loadFixtures(*fixturesPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fixtures = loaded
	}

	srv := newServer(fixtures, *firstPartyID, *firstPartySecret, []byte(*jwtSecret))

	slog.Info("panel-stub listening", "addr", *addr,
		"users", len(fixtures.Users), "packages", len(fixtures.Packages), "templates", len(fixtures.Templates))
	if err := http.ListenAndServe(*addr, srv.routes()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
