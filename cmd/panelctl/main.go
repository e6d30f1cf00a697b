// ABOUTME: Admin CLI for the subscription panel: login, profile, catalog browsing
// ABOUTME: Dispatches store operations and renders their snapshots

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"github.com/panelops/panelctl/internal/api"
	"github.com/panelops/panelctl/internal/catalog"
	"github.com/panelops/panelctl/internal/config"
	"github.com/panelops/panelctl/internal/model"
	"github.com/panelops/panelctl/internal/session"
	"github.com/panelops/panelctl/internal/store"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// app wires the stores a command needs. One instance per process; commands
// receive it explicitly instead of reaching for globals.
type app struct {
	cfg       *config.Config
	session   *session.Session
	packages  *catalog.Collection[model.Package]
	templates *catalog.Collection[model.Template]
	closeFn   func()
}

func main() {
	configPath := flag.String("config", "", "config file path (default: $PANELCTL_CONFIG or ~/.config/panelctl/config.yaml)")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(2)
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	if cmd == "version" {
		fmt.Printf("panelctl %s (%s)\n", version, buildDate)
		return
	}
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage()
		return
	}

	a, err := setup(*configPath)
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
	defer a.closeFn()

	ctx := context.Background()

	switch cmd {
	case "login":
		err = cmdLogin(ctx, a, args)
	case "logout":
		err = cmdLogout(a)
	case "me", "whoami":
		err = cmdMe(ctx, a)
	case "packages":
		err = cmdPackages(ctx, a, args)
	case "templates":
		err = cmdTemplates(ctx, a, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// setup loads config, opens the state store, and builds the session and
// catalog stores. Configuration problems are fatal here, before any command
// runs.
func setup(configPath string) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	initLogging(cfg)

	st, err := store.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("opening state store: %w", err)
	}

	client := api.New(cfg.API.BaseURL, cfg.FirstParty.ID, cfg.FirstParty.Secret, cfg.API.Timeout)

	return &app{
		cfg:       cfg,
		session:   session.New(cfg, client, st),
		packages:  catalog.NewPackages(client),
		templates: catalog.NewTemplates(client),
		closeFn:   func() { _ = st.Close() },
	}, nil
}

// loadConfig resolves the config source: explicit flag, PANELCTL_CONFIG, the
// default file, or pure environment variables when no file exists.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("PANELCTL_CONFIG")
	}
	if path == "" {
		path = config.DefaultPath()
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config.LoadFromEnv()
		}
	}
	return config.Load(path)
}

func initLogging(cfg *config.Config) {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// requireAuth fails a command early when no session exists instead of letting
// the backend 401.
func requireAuth(a *app) error {
	if !a.session.IsAuthenticated() {
		return errors.New("not logged in (run: panelctl login -u <username>)")
	}
	return nil
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Println("panelctl - subscription panel admin client")
	fmt.Println()
	fmt.Println("Usage: panelctl [-config file] <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  login -u <username> [-p <password>]   Log in (password prompted if omitted)")
	fmt.Println("  logout                                Clear the stored session")
	fmt.Println("  me                                    Show your profile and permissions")
	fmt.Println("  packages list [-trial] [-period <t>]  List packages")
	fmt.Println("  packages show <id>                    Show one package")
	fmt.Println("  packages bouquets <id> [-type live]   Show a package's bouquets")
	fmt.Println("  templates list                        List templates")
	fmt.Println("  templates show <id>                   Show one template")
	fmt.Println("  templates bouquets <id> [-type live]  Show a template's bouquets")
	fmt.Println("  version                               Print version")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  PANELCTL_CONFIG      Config file path")
	fmt.Println("  API_BASE_URL, AUTH_BASE_URL, OAUTH_CLIENT_ID, OAUTH_CLIENT_SECRET,")
	fmt.Println("  OAUTH_SCOPE, FIRST_PARTY_ID, FIRST_PARTY_SECRET")
	fmt.Println("                       Env-only configuration when no config file exists")
}
