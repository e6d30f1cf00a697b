// ABOUTME: panelctl subcommands: auth, profile, and catalog browsing
// ABOUTME: Each command dispatches store fetches and renders the resulting snapshot

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/panelops/panelctl/internal/catalog"
)

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password (prompted if omitted)")
	_ = fs.Parse(args)

	if *username == "" {
		return errors.New("need -u <username>")
	}
	if *password == "" {
		fmt.Print("Password: ")
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return errors.New("no password given")
		}
		*password = strings.TrimSpace(scanner.Text())
	}

	if err := a.session.Login(ctx, *username, *password); err != nil {
		// Inline message; the prior session (if any) is still usable.
		return fmt.Errorf("login failed: %s", a.session.LoginStatus().Message)
	}

	color.Green("Logged in as %s", *username)
	return nil
}

func cmdLogout(a *app) error {
	a.session.Logout()
	fmt.Println("Logged out.")
	return nil
}

func cmdMe(ctx context.Context, a *app) error {
	if err := requireAuth(a); err != nil {
		return err
	}
	if err := a.session.FetchUserData(ctx); err != nil {
		return fmt.Errorf("%s", a.session.RefreshStatus().Message)
	}

	user := a.session.User()
	fmt.Printf("%s <%s>\n", user.FullName, user.Email)
	fmt.Printf("  username: %s\n", user.Username)
	fmt.Printf("  credit:   %.2f\n", user.Credit)

	// The permission listing is itself permission-gated.
	if a.session.HasPermission("users_show") {
		color.New(color.FgYellow).Println("Permissions:")
		for _, p := range a.session.Permissions() {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}

func cmdPackages(ctx context.Context, a *app, args []string) error {
	if err := requireAuth(a); err != nil {
		return err
	}
	sub, rest := splitSub(args)
	token := a.session.Token()

	switch sub {
	case "", "list":
		fs := flag.NewFlagSet("packages list", flag.ExitOnError)
		trialOnly := fs.Bool("trial", false, "only trial packages")
		period := fs.String("period", "", "filter by period type")
		_ = fs.Parse(rest)

		if err := a.packages.FetchAll(ctx, token); err != nil {
			return renderError(a.packages.Snapshot().List.Message)
		}
		items := a.packages.Items()
		if *trialOnly {
			items = catalog.TrialPackages(items)
		}
		if *period != "" {
			items = catalog.PackagesByPeriodType(items, *period)
		}
		renderPackageList(items)
		return nil

	case "show":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if err := a.packages.FetchByID(ctx, token, id); err != nil {
			return renderError(a.packages.Snapshot().Get.Message)
		}
		renderPackage(a.packages.Selected())
		return nil

	case "bouquets":
		fs := flag.NewFlagSet("packages bouquets", flag.ExitOnError)
		typ := fs.String("type", "live", "bouquet type")
		id, err := parseIDAndFlags(rest, fs)
		if err != nil {
			return err
		}
		if err := a.packages.FetchBouquets(ctx, token, id, *typ); err != nil {
			return renderError(a.packages.Snapshot().Bouquets.Message)
		}
		renderBouquets(catalog.SelectedBouquetsByType(a.packages, *typ))
		return nil

	default:
		return fmt.Errorf("unknown packages subcommand: %s", sub)
	}
}

func cmdTemplates(ctx context.Context, a *app, args []string) error {
	if err := requireAuth(a); err != nil {
		return err
	}
	sub, rest := splitSub(args)
	token := a.session.Token()

	switch sub {
	case "", "list":
		if err := a.templates.FetchAll(ctx, token); err != nil {
			return renderError(a.templates.Snapshot().List.Message)
		}
		renderTemplateList(a.templates.Items())
		return nil

	case "show":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if err := a.templates.FetchByID(ctx, token, id); err != nil {
			return renderError(a.templates.Snapshot().Get.Message)
		}
		renderTemplate(a.templates.Selected())
		return nil

	case "bouquets":
		fs := flag.NewFlagSet("templates bouquets", flag.ExitOnError)
		typ := fs.String("type", "live", "bouquet type")
		id, err := parseIDAndFlags(rest, fs)
		if err != nil {
			return err
		}
		if err := a.templates.FetchBouquets(ctx, token, id, *typ); err != nil {
			return renderError(a.templates.Snapshot().Bouquets.Message)
		}
		renderBouquets(catalog.SelectedBouquetsByType(a.templates, *typ))
		return nil

	default:
		return fmt.Errorf("unknown templates subcommand: %s", sub)
	}
}

// splitSub peels the subcommand off the argument list. A leading id (all
// digits) means the implicit "show" form: `panelctl packages 7`.
func splitSub(args []string) (string, []string) {
	if len(args) == 0 {
		return "", nil
	}
	if _, err := strconv.Atoi(args[0]); err == nil {
		return "show", args
	}
	return args[0], args[1:]
}

func parseID(args []string) (int, error) {
	if len(args) < 1 {
		return 0, errors.New("need an entity id")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("bad id %q", args[0])
	}
	return id, nil
}

// parseIDAndFlags handles `bouquets <id> [flags]`.
func parseIDAndFlags(args []string, fs *flag.FlagSet) (int, error) {
	id, err := parseID(args)
	if err != nil {
		return 0, err
	}
	_ = fs.Parse(args[1:])
	return id, nil
}

func renderError(msg string) error {
	return fmt.Errorf("%s", msg)
}
