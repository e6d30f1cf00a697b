// ABOUTME: Terminal rendering for catalog snapshots
// ABOUTME: Tabwriter tables for lists, key/value blocks for single entities

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/panelops/panelctl/internal/model"
)

func renderPackageList(pkgs []model.Package) {
	if len(pkgs) == 0 {
		fmt.Println("No packages.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPERIOD\tCREDIT\tCONNECTIONS\tTRIAL")
	for _, p := range pkgs {
		fmt.Fprintf(w, "%d\t%s\t%d %s\t%.2f\t%d\t%s\n",
			p.ID, p.Name, p.Period, p.PeriodType, p.Credit, p.MaxConnections, yesNo(p.IsTrial))
	}
	_ = w.Flush()
}

func renderPackage(p *model.Package) {
	if p == nil {
		fmt.Println("No package selected.")
		return
	}
	color.New(color.FgCyan).Printf("Package #%d: %s\n", p.ID, p.Name)
	fmt.Printf("  period:          %d %s\n", p.Period, p.PeriodType)
	fmt.Printf("  credit:          %.2f\n", p.Credit)
	fmt.Printf("  max connections: %d\n", p.MaxConnections)
	fmt.Printf("  trial:           %s (paid: %s)\n", yesNo(p.IsTrial), yesNo(p.IsPaidTrial))
	fmt.Printf("  vpn:             %s\n", yesNo(p.CanEnableVPN))
	if p.Bouquets == nil {
		fmt.Println("  bouquets:        (not loaded, run: panelctl packages bouquets", p.ID, ")")
	} else {
		fmt.Printf("  bouquets:        %d\n", len(p.Bouquets))
	}
}

func renderTemplateList(tmpls []model.Template) {
	if len(tmpls) == 0 {
		fmt.Println("No templates.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPACKAGE\tGLOBAL\tPUBLISHED")
	for _, tpl := range tmpls {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			tpl.ID, tpl.Name, tpl.PackageID, yesNo(tpl.IsGlobal), yesNo(tpl.Publish))
	}
	_ = w.Flush()
}

func renderTemplate(tpl *model.Template) {
	if tpl == nil {
		fmt.Println("No template selected.")
		return
	}
	color.New(color.FgCyan).Printf("Template #%d: %s\n", tpl.ID, tpl.Name)
	fmt.Printf("  package:    %d\n", tpl.PackageID)
	fmt.Printf("  global:     %s\n", yesNo(tpl.IsGlobal))
	fmt.Printf("  published:  %s\n", yesNo(tpl.Publish))
	fmt.Printf("  created by: %d\n", tpl.CreatedByID)
	if tpl.Bouquets == nil {
		fmt.Println("  bouquets:   (not loaded, run: panelctl templates bouquets", tpl.ID, ")")
	} else {
		fmt.Printf("  bouquets:   %d\n", len(tpl.Bouquets))
	}
}

func renderBouquets(bouquets []model.Bouquet) {
	if len(bouquets) == 0 {
		fmt.Println("No bouquets of that type.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tCATEGORY\tADULT")
	for _, b := range bouquets {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", b.ID, b.Name, b.Type, b.CategoryID, yesNo(b.IsAdult))
	}
	_ = w.Flush()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
