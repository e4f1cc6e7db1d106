// validate_catalog.go checks a catalog document before it is published and,
// when asked, imports it into Postgres.
//
// Usage:
//
//	go run scripts/validate_catalog.go -catalog catalog.yaml [-import postgres://...] [-notify nats://...] [-strict]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/MikeSquared-Agency/Admit/internal/catalog"
	"github.com/MikeSquared-Agency/Admit/internal/hermes"
	"github.com/MikeSquared-Agency/Admit/internal/store"
)

func main() {
	catalogPath := flag.String("catalog", "catalog.yaml", "path to catalog YAML")
	databaseURL := flag.String("import", "", "import into this Postgres database when the catalog is valid")
	natsURL := flag.String("notify", "", "after import, ask running instances to reload via this NATS server")
	strict := flag.Bool("strict", false, "treat warnings as failures")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	ds, err := store.NewFileSource(*catalogPath).Load(ctx)
	if err != nil {
		logger.Error("load catalog", "path", *catalogPath, "error", err)
		os.Exit(2)
	}

	report := catalog.Validate(ds)
	printIssues(report)

	tree := catalog.Build(ds)
	color.Cyan("\n=== Assignments ===")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Institution", "Faculties", "Programs"})
	var assigned int
	for _, inst := range tree {
		assigned += inst.ProgramCount()
		table.Append([]string{
			inst.Abbreviation,
			strconv.Itoa(len(inst.Faculties)),
			strconv.Itoa(inst.ProgramCount()),
		})
	}
	table.Render()

	fmt.Printf("\n%d institutions, %d programs, %d rules, %d assignments\n",
		len(ds.Institutions), len(ds.Programs), len(ds.Rules), assigned)
	summary := fmt.Sprintf("%d fatal, %d warnings", len(report.Fatal()), len(report.Warnings()))
	if report.HasFatal() {
		color.Red(summary)
	} else {
		color.Green(summary)
	}

	if err := report.Err(); err != nil {
		logger.Error("catalog rejected", "error", err)
		os.Exit(1)
	}
	if *strict && len(report.Warnings()) > 0 {
		logger.Error("catalog rejected in strict mode", "warnings", len(report.Warnings()))
		os.Exit(1)
	}

	if *databaseURL == "" {
		return
	}
	db, err := store.NewPostgresSource(ctx, *databaseURL)
	if err != nil {
		logger.Error("connect", "error", err)
		os.Exit(2)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		logger.Error("create schema", "error", err)
		os.Exit(2)
	}
	if err := db.Import(ctx, ds); err != nil {
		logger.Error("import", "error", err)
		os.Exit(2)
	}
	logger.Info("catalog imported", "institutions", len(ds.Institutions), "programs", len(ds.Programs))

	if *natsURL == "" {
		return
	}
	hc, err := hermes.NewNATSClient(ctx, *natsURL, logger)
	if err != nil {
		logger.Error("connect to hermes", "error", err)
		os.Exit(2)
	}
	defer hc.Close()
	if err := hc.Publish(hermes.SubjectCatalogReloadRequested, hermes.CatalogReloadRequestedEvent{
		RequestedBy: "validate_catalog",
		Timestamp:   time.Now().UTC(),
	}); err != nil {
		logger.Error("request reload", "error", err)
		os.Exit(2)
	}
	logger.Info("reload requested")
}

func printIssues(report catalog.Report) {
	if len(report.Issues) == 0 {
		color.Green("No catalog issues found.")
		return
	}
	color.Yellow("\n=== Catalog issues ===")
	fatal := color.New(color.FgRed, color.Bold).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Severity", "Code", "Program", "Institution", "Message"})
	table.SetAutoWrapText(false)
	for _, is := range report.Issues {
		sev := warn(string(is.Severity))
		if is.Severity == catalog.SeverityFatal {
			sev = fatal(string(is.Severity))
		}
		table.Append([]string{sev, is.Code, is.ProgramID, is.InstitutionID, is.Message})
	}
	table.Render()
}
