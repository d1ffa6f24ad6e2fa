package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ofckit/ofc/internal/domain"
	"github.com/ofckit/ofc/internal/ports"
)

type scanReport struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
	Person  string `json:"person,omitempty"`
}

func newScanCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Probe the office network and list reachable hosts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, app, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func runScan(cmd *cobra.Command, app *app, asJSON bool) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), app.cycleTimeout())
	defer cancel()

	targets, err := app.scanTargets(true)
	if err != nil {
		return err
	}

	people, err := app.roster.Load(ctx)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}

	var hosts []ports.Host
	doScan := func(ctx context.Context) error {
		scanned, scanErr := app.scanner().Scan(ctx, targets)
		if scanErr != nil {
			return scanErr
		}
		hosts = scanned
		return nil
	}

	if asJSON {
		if err := doScan(ctx); err != nil {
			return err
		}
	} else {
		if err := runScanSpinner(ctx, cmd.ErrOrStderr(), doScan); err != nil {
			return err
		}
	}

	reports := buildScanReports(hosts, people)

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "reachable hosts: %d of %d probed\n", len(reports), len(targets))
	for _, report := range reports {
		line := report.Address
		if report.Name != "" {
			line += "\t" + report.Name
		}
		if report.Person != "" {
			line += "\t" + report.Person
		}
		_, _ = fmt.Fprintln(out, line)
	}

	return nil
}

func buildScanReports(hosts []ports.Host, people []domain.Person) []scanReport {
	byAddress := make(map[string]domain.Person, len(people))
	for _, person := range people {
		byAddress[person.Address] = person
	}

	reports := make([]scanReport, 0, len(hosts))
	for _, host := range hosts {
		report := scanReport{Address: host.Address, Name: host.Name}
		if person, ok := byAddress[host.Address]; ok {
			report.Person = person.DisplayName
			if report.Person == "" {
				report.Person = string(person.ID)
			}
		}
		reports = append(reports, report)
	}

	return reports
}
