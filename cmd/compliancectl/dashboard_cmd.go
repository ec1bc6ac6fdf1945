package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	auditmodel "github.com/complyhub/compliance-management-api/internal/audit/model"
	"github.com/complyhub/compliance-management-api/internal/dashboard"
	"github.com/complyhub/compliance-management-api/internal/dashboard/model"
)

// dataset is the offline export read by the dashboard commands.
type dataset struct {
	Audits     []auditmodel.Audit `json:"audits"`
	Frameworks []model.Framework  `json:"frameworks"`
	Auditors   []model.Auditor    `json:"auditors"`
}

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Compute dashboard views from an exported dataset",
	}
	cmd.AddCommand(newDashboardSummaryCmd())
	return cmd
}

func newDashboardSummaryCmd() *cobra.Command {
	var (
		at       string
		auditors bool
	)
	cmd := &cobra.Command{
		Use:   "summary <file>",
		Short: "Print the compliance summary of a JSON dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readDataset(args[0])
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			if at != "" {
				if now, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
			}

			if auditors {
				return writeJSON(cmd.OutOrStdout(), dashboard.AuditorPerformance(data.Auditors, data.Audits, now))
			}
			return writeJSON(cmd.OutOrStdout(), dashboard.ComplianceSummary(data.Audits, data.Frameworks, now))
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "evaluate as of this RFC3339 time instead of now")
	cmd.Flags().BoolVar(&auditors, "auditors", false, "print per auditor performance instead")
	return cmd
}

func readDataset(path string) (*dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &data, nil
}
