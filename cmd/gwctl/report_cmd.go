package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/gracewave/gracewave/modules/pathway/infrastructure/reporting"
	"github.com/gracewave/gracewave/pkg/configuration"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print aggregated reports",
	}
	cmd.AddCommand(newFunnelReportCmd())
	cmd.AddCommand(newMembershipReportCmd())
	return cmd
}

func openReportDB() (*sqlx.DB, error) {
	conf := configuration.Use()
	return sqlx.Connect("postgres", conf.Database.ConnectionString())
}

func newFunnelReportCmd() *cobra.Command {
	var churchID string
	cmd := &cobra.Command{
		Use:   "funnel",
		Short: "Pathway completion funnel for a church",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openReportDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			rows, err := reporting.FunnelRows(cmd.Context(), db, churchID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATHWAY\tSTEP\tORDER\tCOMPLETED")
			for _, row := range rows {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", row.PathwayName, row.StepName, row.SortOrder, row.Completed)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&churchID, "church", "", "church identifier")
	_ = cmd.MarkFlagRequired("church")
	return cmd
}

func newMembershipReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "membership",
		Short: "Per-church membership summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openReportDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			rows, err := reporting.MembershipRows(cmd.Context(), db)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CHURCH\tNAME\tMEMBERS\tCAMPUSES")
			for _, row := range rows {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", row.ChurchID, row.ChurchName, row.Members, row.Campuses)
			}
			return w.Flush()
		},
	}
}
