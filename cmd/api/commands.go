package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"indiflow-dashboard-api/models"
	"indiflow-dashboard-api/repository"
	"indiflow-dashboard-api/services"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.close()
			if err := repository.Migrate(a.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>",
		Short: "Upload a JSON, CSV or TXT training file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.close()

			sess := services.NewSession(time.Now())
			n, err := a.ingestor.Ingest(cmd.Context(), sess, filepath.Base(args[0]), content)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ingested %d records\n", n)
			return writeStats(cmd.OutOrStdout(), sess.Stats(), false)
		},
	}
}

func newStatsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Load and print the dashboard statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := a.aggregator.LoadStats(cmd.Context(), services.NewSession(time.Now()))
			if err != nil {
				return err
			}
			return writeStats(cmd.OutOrStdout(), stats, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the dashboard assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.close()

			sess := services.NewSession(time.Now())
			if _, err := a.aggregator.LoadStats(cmd.Context(), sess); err != nil {
				return err
			}
			chat := services.NewChatService(services.ChatOpts{Logger: a.log})
			reply, err := chat.Ask(cmd.Context(), sess, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
			return nil
		},
	}
}

func newPromoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <email>",
		Short: "Grant an account the developer role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.stores.Users.SetRole(cmd.Context(), args[0], models.RoleDeveloper); err != nil {
				return fmt.Errorf("promote %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now a developer\n", args[0])
			return nil
		},
	}
}

func writeStats(out io.Writer, stats models.DashboardStats, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	rows := []struct {
		label string
		value int
	}{
		{"Total users", stats.TotalUsers},
		{"Active today", stats.ActiveToday},
		{"Routes", stats.TotalRoutes},
		{"Searches", stats.TotalSearches},
		{"Training data", stats.TrainingDataCount},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(out, "%-14s %d\n", r.label+":", r.value); err != nil {
			return err
		}
	}
	return nil
}
