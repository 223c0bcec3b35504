package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"worklog-go/internal/app"
	"worklog-go/internal/config"
	"worklog-go/internal/worklog"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "worklog",
	Short: "Daily work log automation for a Notion-style workspace",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := app.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to resolve paths: %w", err)
		}

		cfg := config.NewConfig(paths.BaseDir)

		if err := config.Init(paths.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", paths.ConfigPath)
		fmt.Printf("Log Dir: %s\n", cfg.LogDir)
		fmt.Printf("\nSet the remote identifiers in the file or via environment:\n")
		fmt.Printf("  %s, %s, %s, %s\n",
			config.EnvToken, config.EnvTemplatePageID, config.EnvDatabaseID, config.EnvArchivePageID)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := app.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to resolve paths: %w", err)
		}

		cfg, err := config.ReadFromFile(paths.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		cfg.ApplyEnv()

		fmt.Printf("Configuration from %s:\n\n", paths.ConfigPath)
		fmt.Printf("Log Dir:          %s\n", cfg.LogDir)
		fmt.Printf("Template Page ID: %s\n", cfg.Notion.TemplatePageID)
		fmt.Printf("Database ID:      %s\n", cfg.Notion.DatabaseID)
		fmt.Printf("Archive Page ID:  %s\n", cfg.Notion.ArchivePageID)
		fmt.Printf("Title Property:   %s\n", cfg.Notion.TitleProperty)
		fmt.Printf("Date Property:    %s\n", cfg.Notion.DateProperty)
		return nil
	},
}

// daily command
var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Create today's work log entry from the template",
	RunE: func(cmd *cobra.Command, args []string) error {
		prepareNext, _ := cmd.Flags().GetBool("prepare-next")

		a, err := app.New("Daily")
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.RunDaily(context.Background(), prepareNext)
		for _, e := range entries {
			fmt.Println(dailyEntryLine(e))
		}
		if err != nil {
			return fmt.Errorf("daily run failed: %w", err)
		}
		return nil
	},
}

// dailyEntryLine formats the outcome of one date of a daily run.
func dailyEntryLine(e worklog.DailyEntry) string {
	switch e.Status {
	case worklog.StatusCreated:
		line := fmt.Sprintf("Created %s (%d blocks", e.Title, e.Blocks)
		if e.Errs > 0 {
			line += fmt.Sprintf(", %d errors", e.Errs)
		}
		return line + ")"
	case worklog.StatusExists:
		return fmt.Sprintf("Skipped %s (already exists)", e.Title)
	case worklog.StatusWeekend:
		return fmt.Sprintf("Skipped %s (weekend)", e.Title)
	default:
		return fmt.Sprintf("%s: %s", e.Title, e.Status)
	}
}

// archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Move last week's entries into the archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New("WeeklyArchive")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.RunArchive(context.Background())
		if err != nil {
			return fmt.Errorf("archive run failed: %w", err)
		}

		fmt.Printf("Archived %d entry(s), %d skipped, %d failed\n", res.Moved, res.Skipped, res.Failed)
		return nil
	},
}

// inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [PAGE_ID]",
	Short: "Print a page's block outline (defaults to the archive page)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New("Inspect")
		if err != nil {
			return err
		}
		defer a.Close()

		pageID := a.ArchivePageID()
		if len(args) > 0 {
			pageID = args[0]
		}

		ctx := context.Background()
		items, err := a.Outline(ctx, pageID)
		if err != nil {
			return err
		}

		for _, item := range items {
			fmt.Printf("%s%-20s %s\n", strings.Repeat("  ", item.Depth), item.Type, item.Text)
		}

		pages, err := a.ChildPages(ctx, pageID)
		if err != nil {
			return err
		}
		fmt.Printf("\n%d block(s), %d child page(s)\n", len(items), len(pages))
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := app.New("GetHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, r := range runs {
			duration := ""
			if r.FinishedAt.Valid {
				d := r.FinishedAt.Time.Sub(r.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-14s  %s  %-8s  created:%d moved:%d skipped:%d failed:%d  %s\n",
				r.ID,
				r.Operation,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Status,
				r.Created, r.Moved, r.Skipped, r.Failed,
				duration,
			)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dailyCmd)
	dailyCmd.Flags().Bool("prepare-next", false, "Also create the next business day's entry")
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
}
