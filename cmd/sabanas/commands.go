package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/phantoooomCam/sabanas-server/internal/db"
	"github.com/phantoooomCam/sabanas-server/internal/models"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func runCLI() {
	rootCmd := &cobra.Command{
		Use:   "sabanas",
		Short: "Sabanas CDR ingestion service",
		Long:  "ETL service that ingests carrier CDR spreadsheets over FTP and normalizes them into canonical telephone records",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path")

	rootCmd.AddCommand(
		createServeCommand(),
		createMigrateCommand(),
		createInitDBCommand(),
		createProcessCommand(),
		createStatsCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func createServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ETL server: worker pool, reaper, and HTTP surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := initializeForCLI(ctx); err != nil {
				return err
			}
			runServe(ctx)
			return nil
		},
	}
}

func createMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := initializeForCLI(ctx); err != nil {
				return err
			}
			if err := db.RunDatabaseMigrations(db.GetDB().DB); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println(green("migrations applied"))
			return nil
		},
	}
}

func createInitDBCommand() *cobra.Command {
	var flush bool
	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the archivos/registros_telefonicos schema directly, bypassing migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := initializeForCLI(ctx); err != nil {
				return err
			}
			flushDB = flush
			runInitDB(ctx)
			return nil
		},
	}
	cmd.Flags().BoolVar(&flush, "flush", false, "Drop existing tables before recreating them")
	return cmd
}

func createProcessCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "process <fileId>",
		Short: "Synchronously accept and run a single file through the ETL pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := initializeForCLI(ctx); err != nil {
				return err
			}

			fileID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || fileID < 1 {
				return fmt.Errorf("fileId must be a positive integer")
			}

			jobID, rec, err := engine.AcceptJob(ctx, fileID)
			if err != nil {
				return fmt.Errorf("failed to accept file %d: %w", fileID, err)
			}

			fmt.Printf("accepted job %s for file %d, processing synchronously...\n", jobID, fileID)
			engine.ProcessJob(ctx, rec.ID, jobID)

			final, err := repo.GetFile(ctx, fileID)
			if err != nil {
				return err
			}

			switch final.State {
			case models.StateProcessed:
				count, _ := repo.CountRecordsForFile(ctx, fileID)
				fmt.Printf("%s file %d processed, %d records persisted\n", green("OK"), fileID, count)
			case models.StateError:
				fmt.Printf("%s file %d ended in error state\n", red("FAILED"), fileID)
			default:
				fmt.Printf("%s file %d ended in unexpected state %q\n", yellow("WARN"), fileID, final.State)
			}
			return nil
		},
	}
}

func createStatsCommand() *cobra.Command {
	var fileID int64
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a file's lifecycle state and record count",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := initializeForCLI(ctx); err != nil {
				return err
			}

			rec, err := repo.GetFile(ctx, fileID)
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("file %d not found", fileID)
			}

			count, err := repo.CountRecordsForFile(ctx, fileID)
			if err != nil {
				return err
			}

			carrierName := "unknown"
			if rec.CarrierName != nil {
				carrierName = *rec.CarrierName
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Field", "Value"})
			table.SetBorder(false)
			table.Append([]string{"File ID", fmt.Sprintf("%d", rec.ID)})
			table.Append([]string{"Path", rec.Path})
			table.Append([]string{"State", stateColor(rec.State)})
			table.Append([]string{"Carrier", carrierName})
			table.Append([]string{"Records", fmt.Sprintf("%d", count)})
			table.Render()

			return nil
		},
	}
	cmd.Flags().Int64Var(&fileID, "file-id", 0, "File ID to report on")
	cmd.MarkFlagRequired("file-id")
	return cmd
}

func stateColor(s models.FileState) string {
	switch s {
	case models.StateProcessed:
		return green(string(s))
	case models.StateError:
		return red(string(s))
	case models.StateProcessing, models.StateQueued:
		return yellow(string(s))
	default:
		return string(s)
	}
}
