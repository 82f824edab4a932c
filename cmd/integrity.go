package cmd

import (
	"context"
	"fmt"
	"os"

	"translation-manager/core/config"
	"translation-manager/core/database"
	"translation-manager/core/logger"
	"translation-manager/core/storage"
	"translation-manager/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on stores and storage",
	Long:  `Checks that registered stores, the database schema and the storage bucket agree with each other.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			cmd.Help()
			return
		}
		runIntegrityChecks(cmd.Context(), true, true, true)
	},
}

// integrityStorageCmd represents the integrity storage command
var integrityStorageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check stores against the storage bucket",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), true, false, false)
	},
}

// integritySchemaCmd represents the integrity schema command
var integritySchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the database schema against the models",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), false, true, false)
	},
}

// integrityStoresCmd represents the integrity stores command
var integrityStoresCmd = &cobra.Command{
	Use:   "stores",
	Short: "Check for stores needing attention",
	Run: func(cmd *cobra.Command, args []string) {
		runIntegrityChecks(cmd.Context(), false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(integrityStorageCmd, integritySchemaCmd, integrityStoresCmd)
}

func runIntegrityChecks(ctx context.Context, runStorage, runSchema, runStores bool) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	// Create Storage Client
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		logg.Fatal("Failed to create storage client", zap.Error(err))
	}

	// Connect to Database
	var db *gorm.DB
	if conn, err := database.Connect(cfg.Database); err != nil {
		logg.Warn("Database connection failed, database checks will error", zap.Error(err))
	} else {
		db = conn
	}

	svc := integrity.NewService(client, cfg.Storage.Bucket, logg, db)

	if runStorage {
		logg.Info("Checking storage objects...")
		report, err := svc.CheckStorage(ctx)
		if err != nil {
			logg.Fatal("Storage check failed", zap.Error(err))
		}

		if report.Status == "ok" {
			logg.Info("All stores are backed by objects.")
		} else {
			if len(report.Missing) > 0 {
				logg.Warn("Stores with missing backing objects", zap.Strings("missing", report.Missing))
			}
			if len(report.Orphans) > 0 {
				logg.Warn("Objects without a registered store", zap.Strings("orphans", report.Orphans))
			}
		}
	}

	if runSchema {
		logg.Info("Checking database schema...")
		report, err := svc.CheckSchema()
		if err != nil {
			logg.Error("Schema check failed", zap.Error(err))
		} else if report.Matched {
			logg.Info("Database schema matches the models.")
		} else {
			logg.Warn("Schema mismatches found")
			for table, tblReport := range report.Tables {
				if tblReport.Status != "ok" {
					if len(tblReport.MissingColumns) > 0 {
						logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tblReport.MissingColumns))
					}
					if len(tblReport.TypeMismatches) > 0 {
						logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tblReport.TypeMismatches))
					}
				}
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
		}
	}

	if runStores {
		logg.Info("Checking store states...")
		report, err := svc.CheckStores()
		if err != nil {
			logg.Error("Stores check failed", zap.Error(err))
		} else {
			if len(report.ErrorStores) > 0 {
				logg.Warn("Stores whose last update failed to parse", zap.Strings("stores", report.ErrorStores))
			}
			if len(report.NeverSynced) > 0 {
				logg.Info("Parsed stores never synced to storage", zap.Strings("stores", report.NeverSynced))
			}
			if len(report.ErrorStores) == 0 && len(report.NeverSynced) == 0 {
				logg.Info("All stores are healthy.")
			}
		}
	}
}
