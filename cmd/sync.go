package cmd

import (
	"context"
	"fmt"

	storesync "translation-manager/feature/store/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the sync command
	syncAll             bool
	syncForce           bool
	syncIncludeObsolete bool
	syncSkipMissing     bool
)

// syncCmd writes store content back to object storage.
var syncCmd = &cobra.Command{
	Use:   "sync [path]",
	Short: "Sync stores back to their backing files",
	Long: `Sync serializes the database copy of a store and uploads it to the
store's backing object. Stores without edits newer than the last sync are
skipped unless --force is given.

Examples:
  # Sync one store
  sync de/app.po

  # Sync every parsed store, tolerating stores without a backing object
  sync --all --skip-missing

  # Re-upload even without new edits
  sync de/app.po --force`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncAll, "all", false, "Sync every registered store")
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "Upload even when no edits are newer than the last sync")
	syncCmd.Flags().BoolVar(&syncIncludeObsolete, "include-obsolete", false, "Emit soft-deleted units as obsolete entries")
	syncCmd.Flags().BoolVar(&syncSkipMissing, "skip-missing", false, "Skip stores without a backing object instead of failing")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if !syncAll && len(args) != 1 {
		return fmt.Errorf("expected a store path or --all")
	}

	svc, logg, err := buildStoreService()
	if err != nil {
		return err
	}

	opts := storesync.SyncOptions{
		OnlyNewer:       !syncForce,
		SkipMissing:     syncSkipMissing,
		IncludeObsolete: syncIncludeObsolete,
	}

	ctx := context.Background()

	if syncAll {
		stores, err := svc.ListStores(ctx)
		if err != nil {
			return fmt.Errorf("failed to list stores: %w", err)
		}
		var failed int
		for i := range stores {
			st := &stores[i]
			if !st.IsParsed() {
				logg.Warn("Skipping unparsed store", zap.String("path", st.Path), zap.Int("state", st.State))
				continue
			}
			res, err := svc.SyncToStorage(ctx, st, opts)
			if err != nil {
				failed++
				logg.Error("Sync failed", zap.String("path", st.Path), zap.Error(err))
				continue
			}
			logSyncResult(logg, st.Path, res)
		}
		if failed > 0 {
			return fmt.Errorf("%d store(s) failed to sync", failed)
		}
		return nil
	}

	st, err := svc.GetStoreByPath(ctx, args[0])
	if err != nil {
		return err
	}

	res, err := svc.SyncToStorage(ctx, st, opts)
	if err != nil {
		return err
	}
	logSyncResult(logg, st.Path, res)
	return nil
}

func logSyncResult(l *zap.Logger, path string, res *storesync.SyncResult) {
	if res.Skipped {
		l.Info("Store skipped, nothing to sync", zap.String("path", path))
		return
	}
	l.Info("Store synced",
		zap.String("path", path),
		zap.Int64("revision", res.Revision),
		zap.Int("units", res.Units),
		zap.Int("bytes", len(res.Bytes)),
	)
}
