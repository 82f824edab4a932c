package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"translation-manager/core/config"
	"translation-manager/core/database"
	"translation-manager/core/logger"
	"translation-manager/core/revision"
	"translation-manager/core/storage"
	"translation-manager/feature/store"
	"translation-manager/feature/store/repo"
	storesync "translation-manager/feature/store/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the update command
	updateAll       bool
	updateFile      string
	updateUser      string
	updateBaseline  int64
	updateOverwrite bool
	updateReorder   bool
	updateNoSuggest bool
	updateYes       bool
)

// updateCmd merges file content into stores.
var updateCmd = &cobra.Command{
	Use:   "update [path]",
	Short: "Update stores from their backing files",
	Long: `Update merges file content into the database copy of a store.

By default the store's backing object is downloaded from storage. A local
file can be merged instead with --file. Conflicting edits keep the database
side and preserve the incoming translation as a suggestion.

Examples:
  # Update one store from storage
  update de/app.po

  # Update one store from a local file
  update de/app.po --file ./app.po

  # Update every registered store
  update --all

  # Let the file win conflicts
  update de/app.po --overwrite`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&updateAll, "all", false, "Update every registered store from storage")
	updateCmd.Flags().StringVar(&updateFile, "file", "", "Merge a local file instead of the backing object")
	updateCmd.Flags().StringVar(&updateUser, "user", "system", "Actor recorded on submissions and suggestions")
	updateCmd.Flags().Int64Var(&updateBaseline, "baseline", -1, "Revision the file was derived from (-1 reads it from the file header)")
	updateCmd.Flags().BoolVar(&updateOverwrite, "overwrite", false, "Incoming content wins all conflicts")
	updateCmd.Flags().BoolVar(&updateReorder, "reorder", false, "Reorder surviving units to match file order")
	updateCmd.Flags().BoolVar(&updateNoSuggest, "no-suggest", false, "Discard losing translations instead of keeping suggestions")
	updateCmd.Flags().BoolVar(&updateYes, "yes", false, "Auto-confirm overwrite runs (non-interactive)")

	RootCmd.AddCommand(updateCmd)
}

// buildStoreService wires the store service for CLI commands.
func buildStoreService() (*store.Service, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to storage: %w", err)
	}

	r := repo.New(db)
	counter := revision.NewDBCounter(db, revision.DefaultCounterName)
	return store.NewService(r, client, cfg.Storage.Bucket, counter, logg), logg, nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if !updateAll && len(args) != 1 {
		return fmt.Errorf("expected a store path or --all")
	}
	if updateAll && updateFile != "" {
		return fmt.Errorf("--file cannot be combined with --all")
	}

	// Overwrite discards concurrent edits; make sure that is intended.
	if updateOverwrite && !confirmOverwrite() {
		return fmt.Errorf("operation cancelled")
	}

	svc, logg, err := buildStoreService()
	if err != nil {
		return err
	}

	opts := storesync.DefaultUpdateOptions()
	opts.Baseline = updateBaseline
	opts.User = updateUser
	opts.Overwrite = updateOverwrite
	opts.Conservative = !updateReorder
	opts.SuggestOnConflict = !updateNoSuggest

	ctx := context.Background()

	if updateAll {
		stores, err := svc.ListStores(ctx)
		if err != nil {
			return fmt.Errorf("failed to list stores: %w", err)
		}
		var failed int
		for i := range stores {
			st := &stores[i]
			res, err := svc.UpdateFromStorage(ctx, st, opts)
			if err != nil {
				failed++
				logg.Error("Update failed", zap.String("path", st.Path), zap.Error(err))
				continue
			}
			logUpdateResult(logg, st.Path, res)
		}
		if failed > 0 {
			return fmt.Errorf("%d store(s) failed to update", failed)
		}
		return nil
	}

	st, err := svc.GetStoreByPath(ctx, args[0])
	if err != nil {
		return err
	}

	var res *storesync.UpdateResult
	if updateFile != "" {
		data, err := os.ReadFile(updateFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", updateFile, err)
		}
		res, err = svc.UpdateFromBytes(ctx, st, data, opts)
		if err != nil {
			return err
		}
	} else {
		res, err = svc.UpdateFromStorage(ctx, st, opts)
		if err != nil {
			return err
		}
	}

	logUpdateResult(logg, st.Path, res)
	return nil
}

// confirmOverwrite prompts the user for confirmation or uses the --yes flag.
func confirmOverwrite() bool {
	if updateYes {
		fmt.Println("Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("Overwrite discards edits made since the file's baseline. Type 'yes' to confirm: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}

func logUpdateResult(l *zap.Logger, path string, res *storesync.UpdateResult) {
	if !res.Changed {
		l.Info("Store already up to date", zap.String("path", path))
		return
	}
	l.Info("Store updated",
		zap.String("path", path),
		zap.Int64("revision", res.Revision),
		zap.Int("added", res.Added),
		zap.Int("updated", res.Updated),
		zap.Int("obsoleted", res.Obsoleted),
		zap.Int("resurrected", res.Resurrected),
		zap.Int("conflicts", res.Conflicts),
		zap.Int("suggested", res.Suggested),
	)
}
