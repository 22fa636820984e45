// cleanup-duplicates removes duplicate uploaded files from the database.
//
// A duplicate is an older upload sharing its original file name with a newer
// one. The newest copy of each name is kept; older copies are deleted in one
// transaction, cascading to their sheets and rows.
//
// Usage: go run ./scripts/cleanup-duplicates
//
// Database connection: Uses standard PG* environment variables
//
// Flags:
//
//	-dry-run   Show what would be deleted without actually deleting (default: true)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/excelq/excelq-engine/pkg/config"
	"github.com/excelq/excelq-engine/pkg/database"
	"github.com/excelq/excelq-engine/pkg/repositories"
	"github.com/excelq/excelq-engine/pkg/services"
)

func main() {
	dryRun := flag.Bool("dry-run", true, "Show what would be deleted without actually deleting")
	flag.Parse()

	cfg, err := config.Load("dev")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: 2,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fileRepo := repositories.NewFileRepository(db)
	sheetRepo := repositories.NewSheetRepository(db)

	if *dryRun {
		groups, err := fileRepo.DuplicateGroups(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to find duplicates: %v\n", err)
			os.Exit(1)
		}
		if len(groups) == 0 {
			fmt.Println("No duplicate uploads found.")
			return
		}
		fmt.Printf("Would delete duplicates for %d file name(s) (re-run with -dry-run=false to delete):\n", len(groups))
		for _, g := range groups {
			fmt.Printf("  %s: keep %s, delete %d older cop(ies)\n", g.Name, g.KeepID, len(g.DeleteIDs))
		}
		return
	}

	fileService := services.NewFileService(db, fileRepo, sheetRepo, zap.NewNop())

	reports, err := fileService.CleanupDuplicates(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cleanup failed: %v\n", err)
		os.Exit(1)
	}
	if len(reports) == 0 {
		fmt.Println("No duplicate uploads found.")
		return
	}

	for _, r := range reports {
		fmt.Printf("  %s: kept %s, deleted %d older cop(ies)\n", r.Name, r.KeptID, r.Deleted)
	}
	fmt.Printf("Cleaned up %d file name(s).\n", len(reports))
}
