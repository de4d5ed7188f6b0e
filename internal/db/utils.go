package db

import (
	"fmt"

	dbpkg "github.com/dtnitsch/teds-eval/pkg/db"
	"github.com/urfave/cli/v2"
)

// openDatabase honours --db, falling back to the database next to the binary.
func openDatabase(c *cli.Context) (*dbpkg.DB, error) {
	var database *dbpkg.DB
	var err error
	if path := c.String("db"); path != "" {
		database, err = dbpkg.OpenPath(path)
	} else {
		database, err = dbpkg.Open()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// GetRunIDOrLatest returns the run ID from args, or the latest run if not provided
func GetRunIDOrLatest(c *cli.Context, database *dbpkg.DB) (int64, error) {
	if c.NArg() == 0 {
		runs, err := database.ListRuns(1)
		if err != nil {
			return 0, fmt.Errorf("failed to get latest run: %w", err)
		}
		if len(runs) == 0 {
			return 0, fmt.Errorf("no runs found. Run 'teds eval --pred ... --gt ...' first")
		}
		return runs[0].RunID, nil
	}

	var runID int64
	_, err := fmt.Sscanf(c.Args().First(), "%d", &runID)
	if err != nil {
		return 0, fmt.Errorf("invalid run ID: %s", c.Args().First())
	}
	return runID, nil
}
