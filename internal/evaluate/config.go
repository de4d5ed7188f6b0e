package evaluate

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/teds-eval/models"
)

// ResolveConfig builds the run config. An explicit flag beats the --config
// file, which beats the flag defaults. Zero values in the file count as unset.
func ResolveConfig(c *cli.Context) (*models.EvalConfig, error) {
	cfg := &models.EvalConfig{}
	if path := c.String("config"); path != "" {
		loaded, err := models.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	setString := func(flag string, dst *string) {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	setString("pred", &cfg.PredPath)
	setString("gt", &cfg.GTPath)
	setString("report", &cfg.ReportPath)
	setString("db", &cfg.DBPath)
	setString("cache-dir", &cfg.CacheDir)

	// An empty csv path in a config file means "not configured"; only the
	// flag can switch the csv off.
	if c.IsSet("output-csv") {
		cfg.OutputCSV = c.String("output-csv")
	} else if cfg.OutputCSV == "" {
		cfg.OutputCSV = models.DefaultCSVPath
	}

	if c.IsSet("workers") || cfg.WorkerCount == 0 {
		cfg.WorkerCount = c.Int("workers")
	}
	if c.IsSet("worst") || cfg.Worst == 0 {
		cfg.Worst = c.Int("worst")
	}
	if c.IsSet("cache-ttl") || cfg.CacheTTL == 0 {
		cfg.CacheTTL = c.Duration("cache-ttl")
	}
	if c.IsSet("clamp") {
		cfg.Clamp = c.Bool("clamp")
	}
	if c.IsSet("no-db") {
		cfg.NoDB = c.Bool("no-db")
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Flags are the options of the eval command.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "pred", Aliases: []string{"pred-path"}, Usage: "predictions JSON `FILE`"},
		&cli.StringFlag{Name: "gt", Aliases: []string{"gt-path"}, Usage: "ground truth JSON `FILE`"},
		&cli.StringFlag{Name: "output-csv", Value: models.DefaultCSVPath, Usage: "csv with the two averages; empty disables it"},
		&cli.StringFlag{Name: "report", Usage: "write a per-pair run report (.json or .yaml)"},
		&cli.IntFlag{Name: "workers", Value: models.DefaultWorkers, EnvVars: []string{"TEDS_WORKERS"}, Usage: "number of concurrent workers"},
		&cli.BoolFlag{Name: "clamp", Usage: "clamp per-pair scores to [0, 1]"},
		&cli.IntFlag{Name: "worst", Value: models.DefaultWorst, Usage: "number of lowest-scoring pairs to list in reports"},
		&cli.StringFlag{Name: "db", EnvVars: []string{"TEDS_DB"}, Usage: "run history database path (default: next to the binary)"},
		&cli.BoolFlag{Name: "no-db", Usage: "do not record the run"},
		&cli.StringFlag{Name: "cache-dir", Usage: "cache pair scores in `DIR`"},
		&cli.DurationFlag{Name: "cache-ttl", Value: models.DefaultCacheTTL, Usage: "score cache lifetime"},
		&cli.StringFlag{Name: "config", Usage: "YAML config `FILE`"},
		&cli.StringFlag{Name: "format", Value: "text", Usage: "output format: text, json or yaml"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
	}
}
