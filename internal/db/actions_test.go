package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	dbpkg "github.com/dtnitsch/teds-eval/pkg/db"
)

func newApp(t *testing.T, action cli.ActionFunc) *cli.App {
	t.Helper()
	return &cli.App{
		Name: "teds",
		Commands: []*cli.Command{{
			Name:   "run",
			Flags:  []cli.Flag{&cli.StringFlag{Name: "db"}, &cli.IntFlag{Name: "worst", Value: 10}, &cli.IntFlag{Name: "limit", Value: 20}},
			Action: action,
		}},
	}
}

func seed(t *testing.T, path string, uuids ...string) []int64 {
	t.Helper()
	database, err := dbpkg.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath() error = %v", err)
	}
	defer database.Close()

	var ids []int64
	for _, u := range uuids {
		id, err := database.InsertRun(dbpkg.Run{RunUUID: u, PredPath: "p.json", GTPath: "g.json", Matched: 1, AvgTEDS: 1, AvgTED: 0.5})
		if err != nil {
			t.Fatalf("InsertRun() error = %v", err)
		}
		if err := database.InsertPairScores(id, []dbpkg.PairScore{{Key: "a.png", StructureScore: 1, FullScore: 0.5}}); err != nil {
			t.Fatalf("InsertPairScores() error = %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestGetRunIDOrLatest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ids := seed(t, path, "first", "second")

	tests := []struct {
		name    string
		args    []string
		want    int64
		wantErr string
	}{
		{name: "latest", want: ids[1]},
		{name: "explicit", args: []string{"1"}, want: ids[0]},
		{name: "not a number", args: []string{"abc"}, wantErr: "invalid run ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got int64
			var gotErr error
			app := newApp(t, func(c *cli.Context) error {
				database, err := openDatabase(c)
				if err != nil {
					return err
				}
				defer database.Close()
				got, gotErr = GetRunIDOrLatest(c, database)
				return nil
			})
			args := append([]string{"teds", "run", "--db", path}, tt.args...)
			if err := app.Run(args); err != nil {
				t.Fatalf("app.Run() error = %v", err)
			}
			if tt.wantErr != "" {
				if gotErr == nil || !strings.Contains(gotErr.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want %q", gotErr, tt.wantErr)
				}
				return
			}
			if gotErr != nil || got != tt.want {
				t.Errorf("GetRunIDOrLatest() = %d, %v; want %d", got, gotErr, tt.want)
			}
		})
	}
}

func TestGetRunIDOrLatest_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	var gotErr error
	app := newApp(t, func(c *cli.Context) error {
		database, err := openDatabase(c)
		if err != nil {
			return err
		}
		defer database.Close()
		_, gotErr = GetRunIDOrLatest(c, database)
		return nil
	})
	if err := app.Run([]string{"teds", "run", "--db", path}); err != nil {
		t.Fatalf("app.Run() error = %v", err)
	}
	if gotErr == nil || !strings.Contains(gotErr.Error(), "no runs found") {
		t.Errorf("error = %v, want no runs found", gotErr)
	}
}

func TestActions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	seed(t, path, "only")

	if err := newApp(t, RunsAction).Run([]string{"teds", "run", "--db", path}); err != nil {
		t.Errorf("RunsAction error = %v", err)
	}
	if err := newApp(t, RunAction).Run([]string{"teds", "run", "--db", path, "--worst", "1"}); err != nil {
		t.Errorf("RunAction error = %v", err)
	}
	if err := newApp(t, RunAction).Run([]string{"teds", "run", "--db", path, "99"}); err == nil {
		t.Error("RunAction on a missing run should fail")
	}
}
