package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/journey-backend/internal/app"
	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/engine"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/services"
)

// seedFile is the on-disk authoring shape. The graph travels as a plain
// document and is validated before anything touches the database.
type seedFile struct {
	TrackID     string         `yaml:"track_id" json:"track_id"`
	OrderIndex  int            `yaml:"order_index" json:"order_index"`
	Slug        string         `yaml:"slug" json:"slug"`
	Title       string         `yaml:"title" json:"title"`
	Description string         `yaml:"description" json:"description"`
	Status      string         `yaml:"status" json:"status"`
	Graph       map[string]any `yaml:"graph" json:"graph"`
}

type fileList []string

func (l *fileList) String() string { return strings.Join(*l, ",") }
func (l *fileList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var files fileList
	var dir string
	var dryRun bool
	var devTokenUser string
	flag.Var(&files, "file", "seed definition file, yaml or json (repeatable)")
	flag.StringVar(&dir, "dir", "", "directory of seed definition files")
	flag.BoolVar(&dryRun, "dry-run", false, "validate definitions without writing")
	flag.StringVar(&devTokenUser, "dev-token-user", "", "also mint a 24h token for this user id")
	flag.Parse()

	paths := append([]string(nil), files...)
	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			fmt.Printf("read dir %s: %v\n", dir, err)
			os.Exit(1)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".yaml", ".yml", ".json":
				paths = append(paths, filepath.Join(dir, e.Name()))
			}
		}
	}
	if len(paths) == 0 {
		fmt.Println("no seed files; pass -file or -dir")
		os.Exit(1)
	}

	defs := make([]services.JourneyDefinition, len(paths))
	var g errgroup.Group
	g.SetLimit(4)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			def, err := loadDefinition(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			defs[i] = def
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Printf("seed validation failed: %v\n", err)
		os.Exit(1)
	}

	if dryRun {
		for i, def := range defs {
			fmt.Printf("[dry-run] %s ok (slug=%s status=%s)\n", paths[i], def.Slug, def.Status)
		}
		return
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	upserted := 0
	for i, def := range defs {
		row, err := application.Services.Journey.UpsertDefinition(dbc, def)
		if err != nil {
			fmt.Printf("upsert failed for %s: %v\n", paths[i], err)
			os.Exit(1)
		}
		upserted++
		fmt.Printf("upserted journey slug=%s id=%s status=%s\n", row.Slug, row.ID.String(), row.Status)
	}
	fmt.Printf("done; upserted=%d\n", upserted)

	if devTokenUser != "" {
		userID, err := uuid.Parse(strings.TrimSpace(devTokenUser))
		if err != nil {
			fmt.Printf("bad -dev-token-user: %v\n", err)
			os.Exit(1)
		}
		token, err := application.Services.Auth.MintToken(userID, 24*time.Hour)
		if err != nil {
			fmt.Printf("mint token: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("dev token for %s:\n%s\n", userID.String(), token)
	}
}

// loadDefinition parses a seed file and proves its graph decodes and
// validates, so a bad definition fails before any write.
func loadDefinition(path string) (services.JourneyDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return services.JourneyDefinition{}, err
	}

	var sf seedFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(raw, &sf); err != nil {
			return services.JourneyDefinition{}, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(raw, &sf); err != nil {
			return services.JourneyDefinition{}, fmt.Errorf("parse yaml: %w", err)
		}
	}

	trackID, err := uuid.Parse(strings.TrimSpace(sf.TrackID))
	if err != nil {
		return services.JourneyDefinition{}, fmt.Errorf("bad track_id: %w", err)
	}
	if sf.Graph == nil {
		return services.JourneyDefinition{}, fmt.Errorf("graph required")
	}
	graphJSON, err := json.Marshal(sf.Graph)
	if err != nil {
		return services.JourneyDefinition{}, fmt.Errorf("encode graph: %w", err)
	}
	graph, err := types.DecodeGraph(graphJSON)
	if err != nil {
		return services.JourneyDefinition{}, fmt.Errorf("decode graph: %w", err)
	}
	if err := engine.ValidateGraph(graph); err != nil {
		return services.JourneyDefinition{}, err
	}

	return services.JourneyDefinition{
		TrackID:     trackID,
		OrderIndex:  sf.OrderIndex,
		Slug:        sf.Slug,
		Title:       sf.Title,
		Description: sf.Description,
		Status:      types.JourneyStatus(strings.TrimSpace(sf.Status)),
		Graph:       graphJSON,
	}, nil
}
