package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sudo-init-do/talentbook/internal/config"
	"github.com/sudo-init-do/talentbook/internal/db"
	"github.com/sudo-init-do/talentbook/internal/gig"
	"github.com/sudo-init-do/talentbook/internal/logging"
	"github.com/sudo-init-do/talentbook/internal/templates"
	"github.com/sudo-init-do/talentbook/internal/vendor"
)

// seed_gigs publishes gigs for existing vendors from a YAML file.
// Usage:
//
//	go run ./cmd/adminutil/seed_gigs -file cmd/adminutil/seed_gigs/example.yaml
func main() {
	file := flag.String("file", "", "path to the seed YAML file")
	flag.Parse()

	if *file == "" {
		log.Fatalf("usage: go run ./cmd/adminutil/seed_gigs -file seeds.yaml")
	}
	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read seed file: %v", err)
	}
	seeds, err := loadSeeds(data)
	if err != nil {
		log.Fatalf("%v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(os.Stderr, cfg.LogLevel)
	if cfg.UseMemoryStores() {
		log.Fatalf("DATABASE_URL is required for seeding")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("%v", err)
	}

	catalog, err := templates.Load(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("load templates: %v", err)
	}
	gigs := gig.NewService(gig.NewPostgresStore(pool), vendor.NewService(vendor.NewPostgresStore(pool)), catalog, cfg.PublicBaseURL)

	failed := 0
	for i, s := range seeds {
		g, link, err := seed(ctx, gigs, s)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "gig %d (%s): %v\n", i, s.TemplateID, err)
			continue
		}
		fmt.Printf("%s\t%s\t%s\t%s\n", g.ID, g.Status, g.Title, link)
	}
	if failed > 0 {
		log.Fatalf("%d of %d gigs failed", failed, len(seeds))
	}
}
