// Package main provides a CLI tool for inspecting and pruning stored
// encounter snapshots.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cory-johannsen/heardround/internal/config"
	"github.com/cory-johannsen/heardround/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/heardround.yaml", "path to configuration file")
	action := flag.String("action", "list", "action: list, show, or prune")
	id := flag.String("id", "", "encounter ID (required for show)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	repo := postgres.NewEncounterRepository(pool.DB())

	switch *action {
	case "list":
		snapshots, err := repo.ListUnfinished(ctx)
		if err != nil {
			log.Fatalf("listing encounters: %v", err)
		}
		for _, sn := range snapshots {
			fmt.Fprintf(os.Stdout, "%s  channel=%s  %s vs %s  round=%s  updated=%s\n",
				sn.ID, sn.ChannelID, sn.Attacker, sn.Defender, sn.Round, sn.UpdatedAt.Format(time.RFC3339))
		}
		fmt.Fprintf(os.Stdout, "%d unfinished encounters [%s]\n", len(snapshots), time.Since(start))
	case "show":
		if *id == "" {
			flag.Usage()
			os.Exit(1)
		}
		sn, err := repo.Get(ctx, *id)
		if err != nil {
			log.Fatalf("looking up encounter %q: %v", *id, err)
		}
		status, err := sn.Status()
		if err != nil {
			log.Fatalf("restoring encounter %q: %v", *id, err)
		}
		fmt.Fprintln(os.Stdout, status.String())
	case "prune":
		n, err := repo.DeleteFinished(ctx)
		if err != nil {
			log.Fatalf("pruning encounters: %v", err)
		}
		fmt.Fprintf(os.Stdout, "deleted %d finished encounters [%s]\n", n, time.Since(start))
	default:
		log.Fatalf("invalid action %q: must be one of list, show, prune", *action)
	}
}
