package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"fireetl/internal/config"
	"fireetl/internal/load"
)

// main empties every warehouse table. Destructive, so the -yes flag is
// required; without it the tool prints what it would do and exits non-zero.
func main() {
	var (
		cfgPath string
		yes     bool
	)
	flag.StringVar(&cfgPath, "config", "", "config JSON path (defaults + env when empty)")
	flag.BoolVar(&yes, "yes", false, "confirm truncation of all warehouse tables")
	flag.Parse()

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.LoadFile(cfgPath)
		if err != nil {
			fatalf("config: %v", err)
		}
	}

	if !yes {
		fmt.Fprintf(os.Stderr, "refusing to truncate %s without -yes\n", cfg.DB.Name)
		os.Exit(1)
	}

	ctx := context.Background()
	loader, closePool, err := load.New(ctx, cfg.DB.DSN(), cfg.Load.BatchSize)
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer closePool()

	if err := loader.TruncateAll(ctx); err != nil {
		fatalf("truncate: %v", err)
	}
	log.Printf("done")
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
