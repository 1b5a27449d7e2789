package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/LachsProducktions/mediascan/app"
	"github.com/LachsProducktions/mediascan/models"
)

func main() {
	configPath := flag.String("config", "", "Path to scan configuration file (yaml)")
	dbPath := flag.String("db", "", "Snapshot database path (overrides config)")
	extensions := flag.String("ext", "", "Comma-separated extension filter, e.g. mp4,mkv,jpg")
	followSymlinks := flag.Bool("follow-symlinks", false, "Follow symbolic links during traversal")
	includeHidden := flag.Bool("hidden", false, "Include hidden files and directories")
	maxGroups := flag.Int("top", 20, "Number of duplicate groups to print")
	flag.Parse()

	var scanCfg models.ScanConfig
	if *configPath != "" {
		cfg, err := app.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		scanCfg = cfg.Scan
	}

	if args := flag.Args(); len(args) > 0 {
		scanCfg.RootPaths = args
	}
	if len(scanCfg.RootPaths) == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one root path is required (as arguments or via -config)")
		os.Exit(1)
	}
	if *extensions != "" {
		scanCfg.Extensions = strings.Split(*extensions, ",")
	}
	if *followSymlinks {
		scanCfg.FollowSymlinks = true
	}
	if *includeHidden {
		scanCfg.IncludeHidden = true
	}
	if *dbPath != "" {
		scanCfg.DBPath = *dbPath
	}
	app.ApplyDefaults(&scanCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var logger *app.ScanLogger
	if scanCfg.DBPath != "" {
		var err error
		logger, err = app.NewScanLogger(filepath.Dir(scanCfg.DBPath), scanCfg.LogRetentionDays)
		if err != nil {
			log.Fatalf("Failed to create scan logger: %v", err)
		}
		defer logger.Close()
	}

	var probe models.DurationProbe
	if scanCfg.ProbeCommand != "none" {
		probe = app.NewFFProbe(scanCfg.ProbeCommand)
		if probe == nil {
			log.Println("ffprobe not found, media durations will be unavailable")
		}
	}

	session := app.NewSession(scanCfg, probe, logger)
	if err := session.Run(ctx); err != nil {
		if errors.Is(err, app.ErrSessionCancelled) {
			log.Fatalf("Scan cancelled: %v", err)
		}
		log.Fatalf("Scan failed: %v", err)
	}

	rep, err := session.Report()
	if err != nil {
		log.Fatalf("Failed to build report: %v", err)
	}

	printReport(rep, *maxGroups)

	if scanCfg.DBPath != "" {
		store, err := app.OpenStore(scanCfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open snapshot store: %v", err)
		}
		defer store.Close()
		if err := store.SaveReport(ctx, rep); err != nil {
			log.Fatalf("Failed to save snapshot: %v", err)
		}
		log.Printf("Snapshot saved to %s", scanCfg.DBPath)
	}
}

func printReport(rep *models.InventoryReport, maxGroups int) {
	fmt.Printf("Scanned %d files (%s) across %d roots\n",
		rep.TotalFiles, models.HumanBytes(rep.TotalBytes), len(rep.Roots))

	for _, ks := range rep.Kinds {
		if ks.Count == 0 {
			continue
		}
		fmt.Printf("  %-6s %8d files  %s\n", ks.Kind, ks.Count, models.HumanBytes(ks.Bytes))
	}

	fmt.Printf("\nDuplicate groups: %d (%d cross-root), wasted space: %s\n",
		rep.GroupCount, rep.CrossRootGroups, models.HumanBytes(rep.WastedBytes))

	for i, g := range rep.Groups {
		if i >= maxGroups {
			fmt.Printf("  ... and %d more groups\n", len(rep.Groups)-maxGroups)
			break
		}
		span := "single-root"
		if g.CrossRoot() {
			span = "cross-root"
		}
		fmt.Printf("\n  [%d] %d copies x %s (%s wasted, %s)\n",
			i+1, len(g.Members), models.HumanBytes(g.Size),
			models.HumanBytes(g.WastedBytes()), span)
		for _, m := range g.Members {
			fmt.Printf("      %s\n", m.Path)
		}
	}

	if len(rep.Issues) > 0 {
		fmt.Printf("\nSkipped %d paths due to errors:\n", len(rep.Issues))
		for _, issue := range rep.Issues {
			fmt.Printf("  [%s] %s: %s\n", issue.Kind, issue.Path, issue.Error)
		}
	}
}
