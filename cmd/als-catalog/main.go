// als-catalog maintains a sqlite catalog of parsed Live sets so large
// collections can be listed and inspected without re-parsing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/kurylko/alsparse/pkg/alsparse"
	"github.com/kurylko/alsparse/pkg/logger"
)

var dbPath string

func init() {
	flag.StringVar(&dbPath, "db", getEnvOrDefault("ALS_CATALOG_PATH", "alsparse.sqlite3"), "Path to the sqlite catalog file")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: %s [flags] <command> [args]

Commands:
  add <set.als>...   Parse sets and store their summaries
  scan <dir>         Add every .als file under a directory
  list               List catalogued projects
  show <id>          Show one project with its tracks
  delete <id>        Remove a project from the catalog

Flags:
`, filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	log := logger.GetLogger()
	svc, err := alsparse.NewService(
		alsparse.WithDBPath(dbPath),
		alsparse.WithLogger(log),
	)
	if err != nil {
		log.Errorf("failed to open catalog: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	ctx := context.Background()
	command, args := flag.Arg(0), flag.Args()[1:]

	var cmdErr error
	switch command {
	case "add":
		cmdErr = handleAdd(ctx, svc, args, log)
	case "scan":
		cmdErr = handleScan(ctx, svc, args, log)
	case "list":
		cmdErr = handleList(svc)
	case "show":
		cmdErr = handleShow(svc, args)
	case "delete":
		cmdErr = handleDelete(svc, args, log)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(2)
	}
	if cmdErr != nil {
		log.Errorf("%v", cmdErr)
		os.Exit(1)
	}
}

func handleAdd(ctx context.Context, svc alsparse.Service, paths []string, log *logger.Logger) error {
	if len(paths) == 0 {
		return fmt.Errorf("add requires at least one file")
	}
	for _, path := range paths {
		id, err := svc.CatalogFile(ctx, path)
		if err != nil {
			return fmt.Errorf("adding %s: %w", path, err)
		}
		log.Infof("Added %s as %s", path, id)
	}
	return nil
}

func handleScan(ctx context.Context, svc alsparse.Service, args []string, log *logger.Logger) error {
	if len(args) != 1 {
		return fmt.Errorf("scan requires exactly one directory")
	}
	added := 0
	err := filepath.WalkDir(args[0], func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".als") {
			return nil
		}
		id, err := svc.CatalogFile(ctx, path)
		if err != nil {
			// keep scanning; one bad set should not stop the walk
			log.Warnf("skipping %s: %v", path, err)
			return nil
		}
		log.Infof("Added %s as %s", path, id)
		added++
		return nil
	})
	if err != nil {
		return err
	}
	log.Infof("Scan finished, %d project(s) added", added)
	return nil
}

func handleList(svc alsparse.Service) error {
	projects, err := svc.ListProjects()
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("Catalog is empty")
		return nil
	}
	for _, p := range projects {
		fmt.Printf("%s  Live %-8s  %6.2f BPM  %3d tracks  %4d clips  %s  %s\n",
			p.ID, p.DAWVersion, p.Tempo, p.TrackCount, p.ClipCount,
			humanize.Bytes(uint64(p.SizeBytes)), p.Path)
	}
	return nil
}

func handleShow(svc alsparse.Service, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("show requires exactly one project id")
	}
	p, err := svc.GetProjectByID(args[0])
	if err != nil {
		return fmt.Errorf("project %s: %w", args[0], err)
	}
	fmt.Printf("Project %s\n", p.ID)
	fmt.Printf("  Path:     %s\n", p.Path)
	fmt.Printf("  Version:  Live %s\n", p.DAWVersion)
	fmt.Printf("  Tempo:    %.2f BPM\n", p.Tempo)
	fmt.Printf("  Duration: %.2f beats\n", p.Duration)
	fmt.Printf("  Size:     %s\n", humanize.Bytes(uint64(p.SizeBytes)))
	fmt.Printf("  Hash:     %s\n", p.ContentHash)
	fmt.Printf("  Tracks:   %d (%d clips, %d notes)\n", p.TrackCount, p.ClipCount, p.NoteCount)

	tracks, err := svc.GetTracksByProject(p.ID)
	if err != nil {
		return fmt.Errorf("tracks of %s: %w", p.ID, err)
	}
	for _, t := range tracks {
		fmt.Printf("    %2d  %-8s  %-30s  %3d clips  %5d notes\n",
			t.Index, t.Kind, t.Name, t.ClipCount, t.NoteCount)
	}
	return nil
}

func handleDelete(svc alsparse.Service, args []string, log *logger.Logger) error {
	if len(args) != 1 {
		return fmt.Errorf("delete requires exactly one project id")
	}
	if err := svc.DeleteProject(args[0]); err != nil {
		return err
	}
	log.Infof("Deleted %s", args[0])
	return nil
}
