// ABOUTME: Entry point for the mapsapp interactive map client
// ABOUTME: Loads config, opens the store, logs in and runs the command loop

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/mapsapp/internal/auth"
	"github.com/2389/mapsapp/internal/config"
	"github.com/2389/mapsapp/internal/store"
)

// Version is set at build time.
var version = "dev"

const banner = `
  _ __ ___   __ _ _ __  ___  __ _ _ __  _ __
 | '_ ' _ \ / _' | '_ \/ __|/ _' | '_ \| '_ \
 | | | | | | (_| | |_) \__ \ (_| | |_) | |_) |
 |_| |_| |_|\__,_| .__/|___/\__,_| .__/| .__/
                 |_|             |_|   |_|
`

func main() {
	cmd := "run"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd {
	case "run":
		err = runClient(ctx, args)
	case "init":
		err = runInit()
	case "version":
		fmt.Println(version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: mapsapp [command] [flags]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  run       Start the interactive client (default)")
	fmt.Println("  init      Create a new config file interactively")
	fmt.Println("  version   Print the version")
	fmt.Println()
	yellow.Println("Flags for run:")
	fmt.Println("  --role ROLE   Log in as guest, user, owner, moderator or admin")
	fmt.Println("  --name NAME   Display name for the login")
	fmt.Println("  --no-geo      Run without a position source")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Printf("  %-14s Config file path (default: %s)\n", config.EnvConfigPath, config.DefaultPath())
	fmt.Println()
}

func runClient(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	role := fs.String("role", "", "role to log in as")
	name := fs.String("name", "", "display name")
	noGeo := fs.Bool("no-geo", false, "disable geolocation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	green := color.New(color.FgGreen)

	cyan.Print(banner)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.LoadDefault()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	backend, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	green.Print("    ▶ ")
	fmt.Printf("Config:  %s\n", config.DefaultPath())
	green.Print("    ▶ ")
	if cfg.Storage.Driver == config.DriverSQLite {
		fmt.Printf("Store:   %s\n", cfg.Storage.Path)
	} else {
		fmt.Printf("Store:   in-memory\n")
	}
	fmt.Println()

	app, err := newApp(ctx, appOptions{
		Store:   backend,
		Map:     cfg.Map,
		Logger:  logger,
		NoGeo:   *noGeo,
		Out:     os.Stdout,
		Version: version,
	})
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	if err := app.login(ctx, reader, *role, *name); err != nil {
		return err
	}
	return app.loop(ctx, reader)
}

// backend is the persistence surface the client needs.
type backend interface {
	store.Store
	store.AuditStore
}

func openStore(cfg config.StorageConfig) (backend, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return store.NewMemoryStore(cfg.Prefix), nil
	default:
		s, err := store.NewSQLiteStore(cfg.Path, cfg.Prefix)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		return s, nil
	}
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("mapsapp configuration setup")
	fmt.Println("===========================")
	fmt.Println()

	def := config.Default()

	outputFile := prompt(reader, "Config file path", config.DefaultPath())
	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Storage Configuration ---")
	driver := prompt(reader, "Storage driver (sqlite/memory)", def.Storage.Driver)
	dbPath := def.Storage.Path
	if driver == config.DriverSQLite {
		dbPath = prompt(reader, "SQLite database path", def.Storage.Path)
	}

	fmt.Println("\n--- Map Configuration ---")
	centerLat := prompt(reader, "Center latitude", fmt.Sprint(def.Map.CenterLat))
	centerLng := prompt(reader, "Center longitude", fmt.Sprint(def.Map.CenterLng))

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "warn")
	logFormat := prompt(reader, "Log format (text/json)", def.Logging.Format)

	var cfg strings.Builder
	cfg.WriteString("# mapsapp configuration\n")
	cfg.WriteString("# Generated by mapsapp init\n\n")

	cfg.WriteString("storage:\n")
	cfg.WriteString(fmt.Sprintf("  driver: \"%s\"\n", driver))
	cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n", dbPath))
	cfg.WriteString(fmt.Sprintf("  prefix: \"%s\"\n", def.Storage.Prefix))
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))
	cfg.WriteString("\n")

	cfg.WriteString("map:\n")
	cfg.WriteString(fmt.Sprintf("  center_lat: %s\n", centerLat))
	cfg.WriteString(fmt.Sprintf("  center_lng: %s\n", centerLng))
	cfg.WriteString(fmt.Sprintf("  zoom: %d\n", def.Map.Zoom))
	cfg.WriteString(fmt.Sprintf("  geolocation_timeout: \"%s\"\n", def.Map.GeolocationTimeout))

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	// Catch typos before the first run does
	if _, err := config.Load(outputFile); err != nil {
		color.Yellow("Warning: written config does not load: %v\n", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Println("\nTo start the client:")
	fmt.Printf("  mapsapp --role %s\n", auth.RoleUser)

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
