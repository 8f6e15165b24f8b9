package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/chrissnell/automorph/internal/app"
	"github.com/chrissnell/automorph/internal/log"
	"github.com/chrissnell/automorph/pkg/config"
	"github.com/joho/godotenv"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	// A .env file is optional; AUTOMORPH_* variables override the YAML config
	_ = godotenv.Load()

	cfgFile := flag.String("config", "", "Path to the YAML configuration file (defaults and AUTOMORPH_* variables apply without one)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	serveOnly := flag.Bool("serve-only", false, "Skip batch processing and only run the REST server")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("automorph %s\n", version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	filename := *cfgFile
	if filename != "" {
		filename, _ = filepath.Abs(filename)
	}
	provider := config.NewYAMLProvider(filename)
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration. Did you pass the -config flag? Run with -h for help: %v", err)
	}
	if *serveOnly && cfg.REST == nil {
		log.Fatalf("-serve-only needs a rest section in the configuration or AUTOMORPH_REST_PORT")
	}

	// Create and run the application
	application := app.New(provider, log.Named("automorph"))
	application.ServeOnly = *serveOnly
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		log.Sync()
		os.Exit(1)
	}
}
