// ABOUTME: Entry point for the yanger application
// ABOUTME: Handles command-line parsing, profiling, and wiring of the TUI stack

// Package main provides the entry point for yanger, a ranger-style terminal
// client for YouTube playlists.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"yanger/api"
	"yanger/cache"
	"yanger/config"
	"yanger/oplog"
	"yanger/tui"
)

func main() {
	os.Exit(run())
}

func run() int {
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")
	debug := flag.Bool("debug", false, "enable debug logging to yanger-debug.log")
	dryRun := flag.Bool("dry-run", false, "browse a built-in fake library without touching the YouTube API")
	configPath := flag.String("config", "", "config file path (default: ./yanger.toml or ~/.config/yanger/config.toml)")
	flag.Parse()

	if len(flag.Args()) != 0 {
		fmt.Println("Usage: yanger [flags]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()

		return 1
	}

	if *cpuprofile != "" {
		stopCPUProfile := setupCPUProfile(*cpuprofile)
		defer stopCPUProfile()
	}

	if *memprofile != "" {
		defer writeMemoryProfile(*memprofile)
	}

	if *debug {
		if err := SetupDebugLog("yanger-debug.log"); err != nil {
			log.Printf("Failed to setup debug log: %v", err)

			return 1
		}
	}

	path := *configPath
	if path == "" {
		path = config.GetConfigPath()
	}

	settings, err := config.LoadConfig(path)
	if err != nil {
		log.Printf("Config error: %v", err)

		return 1
	}

	sharedCfg := &config.SharedConfig{}
	sharedCfg.Update(settings)

	quota := api.NewQuotaCounter(settings.QuotaLimit)

	var remote tui.RemoteService

	if *dryRun {
		remote = api.NewDryRunRemote(quota, debugf)
	} else {
		service, err := api.NewService(context.Background(), settings.CredentialsPath, settings.TokenPath)
		if err != nil {
			log.Printf("YouTube auth failed: %v", err)
			log.Printf("Place OAuth credentials at %s, or try --dry-run", settings.CredentialsPath)

			return 1
		}

		remote = api.NewClient(service, quota, debugf)
	}

	// A broken cache store is not fatal: the memory layer still works.
	store, err := cache.OpenStore(settings.CachePath)
	if err != nil {
		log.Printf("Warning: cache store unavailable: %v", err)
	} else {
		defer func() {
			if err := store.Close(); err != nil {
				debugf("[MAIN] Failed to close cache store: %v", err)
			}
		}()
	}

	playlistCache := cache.New(time.Duration(settings.CacheTTLMinutes)*time.Minute, store, debugf)

	// Same for the audit log: a nil *Log records nothing.
	auditLog, err := oplog.Open(settings.OplogPath)
	if err != nil {
		log.Printf("Warning: operation log unavailable: %v", err)
	}

	defer func() {
		if err := auditLog.Close(); err != nil {
			debugf("[MAIN] Failed to close oplog: %v", err)
		}
	}()

	opts := tui.Options{
		ConfigPath: path,
		DryRun:     *dryRun,
		DebugLog:   *debug,
	}

	deps := tui.Dependencies{
		SharedConfig: sharedCfg,
		Remote:       remote,
		Cache:        playlistCache,
		Recorder:     auditLog,
		Debugf:       debugf,
	}

	if err := tui.Run(opts, deps); err != nil {
		log.Printf("TUI error: %v", err)

		return 1
	}

	return 0
}

// setupCPUProfile starts CPU profiling, returns cleanup function
func setupCPUProfile(filename string) func() {
	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("could not create CPU profile: %v", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		log.Fatalf("could not start CPU profile: %v", err)
	}

	return func() {
		pprof.StopCPUProfile()

		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close CPU profile: %v", err)
		}
	}
}

// writeMemoryProfile writes memory profile to file
func writeMemoryProfile(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		log.Printf("could not create memory profile: %v", err)

		return
	}

	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close memory profile: %v", err)
		}
	}()

	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Printf("could not write memory profile: %v", err)
	}
}
