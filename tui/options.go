// ABOUTME: TUI mode configuration and command-line options
// ABOUTME: Defines input parameters and injected dependencies for the TUI

package tui

import (
	"yanger/cache"
	"yanger/config"
	"yanger/engine"
)

// Options contains configuration for running the TUI
type Options struct {
	ConfigPath string // Config file path (watched for live reload)
	DryRun     bool   // If true, talk to the in-memory fake remote
	DebugLog   bool   // Enable debug logging to file
}

// Dependencies holds all external dependencies for the TUI
// This allows for clean dependency injection and easy testing
type Dependencies struct {
	SharedConfig *config.SharedConfig
	Remote       RemoteService
	Cache        *cache.Cache
	Recorder     engine.Recorder
	Debugf       func(string, ...interface{})
}
