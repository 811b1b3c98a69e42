// Package main provides the entry point for the Scan Annotator application.
package main

import (
	"context"
	"log"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/google/uuid"

	"scan-annotator/internal/api"
	"scan-annotator/internal/app"
	"scan-annotator/internal/config"
	"scan-annotator/internal/version"
	"scan-annotator/ui/mainwindow"
)

const appTitle = "Scan Annotator"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s (commit %s, built %s)",
		appTitle, version.Version, version.GitCommit, version.BuildTime)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.APIToken)
	appState := app.NewState(client)

	fyneApp := fyneapp.New()
	fyneApp.Settings().SetTheme(&app.AnnotatorTheme{})

	win := mainwindow.New(fyneApp, appState)
	win.Resize(fyne.NewSize(1280, 800))

	go func() {
		if err := appState.LoadUser(context.Background()); err != nil {
			log.Printf("Failed to load user: %v", err)
		}
	}()

	// Handle command line arguments
	if len(os.Args) > 1 {
		scanID, err := uuid.Parse(os.Args[1])
		if err != nil {
			log.Printf("Ignoring invalid scan ID argument %q: %v", os.Args[1], err)
		} else {
			go func() {
				if err := appState.LoadScan(context.Background(), scanID); err != nil {
					log.Printf("Failed to load scan %s: %v", scanID, err)
				}
			}()
		}
	}

	win.ShowAndRun()
}
