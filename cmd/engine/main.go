package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inkdrift/inkdrift/internal/api"
	"github.com/inkdrift/inkdrift/internal/config"
	"github.com/inkdrift/inkdrift/internal/events"
	"github.com/inkdrift/inkdrift/internal/game"
	"github.com/inkdrift/inkdrift/internal/session"
	"github.com/inkdrift/inkdrift/internal/storage/postgres"
	"github.com/inkdrift/inkdrift/internal/story"
	"github.com/inkdrift/inkdrift/internal/version"
)

func main() {
	configPath := flag.String("config", "runtime.yaml", "path to runtime.yaml")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Version)
		return
	}

	cfg, err := config.LoadRuntimeConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load %s: %v", *configPath, err)
	}

	s, err := story.Load(cfg.Story.Path)
	if err != nil {
		log.Fatalf("failed to load story %s: %v", cfg.Story.Path, err)
	}

	store, err := session.NewFileStore(cfg.SavesDir())
	if err != nil {
		log.Fatalf("failed to open save directory %s: %v", cfg.SavesDir(), err)
	}

	eng := game.NewEngine(s)
	eng.SetEmitFunc(func(name string, fields map[string]interface{}) {
		events.Emit("info", name, "", fields)
	})

	api.InitAuth()
	api.InitTLS()
	api.InitMetrics()
	api.InitAlerts()
	api.SetStoryName(s.Meta.Title)

	// Postgres is a journal mirror, not the source of truth. A miss here
	// degrades to the in-memory ring buffer and file saves.
	if pg, err := postgres.New(s.Meta.ID); err != nil {
		log.Printf("postgres unavailable, journal disabled: %v", err)
		api.SetPostgresState(false, true)
	} else {
		events.SetPostgresClient(pg)
		api.SetPostgresState(true, true)
	}

	api.SetEngine(eng)
	api.SetStore(store)
	api.SetEngineReady(true)
	api.StartAlertMonitor(30 * time.Second)

	hostname, _ := os.Hostname()
	events.Emit("info", "system.startup", "engine starting", map[string]interface{}{
		"story_id": s.Meta.ID,
		"version":  version.Version,
		"hostname": hostname,
		"pid":      os.Getpid(),
	})
	events.Emit("info", "story.loaded", "", map[string]interface{}{
		"story_id": s.Meta.ID,
		"title":    s.Meta.Title,
		"checksum": s.Checksum(),
		"scenes":   len(s.Scenes),
	})
	if slots, err := store.List(); err == nil && len(slots) > 0 {
		events.Emit("info", "system.startup_restore", "save slots available", map[string]interface{}{
			"slots":  len(slots),
			"newest": slots[0].Slot,
		})
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		events.Emit("info", "system.shutdown", "engine stopping", map[string]interface{}{
			"signal": sig.String(),
		})
		if pg := events.GetPostgresClient(); pg != nil {
			pg.Close()
		}
		os.Exit(0)
	}()

	port := cfg.APIPort()
	log.Printf("API listening on :%d\n", port)

	if err := api.ListenAndServe(port); err != nil {
		log.Fatalf("api server failed: %v", err)
	}
}
