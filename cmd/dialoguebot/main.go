package main

import (
	"flag"
	"log"

	"dialoguebot/internal/app"
)

func main() {
	envFile := flag.String("env-file", ".env", "dotenv file to load before reading the environment")
	checkConfig := flag.Bool("check-config", false, "validate the configuration and exit")
	flag.Parse()

	if *checkConfig {
		cfg, err := app.LoadConfig(*envFile)
		if err != nil {
			log.Fatal(err)
		}
		mode := "polling"
		if cfg.WebhookMode {
			mode = "webhook"
		}
		log.Printf("Configuration is valid (mode: %s, memory journal: %t)", mode, cfg.UseMemoryJournal)
		return
	}

	application, err := app.New(*envFile)
	if err != nil {
		log.Fatal(err)
	}

	// Run blocks until SIGINT or SIGTERM.
	if err := application.Run(); err != nil {
		log.Fatal(err)
	}
}
