package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"

	"dialoguebot/internal/app"
	"dialoguebot/migrations"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run starts a throwaway ClickHouse, migrates it and runs the bot against it.
func run() error {
	ctx := context.Background()

	log.Println("Starting ClickHouse testcontainer...")
	container, err := clickhouse.Run(ctx,
		"clickhouse/clickhouse-server:latest",
		clickhouse.WithUsername("default"),
		clickhouse.WithPassword("devpassword"),
		clickhouse.WithDatabase("default"),
	)
	if err != nil {
		return err
	}
	defer func() {
		log.Println("Stopping ClickHouse container...")
		if err := container.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate container: %v", err)
		}
	}()

	host, err := container.Host(ctx)
	if err != nil {
		return err
	}
	port, err := container.MappedPort(ctx, "9000/tcp")
	if err != nil {
		return err
	}
	log.Printf("ClickHouse started at %s:%s", host, port.Port())

	db, err := sql.Open("clickhouse", migrations.DSN(host, port.Port(), "default", "default", "devpassword", false))
	if err != nil {
		return err
	}
	if err := migrations.Run(db, "up"); err != nil {
		db.Close()
		return err
	}
	db.Close()

	os.Setenv("CLICKHOUSE_HOST", host)
	os.Setenv("CLICKHOUSE_PORT", port.Port())
	os.Setenv("CLICKHOUSE_DATABASE", "default")
	os.Setenv("CLICKHOUSE_USER", "default")
	os.Setenv("CLICKHOUSE_PASSWORD", "devpassword")
	os.Setenv("CLICKHOUSE_USE_TLS", "false")
	os.Setenv("USE_MEMORY_JOURNAL", "false")
	os.Setenv("WEBHOOK_MODE", "false")
	if os.Getenv("DEBUG") == "" {
		os.Setenv("DEBUG", "true")
	}

	if os.Getenv("TELEGRAM_BOT_TOKEN") == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set. Please set it in your .env file or environment.")
	}

	application, err := app.New()
	if err != nil {
		return err
	}
	// Run blocks until SIGINT or SIGTERM.
	return application.Run()
}
