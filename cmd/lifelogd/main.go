package main

import (
	"log"

	"github.com/lifelogd/lifelogd/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ lifelogd failed to start: %v", err)
	}
}
