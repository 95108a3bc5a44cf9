package main

import (
	"log"

	"github.com/MrSnakeDoc/revisit/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ revisit failed to start: %v", err)
	}
}
