package main

import (
	"log"

	"github.com/bambuco/boa/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ boad failed to start: %v", err)
	}
}
