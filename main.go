package main

import (
	"log"

	"searchbyimage/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatalf("searchbyimage: %v", err)
	}
}
