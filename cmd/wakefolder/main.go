package main

import (
	"github.com/despertad/wakefolder/internal/app"
	"github.com/despertad/wakefolder/internal/config"
)

func main() {
	cfg := config.GetConfig()

	app.Run(cfg)
}
