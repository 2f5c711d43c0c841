package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handiism/emoji-kitchen-dl/internal/config"
	"github.com/handiism/emoji-kitchen-dl/internal/tui"
	"github.com/joho/godotenv"
)

func main() {
	configFlag := flag.String("config", "", "Path to config file")
	flag.Parse()

	_ = godotenv.Load()

	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		if settings, err = config.Load(*configFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if err := settings.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
