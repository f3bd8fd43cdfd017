package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danmuck/slotbox/internal/box"
	"github.com/danmuck/slotbox/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to slotboxd config.toml")
	flag.Parse()

	logging.ConfigureRuntime()

	cfg := box.DefaultServiceConfig()
	if *configPath != "" {
		loaded, err := loadServiceConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "slotboxd: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	svc := box.NewServiceWithConfig(cfg)
	if err := svc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "slotboxd: %v\n", err)
		os.Exit(1)
	}
}
