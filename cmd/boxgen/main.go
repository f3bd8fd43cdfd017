package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/danmuck/slotbox/internal/config"
	"github.com/danmuck/slotbox/internal/eeprom"
	"github.com/danmuck/slotbox/internal/persist"
)

func main() {
	kind := flag.String("kind", "daemon", "config kind: daemon|client")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind cmd path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	image := flag.String("image", "", "create a formatted EEPROM image at this path")
	size := flag.Uint("size", 2048, "image size in bytes for -image")
	inspect := flag.String("inspect", "", "print the store header and profile table of an image")
	flag.Parse()

	switch {
	case *inspect != "":
		inspectImage(*inspect)
	case *image != "":
		createImage(*image, *size)
	case *validate:
		validateConfig(*kind, *input)
	default:
		writeTemplate(*kind, *output, *force)
	}
}

func defaultPath(kind string) string {
	switch kind {
	case "daemon":
		return "cmd/slotboxd/config.toml"
	case "client":
		return "cmd/boxctl/config.toml"
	default:
		log.Fatalf("unknown kind: %s", kind)
		return ""
	}
}

func validateConfig(kind, input string) {
	path := input
	if path == "" {
		path = defaultPath(kind)
	}

	switch kind {
	case "daemon":
		if _, err := config.LoadDaemonConfig(path); err != nil {
			log.Fatal(err)
		}
	case "client":
		if _, err := config.LoadClientConfig(path); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown kind: %s", kind)
	}
	log.Printf("Validated %s config at %s", kind, path)
}

func writeTemplate(kind, output string, force bool) {
	target := output
	if target == "" {
		target = defaultPath(kind)
	}

	if err := config.WriteTemplate(target, kind, force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", kind, target)
}

func createImage(path string, size uint) {
	if size <= 0 || size > 0xFFFF {
		log.Fatalf("image size %d out of range", size)
	}
	dev, err := eeprom.CreateFile(path, eeprom.Pointer(size))
	if err != nil {
		log.Fatal(err)
	}
	store, err := persist.Format(dev)
	if err != nil {
		log.Fatal(err)
	}
	if err := dev.Close(); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %d byte image to %s (%d profile slots, %d bytes each)",
		size, path, persist.MaxProfiles, store.Capacity())
}

func inspectImage(path string) {
	dev, err := eeprom.OpenFile(path)
	if err != nil {
		log.Fatal(err)
	}
	defer dev.Close()

	store, err := persist.Open(dev)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Image %s: %d bytes, active profile %d, %d bytes used",
		path, dev.Len(), store.Active(), store.UsedBytes())
	for _, p := range store.ListProfiles() {
		state := "free"
		if p.InUse {
			state = fmt.Sprintf("%d/%d bytes used", p.Used, p.Capacity)
		}
		marker := " "
		if p.Active {
			marker = "*"
		}
		log.Printf("  profile %d%s %s", p.ID, marker, state)
	}
}
