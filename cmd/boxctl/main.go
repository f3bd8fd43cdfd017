package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/danmuck/slotbox/internal/command"
	"github.com/danmuck/slotbox/internal/config"
	"github.com/danmuck/slotbox/internal/logging"
)

const defaultAddr = "127.0.0.1:21314"

func main() {
	addr := flag.String("addr", "", "box command endpoint (host:port)")
	configPath := flag.String("config", "", "path to boxctl config.toml")
	timeout := flag.Duration("timeout", 0, "request timeout")
	flag.Usage = usage
	flag.Parse()

	logging.ConfigureRuntime()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	target, reqTimeout, err := resolveTarget(*addr, *configPath, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "boxctl: %v\n", err)
		os.Exit(1)
	}

	c := NewClient(target, reqTimeout)
	defer c.Close()

	out, err := runCommand(c, args[0], args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "boxctl: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}

// resolveTarget layers the endpoint sources: built-in default, then
// config file, then explicit flags.
func resolveTarget(addrFlag, configPath string, timeoutFlag time.Duration) (string, time.Duration, error) {
	target := defaultAddr
	timeout := 5 * time.Second

	if configPath != "" {
		cfg, err := config.LoadClientConfig(configPath)
		if err != nil {
			return "", 0, err
		}
		target = cfg.Addr
		if strings.TrimSpace(cfg.Timeout) != "" {
			d, err := time.ParseDuration(cfg.Timeout)
			if err != nil {
				return "", 0, fmt.Errorf("config timeout invalid: %w", err)
			}
			timeout = d
		}
	}
	if strings.TrimSpace(addrFlag) != "" {
		target = strings.TrimSpace(addrFlag)
	}
	if timeoutFlag > 0 {
		timeout = timeoutFlag
	}
	return target, timeout, nil
}

func runCommand(c *Client, name string, args []string) (string, error) {
	switch name {
	case "read":
		return c.ReadValue(command.OpReadValue, args)
	case "sys-read":
		return c.ReadValue(command.OpReadSystemValue, args)
	case "write":
		return c.WriteValue(command.OpSetValue, args)
	case "sys-write":
		return c.WriteValue(command.OpSetSystemValue, args)
	case "create":
		return c.CreateObject(args)
	case "delete":
		return c.DeleteObject(args)
	case "list":
		return c.ListObjects()
	case "free":
		return c.NextFreeSlot(args)
	case "log":
		return c.LogValues()
	case "profiles":
		return c.ListProfiles()
	case "profile-create":
		return c.CreateProfile()
	case "profile-delete":
		return c.DeleteProfile(args)
	case "activate":
		return c.ActivateProfile(args)
	case "reset":
		return c.Reset(len(args) > 0 && args[0] == "erase")
	case "raw":
		return c.Raw(args)
	default:
		return "", fmt.Errorf("unknown command %q", name)
	}
}

func idArg(arg, what string) (byte, error) {
	v, err := strconv.ParseUint(arg, 0, 7)
	if err != nil {
		return 0, fmt.Errorf("%s invalid: %w", what, err)
	}
	return byte(v), nil
}

func typeArg(arg string) (byte, error) {
	v, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("type invalid: %w", err)
	}
	if v == 0 {
		return 0, fmt.Errorf("type 0 is reserved")
	}
	return byte(v), nil
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: boxctl [flags] <command> [args]

commands:
  read <chain>                  read a value object
  write <chain> <hex>           write a value payload, echoing the readback
  create <chain> <type> [hex]   create an object from a definition payload
  delete <chain>                delete an object and its descendants
  list                          list the active profile's definition records
  free [chain]                  next free slot at root or inside a container
  log                           read every logged value
  profiles                      list profile slots
  profile-create                allocate a profile
  profile-delete <id>           delete a profile
  activate <id|none>            switch the active profile
  reset [erase]                 restart the tree, optionally erasing profiles
  sys-read <chain>              read a system value
  sys-write <chain> <hex>       write a system value
  raw <hex...>                  send raw request bytes

flags:
`)
	flag.PrintDefaults()
}
