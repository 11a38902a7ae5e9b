package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitConfigError  = 3
	ExitStorageError = 4
	ExitEmptyHarvest = 5
	ExitExportError  = 6
)

func main() {
	_ = godotenv.Load(".env")
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "harvest":
		return runHarvest(cmdArgs)
	case "tiles":
		return runTiles(cmdArgs)
	case "probe":
		return runProbe(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: wfsharvest <command> [options]

Commands:
  harvest   Harvest every feature of a WFS layer by adaptive tiling and
            export the merged dataset as GeoJSON and CSV
  tiles     Print the initial tile grid for a bounding box
  probe     Ask the service how many features a bounding box holds

Run 'wfsharvest <command> -h' for command-specific help.`)
}
