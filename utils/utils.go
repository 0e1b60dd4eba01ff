package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseArguments converts command-line arguments into a map of flags and
// values. The scan/search command word, if present, is stored under
// "command".
func ParseArguments() map[string]string {
	args := make(map[string]string)

	command := ""
	commandIndex := -1
	for i := 1; i < len(os.Args); i++ {
		if os.Args[i] == "scan" || os.Args[i] == "search" {
			command = os.Args[i]
			commandIndex = i
			break
		}
	}

	if command != "" {
		args["command"] = command
	}

	for i := 1; i < len(os.Args); i++ {
		if i == commandIndex {
			continue
		}

		arg := os.Args[i]

		// Handle flags with equals sign (--key=value)
		if strings.HasPrefix(arg, "--") && strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			args[strings.TrimPrefix(parts[0], "--")] = parts[1]
			continue
		}

		// Handle flags without equals sign (--key value)
		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")
			if i+1 >= len(os.Args) || strings.HasPrefix(os.Args[i+1], "--") {
				args[flagName] = "true"
			} else {
				args[flagName] = os.Args[i+1]
				i++
			}
		}
	}

	return args
}

// ParseCutoff parses a maximum Hamming distance argument.
func ParseCutoff(s string) (int, error) {
	cutoff, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid cutoff %q: must be an integer", s)
	}
	if cutoff < 0 {
		return 0, fmt.Errorf("invalid cutoff %d: must not be negative", cutoff)
	}
	return cutoff, nil
}

// GetDefaultDatabasePath returns the default path for the database file,
// next to the executable.
func GetDefaultDatabasePath() string {
	exePath, err := os.Executable()
	if err != nil {
		return "images.db"
	}
	return filepath.Join(filepath.Dir(exePath), "images.db")
}

// PrintUsage outputs the command-line usage instructions.
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s <method> <cutoff> <file> <file>...\n", os.Args[0])
	fmt.Printf("  %s <file>\n", os.Args[0])
	fmt.Printf("  %s scan --folder=PATH [--database=PATH] [--prefix=NAME] [--force] [--debug] [--logfile=PATH]\n", os.Args[0])
	fmt.Printf("  %s search --image=PATH [--database=PATH] [--cutoff=N] [--prefix=NAME] [--debug] [--logfile=PATH]\n", os.Args[0])
	fmt.Printf("\nBatch comparison hashes every file in argument order and reports each\n")
	fmt.Printf("pair of earlier/later files within the given Hamming distance.\n")
	fmt.Printf("\nMethods: average_hash, dhash, dhash_vertical, phash, phash_simple, whash\n")
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  --folder      : Path to folder containing images to index\n")
	fmt.Printf("  --image       : Path to query image for search\n")
	fmt.Printf("  --database    : Path to database file (default: %s)\n", GetDefaultDatabasePath())
	fmt.Printf("  --cutoff      : Maximum Hamming distance for search matches\n")
	fmt.Printf("  --prefix      : Source prefix for indexing/filtering results\n")
	fmt.Printf("  --force       : Force rewrite existing entries during scan\n")
	fmt.Printf("  --debug       : Enable debug logging\n")
	fmt.Printf("  --logfile     : Path to log file\n")
}
