package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"imagehasher/comparer"
	"imagehasher/config"
	"imagehasher/database"
	"imagehasher/imagehash"
	"imagehasher/imageloader"
	"imagehasher/logging"
	"imagehasher/scanner"
	"imagehasher/signalhandler"
	"imagehasher/utils"
)

func main() {
	signalhandler.SetupHandler()
	runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Warning: invalid environment configuration: %v\n", err)
	}

	if len(os.Args) < 2 {
		utils.PrintUsage()
		os.Exit(1)
	}

	// The scan/search subcommands take --flag arguments; everything else is
	// the positional batch-comparison surface.
	switch os.Args[1] {
	case "scan", "search":
		runIndexedCommand(cfg)
	default:
		runBatchCommand(cfg)
	}
}

// runBatchCommand handles the positional modes:
//
//	imagehasher <method> <cutoff> <file>...
//	imagehasher <file>
func runBatchCommand(cfg config.Config) {
	if len(os.Args) == 2 {
		printFileSummary(os.Args[1])
		return
	}

	if len(os.Args) < 4 {
		utils.PrintUsage()
		os.Exit(1)
	}

	method := os.Args[1]
	cutoff, err := utils.ParseCutoff(os.Args[2])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	files := os.Args[3:]

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = signalhandler.GetOptimalProcs()
	}

	matches, err := comparer.CompareFiles(comparer.BatchOptions{
		Method:     method,
		Cutoff:     cutoff,
		Files:      files,
		MaxWorkers: maxWorkers,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		if errors.Is(err, imagehash.ErrUnknownMethod) {
			fmt.Printf("Methods: %s\n", strings.Join(imagehash.MethodNames(), ", "))
		}
		os.Exit(1)
	}

	for _, m := range matches {
		fmt.Printf("%d %s %s\n", m.Distance, m.File, m.Prior)
	}
}

// printFileSummary prints the average and difference hashes of one file.
func printFileSummary(path string) {
	img, err := imageloader.LoadImage(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	for _, name := range []string{"average_hash", "dhash"} {
		method, err := imagehash.MethodByName(name)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		h, err := method(img)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s %s\n", name, h.Hex())
	}
}

// runIndexedCommand dispatches the database-backed scan/search commands.
func runIndexedCommand(cfg config.Config) {
	args := utils.ParseArguments()
	command := args["command"]

	dbPath := cfg.DatabasePath
	if dbPath == "" {
		dbPath = utils.GetDefaultDatabasePath()
	}
	if customDB, ok := args["database"]; ok && customDB != "" {
		dbPath = customDB
	} else if customDB, ok := args["db"]; ok && customDB != "" {
		// Allow --db as an alias for --database.
		dbPath = customDB
	}

	debugMode := false
	if _, ok := args["debug"]; ok {
		debugMode = true
		logPath := cfg.LogFile
		if customLogPath, ok := args["logfile"]; ok && customLogPath != "" {
			logPath = customLogPath
		}
		if err := logging.SetupLogger(logPath); err != nil {
			fmt.Printf("Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Printf("Debug mode enabled. Logging to: %s\n", logPath)
		}
		defer logging.CloseLogger()
	}

	switch command {
	case "scan":
		handleScanCommand(args, dbPath, debugMode, cfg)
	case "search":
		handleSearchCommand(args, dbPath, debugMode, cfg)
	default:
		utils.PrintUsage()
		os.Exit(1)
	}
}

func handleScanCommand(args map[string]string, dbPath string, debugMode bool, cfg config.Config) {
	folderPath, hasFolder := args["folder"]
	if !hasFolder || folderPath == "" {
		fmt.Println("Error: Missing folder path (use --folder=PATH)")
		os.Exit(1)
	}

	folderInfo, err := os.Stat(folderPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Fatalf("Folder path does not exist: %s", folderPath)
		}
		log.Fatalf("Cannot access folder path: %s (%v)", folderPath, err)
	}
	if !folderInfo.IsDir() {
		log.Fatalf("Path is not a directory: %s", folderPath)
	}

	sourcePrefix := args["prefix"]

	forceRewrite := false
	if _, ok := args["force"]; ok {
		forceRewrite = true
	}

	startTime := time.Now()

	// Initialize database with retry logic; sqlite may hold a transient
	// lock from a previous run.
	var db *sql.DB
	const maxRetries = 3
	for i := 0; i < maxRetries; i++ {
		db, err = database.InitDatabase(dbPath)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			log.Printf("Error initializing database (attempt %d/%d): %v - retrying...",
				i+1, maxRetries, err)
			time.Sleep(time.Second * time.Duration(i+1))
		} else {
			log.Fatalf("Error initializing database after %d attempts: %v", maxRetries, err)
		}
	}
	defer db.Close()

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = signalhandler.GetOptimalProcs()
	}

	scanOptions := scanner.ScanOptions{
		FolderPath:   folderPath,
		SourcePrefix: sourcePrefix,
		ForceRewrite: forceRewrite,
		DebugMode:    debugMode,
		DbPath:       dbPath,
		MaxWorkers:   maxWorkers,
		HashSize:     cfg.HashSize,
	}

	if err := scanner.ScanAndStoreFolder(db, scanOptions); err != nil {
		log.Fatalf("Error scanning folder: %v", err)
	}

	duration := time.Since(startTime)
	fmt.Printf("\nScan completed successfully!\n")
	fmt.Printf("Total execution time: %v\n", duration)
	fmt.Printf("Database: %s\n", dbPath)

	stats, err := database.GetScanStats(db, sourcePrefix)
	if err == nil && stats != nil {
		fmt.Printf("\nSummary:\n")
		fmt.Printf("- Total images indexed: %d\n", stats.TotalImages)
		fmt.Printf("- Unique average hashes: %d\n", stats.UniqueHashes)
	}
}

func handleSearchCommand(args map[string]string, dbPath string, debugMode bool, cfg config.Config) {
	queryPath, hasQuery := args["image"]
	if !hasQuery || queryPath == "" {
		fmt.Println("Error: Missing query image path (use --image=PATH)")
		os.Exit(1)
	}

	cutoff := cfg.DefaultCutoff
	if cutoffStr, ok := args["cutoff"]; ok {
		parsed, err := utils.ParseCutoff(cutoffStr)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		} else {
			cutoff = parsed
		}
	}

	sourcePrefix := args["prefix"]

	if _, err := os.Stat(queryPath); os.IsNotExist(err) {
		log.Fatalf("Query image does not exist: %s", queryPath)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		log.Fatalf("Database does not exist: %s. Run scan command first.", dbPath)
	}

	startTime := time.Now()

	db, err := database.OpenDatabase(dbPath)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	fmt.Println("Searching for similar images...")
	if sourcePrefix != "" {
		fmt.Printf("Filtering by source prefix: %s\n", sourcePrefix)
	}

	matches, err := comparer.SearchDatabase(db, comparer.SearchOptions{
		QueryPath:    queryPath,
		Cutoff:       cutoff,
		SourcePrefix: sourcePrefix,
		DebugMode:    debugMode,
		HashSize:     cfg.HashSize,
	})
	if err != nil {
		log.Fatalf("Error finding similar images: %v", err)
	}

	fmt.Println("\nTop Matches:")
	limit := 5

	if len(matches) == 0 {
		fmt.Println("No matches found.")
	} else {
		for i := 0; i < limit && i < len(matches); i++ {
			fmt.Printf("%d. Image: %s\n", i+1, matches[i].Path)
			if matches[i].SourcePrefix != "" {
				fmt.Printf("   Source: %s\n", matches[i].SourcePrefix)
			}
			fmt.Printf("   Distance: %d (%s)\n", matches[i].Distance, matches[i].Method)
		}
	}

	duration := time.Since(startTime)
	fmt.Printf("\nTotal search time: %v\n", duration)
}
