package main

import (
	"context"
	"os"

	"github.com/SJTU-YONGFU-RESEARCH-GRP/spi-customizer/internal/checker"
	"github.com/SJTU-YONGFU-RESEARCH-GRP/spi-customizer/internal/config"
	"github.com/SJTU-YONGFU-RESEARCH-GRP/spi-customizer/internal/export"
	"github.com/SJTU-YONGFU-RESEARCH-GRP/spi-customizer/internal/logger"
	"github.com/SJTU-YONGFU-RESEARCH-GRP/spi-customizer/internal/schema"
	"github.com/SJTU-YONGFU-RESEARCH-GRP/spi-customizer/internal/store"
	"github.com/SJTU-YONGFU-RESEARCH-GRP/spi-customizer/internal/vcd"
)

func main() {
	if len(os.Args) < 2 {
		logger.Println("Usage: vcdtool <command> [arguments]")
		logger.Println("Commands: info, export, check, index")
		logger.Println("  info <vcd_file>")
		logger.Println("  export [-c config_file] [-o output_dir] <vcd_file>")
		logger.Println("  check -c config_file <vcd_file>")
		logger.Println("  index [-db db_file] [-label label] <vcd_files...>")
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "info":
		runInfo(os.Args[2:])
	case "export":
		runExport(os.Args[2:])
	case "check":
		runCheck(os.Args[2:])
	case "index":
		runIndex(os.Args[2:])
	default:
		logger.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func runInfo(args []string) {
	if len(args) < 1 {
		logger.Println("Usage: vcdtool info <vcd_file>")
		os.Exit(1)
	}

	doc, err := vcd.ParseFile(args[0])
	if err != nil {
		logger.Fatalf("Error parsing %s: %v", args[0], err)
	}

	logger.Printf("Timescale: %s\n", doc.Timescale)
	logger.Printf("Max time:  %d\n", doc.MaxTime)
	logger.Printf("Signals:   %d\n", len(doc.Signals()))
	for _, s := range doc.Signals() {
		logger.Printf("  %-4s %-30s %s[%d]  %d changes\n", s.ID, s.Name, s.Kind, s.Width, len(s.Changes))
	}
	for _, d := range doc.Diagnostics {
		logger.Printf("warning: %s\n", d)
	}
}

func runExport(args []string) {
	var configPath, outputDir string
	var inputs []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-c":
			if i+1 >= len(args) {
				logger.Println("Error: -c requires a file path")
				os.Exit(1)
			}
			configPath = args[i+1]
			i++
		case "-o":
			if i+1 >= len(args) {
				logger.Println("Error: -o requires a directory")
				os.Exit(1)
			}
			outputDir = args[i+1]
			i++
		default:
			inputs = append(inputs, args[i])
		}
	}
	if len(inputs) != 1 {
		logger.Println("Usage: vcdtool export [-c config_file] [-o output_dir] <vcd_file>")
		os.Exit(1)
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			logger.Fatalf("Error loading config: %v", err)
		}
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}

	doc, err := vcd.ParseFile(inputs[0])
	if err != nil {
		logger.Fatalf("Error parsing %s: %v", inputs[0], err)
	}
	for _, d := range doc.Diagnostics {
		logger.Printf("warning: %s\n", d)
	}

	table, err := doc.Project(cfg.Signals, cfg.Grid)
	if err != nil {
		logger.Fatalf("Error projecting signals: %v", err)
	}

	files, err := export.WriteAll(cfg.Output.Dir, doc, table, export.Options{
		TimingCSV:  cfg.Output.TimingCSV,
		SignalCSVs: cfg.Output.SignalCSVs,
		SummaryCSV: cfg.Output.SummaryCSV,
		Markdown:   cfg.Output.Markdown,
		JSON:       cfg.Output.JSON,
		Label:      cfg.Run.Label,
	})
	if err != nil {
		logger.Fatalf("Export failed: %v", err)
	}
	for _, f := range files {
		logger.Printf("Generated %s\n", f)
	}
}

func runCheck(args []string) {
	var configPath string
	var inputs []string

	for i := 0; i < len(args); i++ {
		if args[i] == "-c" {
			if i+1 >= len(args) {
				logger.Println("Error: -c requires a file path")
				os.Exit(1)
			}
			configPath = args[i+1]
			i++
		} else {
			inputs = append(inputs, args[i])
		}
	}
	if configPath == "" || len(inputs) != 1 {
		logger.Println("Usage: vcdtool check -c config_file <vcd_file>")
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("Error loading config: %v", err)
	}
	doc, err := vcd.ParseFile(inputs[0])
	if err != nil {
		logger.Fatalf("Error parsing %s: %v", inputs[0], err)
	}
	sch, err := schema.LoadFull(".")
	if err != nil {
		logger.Fatalf("Error loading schema: %v", err)
	}

	c := checker.New(doc, cfg, sch)
	if err := c.Run(context.Background()); err != nil {
		logger.Fatalf("Check aborted: %v", err)
	}

	for _, diag := range c.Diagnostics {
		level := "ERROR"
		if diag.Level == checker.LevelWarning {
			level = "WARNING"
		}
		if diag.Signal != "" {
			logger.Printf("%s: %s: [%s] %s\n", level, diag.Check, diag.Signal, diag.Message)
		} else {
			logger.Printf("%s: %s: %s\n", level, diag.Check, diag.Message)
		}
	}

	if c.Errors() {
		logger.Printf("\nFound %d issues.\n", len(c.Diagnostics))
		os.Exit(1)
	}
	logger.Println("No issues found.")
}

func runIndex(args []string) {
	dbPath := "waveforms.db"
	label := ""
	var inputs []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-db":
			if i+1 >= len(args) {
				logger.Println("Error: -db requires a file path")
				os.Exit(1)
			}
			dbPath = args[i+1]
			i++
		case "-label":
			if i+1 >= len(args) {
				logger.Println("Error: -label requires a value")
				os.Exit(1)
			}
			label = args[i+1]
			i++
		default:
			inputs = append(inputs, args[i])
		}
	}
	if len(inputs) < 1 {
		logger.Println("Usage: vcdtool index [-db db_file] [-label label] <vcd_files...>")
		os.Exit(1)
	}

	s, err := store.Open(dbPath)
	if err != nil {
		logger.Fatalf("Error opening store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	for _, file := range inputs {
		doc, err := vcd.ParseFile(file)
		if err != nil {
			logger.Printf("Error parsing %s: %v\n", file, err)
			continue
		}
		id, err := s.SaveRun(ctx, label, file, doc, export.Collect(doc))
		if err != nil {
			logger.Printf("Error indexing %s: %v\n", file, err)
			continue
		}
		logger.Printf("Indexed %s as run %s\n", file, id)
	}
}
