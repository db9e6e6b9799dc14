package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oarkflow/clusteracl"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "validate":
		handleValidate()
	case "convert":
		handleConvert()
	case "resolve":
		handleResolve()
	case "selectors":
		handleSelectors()
	case "match":
		handleMatch()
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("clusteracl-config - Configuration tool for clusteracl")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  clusteracl-config validate <file>             - Validate configuration")
	fmt.Println("  clusteracl-config convert <input> <output>    - Convert between formats")
	fmt.Println("  clusteracl-config resolve <file> <path>...    - Print effective ACLs for paths")
	fmt.Println("  clusteracl-config selectors <file>            - Print parsed group selectors")
	fmt.Println("  clusteracl-config match <expr> <value>        - Test a selector against a value")
	fmt.Println()
	fmt.Println("Supported formats: .rules, .yaml, .yml, .json")
}

func handleValidate() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: clusteracl-config validate <file>")
		os.Exit(1)
	}

	cfg, err := loadConfig(os.Args[2])
	if err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	provider, err := cfg.BuildProvider()
	if err != nil {
		fmt.Printf("Invalid rule table: %v\n", err)
		os.Exit(1)
	}
	groups, err := cfg.BuildGroups()
	if err != nil {
		fmt.Printf("Invalid groups: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Configuration is valid\n")
	fmt.Printf("  Version: %d\n", cfg.Version)
	fmt.Printf("  Rules:   %d\n", len(provider.Rules()))
	fmt.Printf("  Groups:  %d\n", len(groups))
}

func handleConvert() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: clusteracl-config convert <input> <output>")
		os.Exit(1)
	}

	inputFile := os.Args[2]
	outputFile := os.Args[3]

	cfg, err := loadConfig(inputFile)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := saveConfig(cfg, outputFile); err != nil {
		fmt.Printf("Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Converted %s -> %s\n", inputFile, outputFile)
}

func handleResolve() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: clusteracl-config resolve <file> <path>...")
		os.Exit(1)
	}

	cfg, err := loadConfig(os.Args[2])
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	provider, err := cfg.BuildProvider()
	if err != nil {
		fmt.Printf("Error building provider: %v\n", err)
		os.Exit(1)
	}

	for _, path := range os.Args[3:] {
		fmt.Printf("%s\n", path)
		for _, e := range provider.Resolve(path) {
			fmt.Printf("  %-5s %s\n", e.Perms, e.Identity)
		}
	}
}

func handleSelectors() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: clusteracl-config selectors <file>")
		os.Exit(1)
	}

	cfg, err := loadConfig(os.Args[2])
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	parsed, err := cfg.BuildGroups()
	if err != nil {
		fmt.Printf("Error building groups: %v\n", err)
		os.Exit(1)
	}
	for _, g := range parsed {
		fmt.Printf("%s (%s)\n", g.ID, g.Name)
		for _, s := range g.Selectors {
			fmt.Printf("  %s\n", s.PrettyString())
		}
	}
}

func handleMatch() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: clusteracl-config match <expr> <value>")
		os.Exit(1)
	}

	expr := os.Args[2]
	value := os.Args[3]

	sel, err := clusteracl.ParseSelector(expr)
	if err != nil {
		fmt.Printf("Error parsing selector: %v\n", err)
		os.Exit(1)
	}
	if sel == nil {
		fmt.Printf("Not a selector: %q\n", expr)
		os.Exit(1)
	}

	fmt.Printf("%s matches %q: %v\n", sel.PrettyString(), value, sel.Matches(value))
}

func loadConfig(filename string) (*clusteracl.Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".rules":
		return clusteracl.NewDSLParser().Parse(data)
	case ".yaml", ".yml":
		return clusteracl.NewConfigLoader().LoadYAML(data)
	case ".json":
		return clusteracl.NewConfigLoader().LoadJSON(data)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func saveConfig(cfg *clusteracl.Config, filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))

	var data []byte
	var err error

	switch ext {
	case ".yaml", ".yml":
		data, err = cfg.ToYAML()
	case ".json":
		data, err = cfg.ToJSON()
	case ".rules":
		data, err = clusteracl.NewDSLEncoder().Encode(cfg)
	default:
		return fmt.Errorf("unsupported file format: %s", ext)
	}

	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}
