// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"storefront-workers/pkg/registry"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)

	exportPath := exportCmd.String("path", "configs/activity-registry.json", "Path to write the registry file")
	validatePath := validateCmd.String("path", "configs/activity-registry.json", "Path to registry file")
	listPath := listCmd.String("path", "", "Registry file to list (defaults to the built-in activities)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "export":
		_ = exportCmd.Parse(os.Args[2:])
		if err := registry.SaveRegistry(registry.Default(), *exportPath); err != nil {
			fmt.Printf("Error exporting registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *exportPath)

	case "validate":
		_ = validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(*validatePath)
		if err != nil {
			fmt.Printf("Failed to load registry: %v\n", err)
			os.Exit(1)
		}
		if err := reg.Validate(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		if missing := missingActivities(reg); len(missing) > 0 {
			fmt.Printf("Registry is out of date, missing task types: %v\n", missing)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))

	case "list":
		_ = listCmd.Parse(os.Args[2:])
		reg := registry.Default()
		if *listPath != "" {
			loaded, err := registry.LoadRegistry(*listPath)
			if err != nil {
				fmt.Printf("Failed to load registry: %v\n", err)
				os.Exit(1)
			}
			reg = loaded
		}
		for _, a := range reg.Activities {
			fmt.Printf("%-22s %-30s timeout=%s retries=%d\n", a.TaskType, a.DisplayName, a.Timeout, a.Retries)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

// missingActivities lists built-in task types absent from reg.
func missingActivities(reg *registry.ActivityRegistry) []string {
	var missing []string
	for _, a := range registry.Default().Activities {
		if _, ok := reg.Find(a.TaskType); !ok {
			missing = append(missing, a.TaskType)
		}
	}
	return missing
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  export    Write the built-in catalog activities to a registry file
  validate  Validate a registry file against the built-in activities
  list      Print activities
  help      Show this help message

Examples:
  registry-updater export -path configs/activity-registry.json
  registry-updater validate -path configs/activity-registry.json
  registry-updater list

Use 'registry-updater <command> -h' for more information about a command.
`)
}
