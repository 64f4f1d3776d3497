package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"artemiz/internal/catalog"
)

var catalogJSON bool

var catalogCmd = &cobra.Command{
	Use:   "catalog [file]",
	Short: "Validate a catalog file and print a summary",
	Long: `Parses the given catalog YAML (or the embedded one when no file is given),
runs the same checks as the server and prints what it contains.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "print the parsed catalog as JSON")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	var (
		c   *catalog.Catalog
		err error
	)
	if len(args) == 1 {
		data, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return fmt.Errorf("read catalog: %w", readErr)
		}
		c, err = catalog.Parse(data)
	} else {
		c, err = catalog.Default()
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if catalogJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}
	fmt.Fprintf(out, "%s: %s\n", c.Club.Name, c.Club.Tagline)
	fmt.Fprintf(out, "courses:      %d\n", len(c.Options.Courses))
	fmt.Fprintf(out, "languages:    %d\n", len(c.Options.Languages))
	fmt.Fprintf(out, "interests:    %d\n", len(c.Options.Interests))
	fmt.Fprintf(out, "members:      %d\n", len(c.Members))
	fmt.Fprintf(out, "faculty:      %d\n", len(c.Faculty))
	fmt.Fprintf(out, "events:       %d\n", len(c.Events))
	return nil
}
