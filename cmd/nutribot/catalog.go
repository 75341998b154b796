package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vbonduro/nutribot/internal/catalog"
)

var catalogFormat string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the snack catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, err := loadCatalog(loadConfig())
		if err != nil {
			return err
		}
		return printCatalog(cmd.OutOrStdout(), cat, catalogFormat)
	},
}

func init() {
	catalogCmd.Flags().StringVarP(&catalogFormat, "output", "o", "table", "Output format (table, json)")
	rootCmd.AddCommand(catalogCmd)
}

func printCatalog(w io.Writer, cat *catalog.Catalog, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cat.All())
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tKCAL\tPROTEIN (g)\tTAGS")
		for _, s := range cat.All() {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
				s.ID, s.Name, s.Kcal, strconv.FormatFloat(s.Protein, 'f', -1, 64), strings.Join(s.Tags, ", "))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
