package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	schemaOut   string
	schemaCheck bool
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print or export the section/table schema",
	Long: `Print the active schema as YAML. With --out, write it to a file to use
as a starting point for --schema. With --check, load and validate the
schema and print a summary instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()

		if schemaCheck {
			subs := 0
			for _, ch := range e.schema.Sections.Chapters {
				subs += len(ch.Children)
			}
			fmt.Fprintf(w, "schema ok: %d chapters, %d subchapters, %d tables\n",
				len(e.schema.Sections.Chapters), subs, len(e.schema.Tables))
			return nil
		}

		data, err := e.schema.Marshal()
		if err != nil {
			return err
		}
		if schemaOut == "" {
			_, err = w.Write(data)
			return err
		}
		if err := os.WriteFile(schemaOut, data, 0o644); err != nil {
			return fmt.Errorf("write schema: %w", err)
		}
		fmt.Fprintf(w, "wrote %s\n", schemaOut)
		return nil
	},
}

func init() {
	schemaCmd.Flags().StringVar(&schemaOut, "out-file", "", "write the schema to this path instead of stdout")
	schemaCmd.Flags().BoolVar(&schemaCheck, "check", false, "validate the schema and print a summary")
}
