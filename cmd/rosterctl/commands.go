package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cura-agent/roster-service/internal/domain"
	"github.com/cura-agent/roster-service/internal/roster"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rosterctl",
		Short:         "Inspect Cura Agent roster seed data offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSeedCmd(), newSearchCmd())
	return root
}

func newSeedCmd() *cobra.Command {
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Work with roster seed files",
	}

	var file string
	validate := &cobra.Command{
		Use:     "validate",
		Short:   "Check a seed file for missing or duplicate ids and unknown roles",
		Example: `  rosterctl seed validate --file seeds.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seeds, err := roster.LoadSeedFile(file)
			if err != nil {
				return err
			}
			problems := seeds.Validate()
			for _, p := range problems {
				fmt.Fprintln(cmd.ErrOrStderr(), p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("%d problem(s) in %s", len(problems), file)
			}
			for _, c := range domain.Categories {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", c, len(seeds[c]))
			}
			return nil
		},
	}
	validate.Flags().StringVarP(&file, "file", "f", "", "seed file to validate")
	_ = validate.MarkFlagRequired("file")

	seed.AddCommand(validate)
	return seed
}

func newSearchCmd() *cobra.Command {
	var file, category, query string
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a roster search against seed data and print matches as JSON",
		Example: `  rosterctl search --category doctor --query cardio
  rosterctl search --file seeds.yaml --category nurses --query @cura.health`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, ok := domain.ParseCategory(category)
			if !ok {
				return fmt.Errorf("unknown category %q", category)
			}
			seeds := roster.DefaultSeeds()
			if file != "" {
				loaded, err := roster.LoadSeedFile(file)
				if err != nil {
					return err
				}
				if problems := loaded.Validate(); len(problems) > 0 {
					return errors.Join(problems...)
				}
				seeds = loaded
			}

			matches := roster.New(c, seeds[c]).Search(query)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(matches)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (defaults to the built-in staff)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "doctor, nurse or receptionist")
	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive search text")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}
