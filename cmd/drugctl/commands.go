package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/giygas/drugs-api/interfaces"
)

var limit int

// lookupCmd prints the full profile of one drug
var lookupCmd = &cobra.Command{
	Use:   "lookup [drug name]",
	Short: "Show the full profile of a drug",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		return run(cmd, func(ctx context.Context, svc interfaces.DrugQueryService) (any, error) {
			return svc.LookupDrug(ctx, name)
		})
	},
}

// searchCmd searches drugs by free text
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search drugs by name, category or symptom",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := strings.Join(args, " ")
		return run(cmd, func(ctx context.Context, svc interfaces.DrugQueryService) (any, error) {
			return svc.SearchDrugs(ctx, q, limit)
		})
	},
}

// categoriesCmd prints the category catalog
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List drug categories and catalog statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, svc interfaces.DrugQueryService) (any, error) {
			return svc.ListCategories(ctx)
		})
	},
}

// byCategoryCmd lists the drugs of one category
var byCategoryCmd = &cobra.Command{
	Use:   "by-category [category]",
	Short: "List the drugs of a category",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category := strings.Join(args, " ")
		return run(cmd, func(ctx context.Context, svc interfaces.DrugQueryService) (any, error) {
			return svc.DrugsByCategory(ctx, category, limit)
		})
	},
}

// commonCmd lists frequently used drugs
var commonCmd = &cobra.Command{
	Use:   "common",
	Short: "List commonly used drugs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, func(ctx context.Context, svc interfaces.DrugQueryService) (any, error) {
			return svc.CommonDrugs(ctx, limit)
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{searchCmd, byCategoryCmd, commonCmd} {
		cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (1-100, default depends on the command)")
	}
}
