package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// Suggestion flag names
const (
	flagSuggestionQuery      = "query"
	flagSuggestionEntityType = "entity-type"
	flagSuggestionCompanyID  = "company-id"
)

// GetSuggestionsCmd returns the suggestion command group
func GetSuggestionsCmd() *cobra.Command {
	suggestionsCmd := &cobra.Command{
		Use:   "suggestions",
		Short: "Fetch cached search suggestions and smart filters",
	}

	suggestionsCmd.AddCommand(searchSuggestionsCmd())
	suggestionsCmd.AddCommand(smartFiltersCmd())

	return suggestionsCmd
}

func searchSuggestionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Get search suggestions for a query",
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, _ := cmd.Flags().GetString(flagSuggestionQuery)
			entityType, _ := cmd.Flags().GetString(flagSuggestionEntityType)
			companyID, _ := cmd.Flags().GetString(flagSuggestionCompanyID)

			suggestions, err := apiClient.SearchSuggestions(context.Background(), query, entityType, companyID)
			if err != nil {
				return fmt.Errorf("error getting search suggestions: %w", err)
			}
			return printJSON(suggestions)
		},
	}

	cmd.Flags().StringP(flagSuggestionQuery, "q", "", "Search query")
	cmd.Flags().StringP(flagSuggestionEntityType, "e", "", "Entity type")
	cmd.Flags().String(flagSuggestionCompanyID, "", "Company ID")
	_ = cmd.MarkFlagRequired(flagSuggestionQuery)
	_ = cmd.MarkFlagRequired(flagSuggestionEntityType)
	_ = cmd.MarkFlagRequired(flagSuggestionCompanyID)

	return cmd
}

func smartFiltersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Get the smart filter set for an entity type",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entityType, _ := cmd.Flags().GetString(flagSuggestionEntityType)
			companyID, _ := cmd.Flags().GetString(flagSuggestionCompanyID)

			filters, err := apiClient.SmartFilters(context.Background(), entityType, companyID)
			if err != nil {
				return fmt.Errorf("error getting smart filters: %w", err)
			}
			return printJSON(filters)
		},
	}

	cmd.Flags().StringP(flagSuggestionEntityType, "e", "", "Entity type")
	cmd.Flags().String(flagSuggestionCompanyID, "", "Company ID")
	_ = cmd.MarkFlagRequired(flagSuggestionEntityType)
	_ = cmd.MarkFlagRequired(flagSuggestionCompanyID)

	return cmd
}
