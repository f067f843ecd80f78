package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sitegrid/sitegrid/internal/types"
)

// Bulk operation flag names
const (
	flagBulkOpID         = "id"
	flagBulkOpEntityType = "entity-type"
	flagBulkOpOperation  = "operation"
	flagBulkOpIDs        = "ids"
	flagBulkOpChanges    = "changes"
	flagBulkOpCreatedBy  = "created-by"
	flagBulkOpCompanyID  = "company-id"
	flagBulkOpStatus     = "status"
	flagBulkOpPage       = "page"
	flagBulkOpLimit      = "limit"
)

// GetBulkOpsCmd returns the bulk operation command group
func GetBulkOpsCmd() *cobra.Command {
	bulkOpsCmd := &cobra.Command{
		Use:   "bulk-ops",
		Short: "Manage bulk operations",
	}

	bulkOpsCmd.AddCommand(listBulkOpsCmd())
	bulkOpsCmd.AddCommand(getBulkOpCmd())
	bulkOpsCmd.AddCommand(createBulkOpCmd())
	bulkOpsCmd.AddCommand(executeBulkOpCmd())
	bulkOpsCmd.AddCommand(cancelBulkOpCmd())

	return bulkOpsCmd
}

func listBulkOpsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bulk operations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			queryParams := url.Values{}
			if createdBy, _ := cmd.Flags().GetString(flagBulkOpCreatedBy); createdBy != "" {
				queryParams.Set("createdBy", createdBy)
			}
			if status, _ := cmd.Flags().GetString(flagBulkOpStatus); status != "" {
				queryParams.Set("status", status)
			}
			if entityType, _ := cmd.Flags().GetString(flagBulkOpEntityType); entityType != "" {
				queryParams.Set("entityType", entityType)
			}
			if page, _ := cmd.Flags().GetInt(flagBulkOpPage); page > 0 {
				queryParams.Set("page", strconv.Itoa(page))
			}
			if limit, _ := cmd.Flags().GetInt(flagBulkOpLimit); limit > 0 {
				queryParams.Set("limit", strconv.Itoa(limit))
			}

			ops, pagination, err := apiClient.ListBulkOperations(context.Background(), queryParams)
			if err != nil {
				return fmt.Errorf("error listing bulk operations: %w", err)
			}

			return printJSON(map[string]interface{}{
				"bulkOperations": ops,
				"pagination":     pagination,
			})
		},
	}

	cmd.Flags().String(flagBulkOpCreatedBy, "", "Filter by creator")
	cmd.Flags().String(flagBulkOpStatus, "", "Filter by status (pending, processing, completed, failed)")
	cmd.Flags().String(flagBulkOpEntityType, "", "Filter by entity type")
	cmd.Flags().Int(flagBulkOpPage, 0, "Page number for pagination")
	cmd.Flags().Int(flagBulkOpLimit, 0, "Items per page")

	return cmd
}

func getBulkOpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get a bulk operation by its ID",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString(flagBulkOpID)

			op, err := apiClient.GetBulkOperation(context.Background(), id)
			if err != nil {
				return fmt.Errorf("error getting bulk operation: %w", err)
			}
			return printJSON(op)
		},
	}

	cmd.Flags().StringP(flagBulkOpID, "i", "", "Bulk operation ID")
	_ = cmd.MarkFlagRequired(flagBulkOpID)

	return cmd
}

func createBulkOpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new bulk operation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entityType, _ := cmd.Flags().GetString(flagBulkOpEntityType)
			operation, _ := cmd.Flags().GetString(flagBulkOpOperation)
			selectedIDs, _ := cmd.Flags().GetStringSlice(flagBulkOpIDs)
			changesJSON, _ := cmd.Flags().GetString(flagBulkOpChanges)
			createdBy, _ := cmd.Flags().GetString(flagBulkOpCreatedBy)
			companyID, _ := cmd.Flags().GetString(flagBulkOpCompanyID)

			req := types.CreateBulkOperationRequest{
				EntityType:  entityType,
				Operation:   operation,
				SelectedIDs: selectedIDs,
				CreatedBy:   createdBy,
				CompanyID:   companyID,
			}
			if changesJSON != "" {
				if err := json.Unmarshal([]byte(changesJSON), &req.Changes); err != nil {
					return fmt.Errorf("invalid changes JSON: %w", err)
				}
			}

			op, err := apiClient.CreateBulkOperation(context.Background(), req)
			if err != nil {
				return fmt.Errorf("error creating bulk operation: %w", err)
			}
			return printJSON(op)
		},
	}

	cmd.Flags().StringP(flagBulkOpEntityType, "e", "", "Entity type to mutate (e.g. tasks)")
	cmd.Flags().StringP(flagBulkOpOperation, "o", "", "Operation to apply (update, delete)")
	cmd.Flags().StringSlice(flagBulkOpIDs, nil, "Comma separated record IDs")
	cmd.Flags().StringP(flagBulkOpChanges, "c", "", "Field changes as JSON (required for update)")
	cmd.Flags().String(flagBulkOpCreatedBy, "", "User creating the operation")
	cmd.Flags().String(flagBulkOpCompanyID, "", "Company the operation is scoped to")
	_ = cmd.MarkFlagRequired(flagBulkOpEntityType)
	_ = cmd.MarkFlagRequired(flagBulkOpOperation)
	_ = cmd.MarkFlagRequired(flagBulkOpIDs)
	_ = cmd.MarkFlagRequired(flagBulkOpCreatedBy)
	_ = cmd.MarkFlagRequired(flagBulkOpCompanyID)

	return cmd
}

func executeBulkOpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Start executing a pending bulk operation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString(flagBulkOpID)

			op, err := apiClient.ExecuteBulkOperation(context.Background(), id)
			if err != nil {
				return fmt.Errorf("error executing bulk operation: %w", err)
			}
			return printJSON(op)
		},
	}

	cmd.Flags().StringP(flagBulkOpID, "i", "", "Bulk operation ID")
	_ = cmd.MarkFlagRequired(flagBulkOpID)

	return cmd
}

func cancelBulkOpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a pending or processing bulk operation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString(flagBulkOpID)

			op, err := apiClient.CancelBulkOperation(context.Background(), id)
			if err != nil {
				return fmt.Errorf("error cancelling bulk operation: %w", err)
			}
			return printJSON(op)
		},
	}

	cmd.Flags().StringP(flagBulkOpID, "i", "", "Bulk operation ID")
	_ = cmd.MarkFlagRequired(flagBulkOpID)

	return cmd
}
