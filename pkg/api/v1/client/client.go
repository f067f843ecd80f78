// Package client provides the API client for interacting with the sitegrid API
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/sitegrid/sitegrid/internal/api/v1/routes"
	"github.com/sitegrid/sitegrid/internal/db/models"
	"github.com/sitegrid/sitegrid/internal/types"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// Client is the interface for the API client
type Client interface {
	// Health Check
	HealthCheck(ctx context.Context) (map[string]string, error)

	// Bulk operation endpoints
	ListBulkOperations(ctx context.Context, queryParams url.Values) ([]models.BulkOperation, *types.PaginationResponse, error)
	GetBulkOperation(ctx context.Context, id string) (*models.BulkOperation, error)
	CreateBulkOperation(ctx context.Context, req types.CreateBulkOperationRequest) (*models.BulkOperation, error)
	ExecuteBulkOperation(ctx context.Context, id string) (*models.BulkOperation, error)
	CancelBulkOperation(ctx context.Context, id string) (*models.BulkOperation, error)

	// Suggestion endpoints
	SearchSuggestions(ctx context.Context, query, entityType, companyID string) ([]string, error)
	SmartFilters(ctx context.Context, entityType, companyID string) (*types.FilterSet, error)
}

var _ Client = &APIClient{}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string

	// Timeout is the request timeout
	Timeout time.Duration
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: routes.DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &APIClient{
		baseURL: opts.BaseURL,
		timeout: opts.Timeout,
	}, nil
}

// createAgent creates a new Fiber Agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string, body interface{}) (*fiber.Agent, error) {
	fullURL := c.baseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	agent.Set("Content-Type", "application/json")
	agent.Set("Accept", "application/json")

	if body != nil {
		agent.JSON(body)
	}

	return agent, nil
}

// execute sends the request and decodes the envelope. The data target and
// the pagination target may each be nil when the caller does not need them.
func (c *APIClient) execute(ctx context.Context, method, endpoint string, body, data interface{}) (*types.PaginationResponse, error) {
	agent, err := c.createAgent(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	statusCode, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("error sending request: %w", errs[0])
	}

	var envelope types.Response
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	if statusCode < 200 || statusCode >= 300 || !envelope.Success {
		msg := envelope.Error
		if msg == "" {
			msg = string(respBody)
		}
		return nil, &fiber.Error{
			Code:    statusCode,
			Message: msg,
		}
	}

	if data != nil && envelope.Data != nil {
		dataJSON, err := json.Marshal(envelope.Data)
		if err != nil {
			return nil, fmt.Errorf("error marshaling data: %w", err)
		}
		if err := json.Unmarshal(dataJSON, data); err != nil {
			return nil, fmt.Errorf("error decoding data: %w", err)
		}
	}

	return envelope.Pagination, nil
}

// HealthCheck checks the health of the API server
func (c *APIClient) HealthCheck(ctx context.Context) (map[string]string, error) {
	agent, err := c.createAgent(ctx, http.MethodGet, routes.HealthCheckURL(), nil)
	if err != nil {
		return nil, err
	}

	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("error sending request: %w", errs[0])
	}
	if statusCode != http.StatusOK {
		return nil, &fiber.Error{Code: statusCode, Message: string(body)}
	}

	var health map[string]string
	if err := json.Unmarshal(body, &health); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	return health, nil
}

// ListBulkOperations retrieves bulk operations with the given query parameters
func (c *APIClient) ListBulkOperations(ctx context.Context, queryParams url.Values) ([]models.BulkOperation, *types.PaginationResponse, error) {
	var ops []models.BulkOperation
	pagination, err := c.execute(ctx, http.MethodGet, routes.ListBulkOperationsURL(queryParams), nil, &ops)
	if err != nil {
		return nil, nil, err
	}
	return ops, pagination, nil
}

// GetBulkOperation retrieves a bulk operation by ID
func (c *APIClient) GetBulkOperation(ctx context.Context, id string) (*models.BulkOperation, error) {
	var op models.BulkOperation
	if _, err := c.execute(ctx, http.MethodGet, routes.GetBulkOperationURL(id), nil, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// CreateBulkOperation creates a new bulk operation
func (c *APIClient) CreateBulkOperation(ctx context.Context, req types.CreateBulkOperationRequest) (*models.BulkOperation, error) {
	var op models.BulkOperation
	if _, err := c.execute(ctx, http.MethodPost, routes.CreateBulkOperationURL(), req, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// ExecuteBulkOperation starts executing a pending bulk operation
func (c *APIClient) ExecuteBulkOperation(ctx context.Context, id string) (*models.BulkOperation, error) {
	var op models.BulkOperation
	if _, err := c.execute(ctx, http.MethodPost, routes.ExecuteBulkOperationURL(id), nil, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// CancelBulkOperation cancels a pending or processing bulk operation
func (c *APIClient) CancelBulkOperation(ctx context.Context, id string) (*models.BulkOperation, error) {
	var op models.BulkOperation
	if _, err := c.execute(ctx, http.MethodPost, routes.CancelBulkOperationURL(id), nil, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// SearchSuggestions retrieves search suggestions for the query
func (c *APIClient) SearchSuggestions(ctx context.Context, query, entityType, companyID string) ([]string, error) {
	queryParams := url.Values{}
	queryParams.Set("q", query)
	queryParams.Set("entityType", entityType)
	queryParams.Set("companyId", companyID)

	var suggestions []string
	if _, err := c.execute(ctx, http.MethodGet, routes.SearchSuggestionsURL(queryParams), nil, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

// SmartFilters retrieves the smart filter set for the entity type
func (c *APIClient) SmartFilters(ctx context.Context, entityType, companyID string) (*types.FilterSet, error) {
	queryParams := url.Values{}
	queryParams.Set("entityType", entityType)
	queryParams.Set("companyId", companyID)

	var filters types.FilterSet
	if _, err := c.execute(ctx, http.MethodGet, routes.SmartFiltersURL(queryParams), nil, &filters); err != nil {
		return nil, err
	}
	return &filters, nil
}
