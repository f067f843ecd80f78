// Package routes defines the API routes and URL structure
package routes

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/sitegrid/sitegrid/internal/api/v1/handlers"
)

// API base configuration
const (
	// DefaultPort is the default port for the API
	DefaultPort = "8080"
	// APIv1Prefix is the prefix for all API endpoints
	APIv1Prefix = "/api/v1"
)

// DefaultBaseURL is the default base URL for the API
var DefaultBaseURL = fmt.Sprintf("http://localhost:%s", DefaultPort)

// Route names for lookup
const (
	// Health check
	HealthCheck = "HealthCheck"

	// Bulk operation routes
	ListBulkOperations   = "ListBulkOperations"
	GetBulkOperation     = "GetBulkOperation"
	CreateBulkOperation  = "CreateBulkOperation"
	ExecuteBulkOperation = "ExecuteBulkOperation"
	CancelBulkOperation  = "CancelBulkOperation"

	// Suggestion routes
	GetSearchSuggestions = "GetSearchSuggestions"
	GetSmartFilters      = "GetSmartFilters"
)

// routeCache stores extracted routes for use prior to compilation
var (
	routeCache     map[string]string
	routeCacheMu   sync.RWMutex
	routeCacheInit sync.Once
)

// RegisterRoutes configures all the v1 routes
//
// NOTE: route ordering is important because routes match in registration
// order; param routes (/:id) go after their static siblings.
func RegisterRoutes(
	app *fiber.App,
	bulkOperationHandler *handlers.BulkOperationHandler,
	suggestionHandler *handlers.SuggestionHandler,
) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	}).Name(HealthCheck)

	// API v1 routes
	v1 := app.Group(APIv1Prefix)

	// Bulk operation endpoints
	bulkOps := v1.Group("/bulk-operations")
	bulkOps.Get("/", bulkOperationHandler.ListBulkOperations).Name(ListBulkOperations)
	bulkOps.Get("/:id", bulkOperationHandler.GetBulkOperation).Name(GetBulkOperation)
	bulkOps.Post("/", bulkOperationHandler.CreateBulkOperation).Name(CreateBulkOperation)
	bulkOps.Post("/:id/execute", bulkOperationHandler.ExecuteBulkOperation).Name(ExecuteBulkOperation)
	bulkOps.Post("/:id/cancel", bulkOperationHandler.CancelBulkOperation).Name(CancelBulkOperation)

	// Suggestion endpoints
	v1.Get("/search-suggestions", suggestionHandler.SearchSuggestions).Name(GetSearchSuggestions)
	v1.Get("/smart-filters", suggestionHandler.SmartFilters).Name(GetSmartFilters)
}

// initRouteCache initializes the route cache by creating a mock app and extracting routes
func initRouteCache() {
	routeCacheInit.Do(func() {
		cache := make(map[string]string)

		app := fiber.New()
		RegisterRoutes(app, &handlers.BulkOperationHandler{}, &handlers.SuggestionHandler{})

		for _, route := range app.GetRoutes() {
			if route.Name != "" {
				cache[route.Name] = route.Path
			}
		}

		routeCacheMu.Lock()
		routeCache = cache
		routeCacheMu.Unlock()
	})
}

// GetRoute returns the route pattern for the given route name
func GetRoute(name string) string {
	initRouteCache()

	routeCacheMu.RLock()
	defer routeCacheMu.RUnlock()
	return routeCache[name]
}

// BuildURL builds a URL for the given route name and parameters
func BuildURL(routeName string, params map[string]string, queryParams url.Values) string {
	route := GetRoute(routeName)
	if route == "" {
		return ""
	}

	for param, value := range params {
		route = strings.ReplaceAll(route, ":"+param, value)
	}

	// Remove trailing slash if it's a base endpoint with no parameters
	if strings.HasSuffix(route, "/") && !strings.Contains(route, ":") {
		route = strings.TrimSuffix(route, "/")
	}

	if len(queryParams) > 0 {
		route = fmt.Sprintf("%s?%s", route, queryParams.Encode())
	}

	return route
}

// Health check route helper

// HealthCheckURL returns the URL for the health check endpoint
func HealthCheckURL() string {
	return BuildURL(HealthCheck, nil, nil)
}

// Bulk operation route helpers

// ListBulkOperationsURL returns the URL for listing bulk operations
func ListBulkOperationsURL(queryParams url.Values) string {
	return BuildURL(ListBulkOperations, nil, queryParams)
}

// GetBulkOperationURL returns the URL for getting a bulk operation by ID
func GetBulkOperationURL(id string) string {
	return BuildURL(GetBulkOperation, map[string]string{"id": id}, nil)
}

// CreateBulkOperationURL returns the URL for creating a bulk operation
func CreateBulkOperationURL() string {
	return BuildURL(CreateBulkOperation, nil, nil)
}

// ExecuteBulkOperationURL returns the URL for executing a bulk operation
func ExecuteBulkOperationURL(id string) string {
	return BuildURL(ExecuteBulkOperation, map[string]string{"id": id}, nil)
}

// CancelBulkOperationURL returns the URL for cancelling a bulk operation
func CancelBulkOperationURL(id string) string {
	return BuildURL(CancelBulkOperation, map[string]string{"id": id}, nil)
}

// Suggestion route helpers

// SearchSuggestionsURL returns the URL for fetching search suggestions
func SearchSuggestionsURL(queryParams url.Values) string {
	return BuildURL(GetSearchSuggestions, nil, queryParams)
}

// SmartFiltersURL returns the URL for fetching smart filters
func SmartFiltersURL(queryParams url.Values) string {
	return BuildURL(GetSmartFilters, nil, queryParams)
}
