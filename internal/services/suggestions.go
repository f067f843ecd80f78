package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sitegrid/sitegrid/internal/cache"
	"github.com/sitegrid/sitegrid/internal/db/models"
	"github.com/sitegrid/sitegrid/internal/types"
)

// Generator produces suggestion payloads. Generation is expensive and
// potentially slow, which is why every call goes through the cache manager.
type Generator interface {
	GenerateSuggestions(ctx context.Context, query, entityType string) ([]string, error)
	GenerateSmartFilters(ctx context.Context, entityType, companyID string) (*types.FilterSet, error)
}

// Suggestion serves search suggestions and smart filters through the
// TTL cache: suggestions stay cached for 24 hours, smart filters for 1 hour
type Suggestion struct {
	cache     *cache.Manager
	generator Generator
}

// NewSuggestionService creates a new instance of the suggestion service
func NewSuggestionService(cacheManager *cache.Manager, generator Generator) *Suggestion {
	return &Suggestion{
		cache:     cacheManager,
		generator: generator,
	}
}

// SearchSuggestions returns the cached suggestions for the query, generating
// them on a miss or after expiry
func (s *Suggestion) SearchSuggestions(ctx context.Context, query, entityType, companyID string) ([]string, error) {
	key := cache.Key{
		Kind:       models.CacheKindSuggestions,
		Query:      query,
		EntityType: entityType,
		CompanyID:  companyID,
	}

	payload, err := s.cache.GetOrGenerate(ctx, key, cache.SuggestionTTL, func(ctx context.Context) (json.RawMessage, error) {
		suggestions, err := s.generator.GenerateSuggestions(ctx, query, entityType)
		if err != nil {
			return nil, err
		}
		return json.Marshal(suggestions)
	})
	if err != nil {
		return nil, err
	}

	var suggestions []string
	if err := json.Unmarshal(payload, &suggestions); err != nil {
		return nil, fmt.Errorf("corrupt suggestions payload: %w", err)
	}
	return suggestions, nil
}

// SmartFilters returns the cached smart filter set for the entity type,
// generating it on a miss or after expiry
func (s *Suggestion) SmartFilters(ctx context.Context, entityType, companyID string) (*types.FilterSet, error) {
	key := cache.Key{
		Kind:       models.CacheKindSmartFilters,
		EntityType: entityType,
		CompanyID:  companyID,
	}

	payload, err := s.cache.GetOrGenerate(ctx, key, cache.SmartFilterTTL, func(ctx context.Context) (json.RawMessage, error) {
		filters, err := s.generator.GenerateSmartFilters(ctx, entityType, companyID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(filters)
	})
	if err != nil {
		return nil, err
	}

	var filters types.FilterSet
	if err := json.Unmarshal(payload, &filters); err != nil {
		return nil, fmt.Errorf("corrupt filter set payload: %w", err)
	}
	return &filters, nil
}

// StaticGenerator is the built-in generator: deterministic construction
// domain suggestions derived from the query and entity type. Deployments
// with an AI backend swap in their own Generator.
type StaticGenerator struct{}

var _ Generator = &StaticGenerator{}

// GenerateSuggestions builds search refinements around the query
func (g *StaticGenerator) GenerateSuggestions(_ context.Context, query, entityType string) ([]string, error) {
	return []string{
		fmt.Sprintf("%s due this week", query),
		fmt.Sprintf("%s assigned to me", query),
		fmt.Sprintf("overdue %s", query),
		fmt.Sprintf("open %s in %s", query, entityType),
		fmt.Sprintf("%s by priority", query),
	}, nil
}

// GenerateSmartFilters builds the filter set surfaced for the entity type
func (g *StaticGenerator) GenerateSmartFilters(_ context.Context, entityType, _ string) (*types.FilterSet, error) {
	filters := &types.FilterSet{
		Statuses:   []string{"Open", "In Progress", "Blocked", "Done"},
		Priorities: []string{"Low", "Medium", "High", "Critical"},
		Trades:     []string{"General", "Electrical", "Plumbing", "HVAC", "Concrete"},
		DateRanges: []string{"today", "this_week", "this_month", "overdue"},
	}
	if entityType == "projects" {
		filters.Statuses = []string{"Planning", "Active", "On Hold", "Closed"}
		filters.DateRanges = []string{"this_quarter", "this_year"}
	}
	return filters, nil
}
