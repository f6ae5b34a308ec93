package quotes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ListQuotesFilter narrows and pages a quote listing.
type ListQuotesFilter struct {
	Status string
	Limit  int
	Offset int
}

// Repository is the persistence contract for quotes.
type Repository interface {
	Create(ctx context.Context, req *CreateQuoteRequest) (*Quote, error)
	GetByID(ctx context.Context, companyID, id string) (*Quote, error)
	ListByCompany(ctx context.Context, companyID string, filter ListQuotesFilter) ([]*Quote, error)
	UpdateStatus(ctx context.Context, companyID, id, status string) error
}

// InMemoryRepository stores quotes in memory. Used in tests and when no
// database is configured.
type InMemoryRepository struct {
	mu     sync.RWMutex
	quotes map[string]*Quote
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{quotes: make(map[string]*Quote)}
}

// Create stores a new quote.
func (r *InMemoryRepository) Create(_ context.Context, req *CreateQuoteRequest) (*Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	quote := &Quote{
		ID:            uuid.NewString(),
		CompanyID:     req.CompanyID,
		CustomerName:  req.CustomerName,
		Address:       req.Address,
		SpaceType:     req.SpaceType,
		Surfaces:      req.Surfaces,
		PaintGrade:    req.PaintGrade,
		PrepCondition: req.PrepCondition,
		Timeline:      req.Timeline,
		Details:       req.Details,
		Source:        req.Source,
		Status:        StatusDraft,
		CreatedAt:     time.Now().UTC(),
	}

	r.mu.Lock()
	r.quotes[quote.ID] = quote
	r.mu.Unlock()

	copied := *quote
	return &copied, nil
}

// GetByID fetches a quote scoped to the company.
func (r *InMemoryRepository) GetByID(_ context.Context, companyID, id string) (*Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	quote, ok := r.quotes[id]
	if !ok || quote.CompanyID != companyID {
		return nil, ErrQuoteNotFound
	}
	copied := *quote
	return &copied, nil
}

// ListByCompany returns the company's quotes, newest first.
func (r *InMemoryRepository) ListByCompany(_ context.Context, companyID string, filter ListQuotesFilter) ([]*Quote, error) {
	r.mu.RLock()
	var matched []*Quote
	for _, quote := range r.quotes {
		if quote.CompanyID != companyID {
			continue
		}
		if filter.Status != "" && quote.Status != filter.Status {
			continue
		}
		copied := *quote
		matched = append(matched, &copied)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// UpdateStatus transitions a quote's status.
func (r *InMemoryRepository) UpdateStatus(_ context.Context, companyID, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	quote, ok := r.quotes[id]
	if !ok || quote.CompanyID != companyID {
		return ErrQuoteNotFound
	}
	quote.Status = status
	return nil
}
