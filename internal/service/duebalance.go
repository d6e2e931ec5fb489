package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetcore/fleetcore/internal/api/dto"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/patrickmn/go-cache"
)

const (
	documentTypeLicense   = "LICENSE"
	documentTypeInsurance = "INSURANCE"
)

// DueBalanceService assembles the read-only feed dashboards poll: outstanding
// remittance balances for active assignments plus vehicle documents nearing
// expiry. Results are cached per tenant with a short TTL, so the feed is a
// snapshot, never a source of truth.
type DueBalanceService interface {
	GetFeed(ctx context.Context, now time.Time) (*dto.DueBalanceFeedResponse, error)
}

type dueBalanceService struct {
	ServiceParams
	remittanceService RemittanceService
	cache             *cache.Cache
}

// NewDueBalanceService creates a new due-balance feed service
func NewDueBalanceService(params ServiceParams) DueBalanceService {
	ttl := params.Config.Billing.DueBalanceCacheTTL
	return &dueBalanceService{
		ServiceParams:     params,
		remittanceService: NewRemittanceService(params),
		cache:             cache.New(ttl, 2*ttl),
	}
}

func (s *dueBalanceService) GetFeed(ctx context.Context, now time.Time) (*dto.DueBalanceFeedResponse, error) {
	// the cache key derives from the ambient tenant; an unscoped call would
	// build and share one feed across tenants
	if err := types.ValidateTenantContext(ctx); err != nil {
		return nil, err
	}

	tenantID := types.GetTenantID(ctx)
	cacheKey := fmt.Sprintf("due_balance_feed:%s", tenantID)

	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(*dto.DueBalanceFeedResponse), nil
	}

	now = now.UTC()

	balances, err := s.collectDueBalances(ctx, now)
	if err != nil {
		return nil, err
	}

	documents, err := s.collectExpiringDocuments(ctx, now)
	if err != nil {
		return nil, err
	}

	resp := &dto.DueBalanceFeedResponse{
		DueBalances:       balances,
		ExpiringDocuments: documents,
		GeneratedAt:       now,
	}
	s.cache.Set(cacheKey, resp, cache.DefaultExpiration)
	return resp, nil
}

func (s *dueBalanceService) collectDueBalances(ctx context.Context, now time.Time) ([]*dto.DueBalanceItem, error) {
	assignments, err := s.AssignmentRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	results, err := s.remittanceService.ComputeRemainingBalances(ctx, assignments, now)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.DueBalanceItem, 0, len(results))
	for _, r := range results {
		if !r.Due {
			continue
		}
		severity := types.DueSeverityWarning
		if r.Overdue {
			severity = types.DueSeverityCritical
		}
		items = append(items, &dto.DueBalanceItem{
			DriverID:   r.DriverID,
			VehicleID:  r.VehicleID,
			Period:     r.Period,
			FullTarget: r.FullTarget,
			Remitted:   r.Remitted,
			Remaining:  r.Remaining,
			Overdue:    r.Overdue,
			Severity:   severity,
		})
	}
	return items, nil
}

func (s *dueBalanceService) collectExpiringDocuments(ctx context.Context, now time.Time) ([]*dto.ExpiringDocument, error) {
	cutoff := now.AddDate(0, 0, s.Config.Billing.DocumentExpiryWarningDays)

	vehicles, err := s.VehicleRepo.ListExpiringDocuments(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	docs := make([]*dto.ExpiringDocument, 0, len(vehicles))
	for _, v := range vehicles {
		if v.LicenseExpiresAt != nil && !v.LicenseExpiresAt.After(cutoff) {
			docs = append(docs, expiringDocument(v.ID, v.RegistrationNumber, documentTypeLicense, *v.LicenseExpiresAt, now))
		}
		if v.InsuranceExpiresAt != nil && !v.InsuranceExpiresAt.After(cutoff) {
			docs = append(docs, expiringDocument(v.ID, v.RegistrationNumber, documentTypeInsurance, *v.InsuranceExpiresAt, now))
		}
	}
	return docs, nil
}

// expiringDocument classifies severity: already expired is CRITICAL, merely
// inside the warning window is WARNING.
func expiringDocument(vehicleID, registration, docType string, expiresAt, now time.Time) *dto.ExpiringDocument {
	severity := types.DueSeverityWarning
	if !expiresAt.After(now) {
		severity = types.DueSeverityCritical
	}
	return &dto.ExpiringDocument{
		VehicleID:          vehicleID,
		RegistrationNumber: registration,
		DocumentType:       docType,
		ExpiresAt:          expiresAt,
		Severity:           severity,
	}
}
