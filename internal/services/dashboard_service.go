package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/repositories"
)

// DashboardService aggregates the counts behind each role's landing
// screen. Every number comes straight from SQL; nothing here is
// cached.
type DashboardService struct {
	propRepo    repositories.PropertyRepository
	tenancyRepo repositories.TenancyRepository
	appRepo     repositories.ApplicationRepository
	maintRepo   repositories.MaintenanceRepository
}

func NewDashboardService(
	propRepo repositories.PropertyRepository,
	tenancyRepo repositories.TenancyRepository,
	appRepo repositories.ApplicationRepository,
	maintRepo repositories.MaintenanceRepository,
) *DashboardService {
	return &DashboardService{
		propRepo:    propRepo,
		tenancyRepo: tenancyRepo,
		appRepo:     appRepo,
		maintRepo:   maintRepo,
	}
}

func (s *DashboardService) ForLandlord(ctx context.Context, landlordID uuid.UUID) (*dtos.LandlordDashboardResponse, error) {
	total, occupied, err := s.propRepo.OccupancyCounts(ctx, landlordID)
	if err != nil {
		return nil, err
	}
	activeTenancies, err := s.tenancyRepo.CountActiveByLandlordID(ctx, landlordID)
	if err != nil {
		return nil, err
	}
	pendingApps, err := s.appRepo.CountPendingByLandlordID(ctx, landlordID)
	if err != nil {
		return nil, err
	}
	unread, err := s.maintRepo.CountUnreadByLandlordID(ctx, landlordID)
	if err != nil {
		return nil, err
	}
	pendingMaint, err := s.maintRepo.CountPendingByLandlordID(ctx, landlordID)
	if err != nil {
		return nil, err
	}

	return &dtos.LandlordDashboardResponse{
		TotalProperties:     total,
		OccupiedProperties:  occupied,
		VacantProperties:    total - occupied,
		ActiveTenancies:     activeTenancies,
		PendingApplications: pendingApps,
		UnreadMaintenance:   unread,
		PendingMaintenance:  pendingMaint,
	}, nil
}

func (s *DashboardService) ForTenant(ctx context.Context, tenantID uuid.UUID) (*dtos.TenantDashboardResponse, error) {
	out := &dtos.TenantDashboardResponse{}

	tenancy, err := s.tenancyRepo.GetActiveByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenancy != nil {
		prop, pErr := s.propRepo.GetByID(ctx, tenancy.PropertyID)
		if pErr != nil {
			return nil, pErr
		}
		if prop != nil {
			rentPeriod := prop.RentPeriodMonths
			if rentPeriod <= 0 {
				rentPeriod = models.DefaultRentPeriodMonths
			}
			t := dtos.NewTenancyWithLease(*tenancy, rentPeriod)
			out.Tenancy = &t
			p := dtos.NewPropertyFromModel(*prop)
			out.Property = &p
		} else {
			t := dtos.NewTenancyFromModel(*tenancy)
			out.Tenancy = &t
		}
	}

	pendingApps, err := s.appRepo.CountPendingByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out.PendingApplications = pendingApps

	openMaint, err := s.maintRepo.CountOpenByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out.OpenMaintenance = openMaint

	return out, nil
}
