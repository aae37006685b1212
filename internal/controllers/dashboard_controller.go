package controllers

import (
	"net/http"

	"github.com/rentline/rental-service/internal/services"
	"github.com/rentline/rental-service/internal/utils"
)

// DashboardController serves the role-specific home screen summaries.
type DashboardController struct {
	dashboardService *services.DashboardService
}

func NewDashboardController(dashboardService *services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// ---------------------------------------------------------------------
// GET /api/v1/dashboard/landlord
// ---------------------------------------------------------------------
func (c *DashboardController) LandlordDashboardHandler(w http.ResponseWriter, r *http.Request) {
	landlordID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	summary, err := c.dashboardService.ForLandlord(r.Context(), landlordID)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to build dashboard", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, summary)
}

// ---------------------------------------------------------------------
// GET /api/v1/dashboard/tenant
// ---------------------------------------------------------------------
func (c *DashboardController) TenantDashboardHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	summary, err := c.dashboardService.ForTenant(r.Context(), tenantID)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Failed to build dashboard", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, summary)
}
