package main

import (
	"context"
	"net/http"

	_ "time/tzdata" // Load timezone data

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/rentline/rental-service/internal/app"
	"github.com/rentline/rental-service/internal/config"
	"github.com/rentline/rental-service/internal/controllers"
	"github.com/rentline/rental-service/internal/middleware"
	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/repositories"
	"github.com/rentline/rental-service/internal/routes"
	"github.com/rentline/rental-service/internal/services"
	"github.com/rentline/rental-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize the application:", err)
	}
	defer application.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(application.DB)
	loginRepo := repositories.NewLoginAttemptsRepository(application.DB)
	tokenRepo := repositories.NewTokenRepository(application.DB)
	docRepo := repositories.NewTenantDocumentRepository(application.DB)
	propRepo := repositories.NewPropertyRepository(application.DB)
	imageRepo := repositories.NewPropertyImageRepository(application.DB)
	invRepo := repositories.NewInvitationRepository(application.DB)
	appRepo := repositories.NewApplicationRepository(application.DB)
	tenancyRepo := repositories.NewTenancyRepository(application.DB)
	maintRepo := repositories.NewMaintenanceRepository(application.DB)

	// The admin account always exists so archived tenancies stay reachable.
	if err := app.SeedDefaultAdmin(userRepo); err != nil {
		utils.Logger.Fatal("Failed to seed default admin:", err)
	}

	// Conditionally seed demo accounts and listings if the feature flag is enabled.
	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedAllTestData(userRepo, propRepo, tenancyRepo, maintRepo); err != nil {
			utils.Logger.Fatal("Failed to seed demo data:", err)
		}
	}

	// Services
	notificationService := services.NewNotificationService(cfg)
	triageService := services.NewTriageService(cfg.OpenAIAPIKey)
	authService := services.NewAuthService(userRepo, loginRepo, tokenRepo, cfg)
	accountService := services.NewAccountService(cfg, userRepo, tokenRepo, docRepo, tenancyRepo)
	propertyService := services.NewPropertyService(cfg, propRepo, imageRepo, userRepo)
	invitationService := services.NewInvitationService(cfg, invRepo, propRepo, userRepo, notificationService)
	applicationService := services.NewApplicationService(cfg, appRepo, propRepo, userRepo, notificationService)
	tenancyService := services.NewTenancyService(cfg, tenancyRepo, propRepo, userRepo)
	maintenanceService := services.NewMaintenanceService(cfg, maintRepo, tenancyRepo, propRepo, userRepo, notificationService, triageService)
	dashboardService := services.NewDashboardService(propRepo, tenancyRepo, appRepo, maintRepo)
	cleanupService := services.NewCleanupService(tokenRepo, invRepo)

	// Controllers
	healthController := controllers.NewHealthController(application)
	authController := controllers.NewAuthController(authService, cfg)
	accountController := controllers.NewAccountController(accountService)
	propertyController := controllers.NewPropertyController(propertyService)
	invitationController := controllers.NewInvitationController(invitationService)
	applicationController := controllers.NewApplicationController(applicationService)
	tenancyController := controllers.NewTenancyController(tenancyService)
	maintenanceController := controllers.NewMaintenanceController(maintenanceService)
	dashboardController := controllers.NewDashboardController(dashboardService)

	// Nightly housekeeping: expired refresh tokens and stale invitation links.
	c := cron.New()
	_, schErr := c.AddFunc("5 0 * * *", func() {
		if err := cleanupService.CleanupDaily(context.Background()); err != nil {
			utils.Logger.WithError(err).Error("Scheduled daily cleanup failed")
		}
	})
	if schErr != nil {
		utils.Logger.WithError(schErr).Fatal("Failed to schedule daily cleanup job")
	}
	c.Start()

	// Router
	router := mux.NewRouter()

	// Health
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	// Public auth
	router.HandleFunc(routes.AuthRegister, authController.Register).Methods(http.MethodPost)
	router.HandleFunc(routes.AuthLogin, authController.Login).Methods(http.MethodPost)
	router.HandleFunc(routes.AuthRefreshToken, authController.RefreshToken).Methods(http.MethodPost)

	// Public marketplace
	router.HandleFunc(routes.Marketplace, propertyController.MarketplaceHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.MarketplaceDetail, propertyController.MarketplaceDetailHandler).Methods(http.MethodGet)

	// Public invitation lookup and redeem (the token itself is the credential)
	router.HandleFunc(routes.InvitationByToken, invitationController.GetInvitationByTokenHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.InvitationTokenRedeem, invitationController.RedeemInvitationHandler).Methods(http.MethodPost)

	// Protected routes (JWT middleware)
	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	secured.HandleFunc(routes.AuthLogout, authController.Logout).Methods(http.MethodPost)

	secured.HandleFunc(routes.AccountProfile, accountController.GetProfile).Methods(http.MethodGet)
	secured.HandleFunc(routes.AccountProfile, accountController.UpdateProfile).Methods(http.MethodPatch)
	secured.HandleFunc(routes.AccountProfilePicture, accountController.SetProfilePicture).Methods(http.MethodPut)
	secured.HandleFunc(routes.AccountPassword, accountController.ChangePassword).Methods(http.MethodPut)

	// Tenant routes. Registered before the landlord and shared blocks so
	// literal segments like /mine are matched ahead of {id} patterns.
	tenant := secured.NewRoute().Subrouter()
	tenant.Use(middleware.RequireRole(models.RoleTenant))

	tenant.HandleFunc(routes.AccountDocuments, accountController.AddTenantDocument).Methods(http.MethodPost)
	tenant.HandleFunc(routes.AccountDocuments, accountController.ListMyDocuments).Methods(http.MethodGet)
	tenant.HandleFunc(routes.AccountDocumentByID, accountController.DeleteTenantDocument).Methods(http.MethodDelete)

	tenant.HandleFunc(routes.Applications, applicationController.ApplyHandler).Methods(http.MethodPost)
	tenant.HandleFunc(routes.ApplicationsMine, applicationController.ListMyApplicationsHandler).Methods(http.MethodGet)
	tenant.HandleFunc(routes.ApplicationWithdraw, applicationController.WithdrawApplicationHandler).Methods(http.MethodPost)

	tenant.HandleFunc(routes.TenanciesMine, tenancyController.ListTenantTenanciesHandler).Methods(http.MethodGet)

	tenant.HandleFunc(routes.Maintenance, maintenanceController.CreateMaintenanceRequestHandler).Methods(http.MethodPost)
	tenant.HandleFunc(routes.MaintenanceMine, maintenanceController.ListMyMaintenanceRequestsHandler).Methods(http.MethodGet)
	tenant.HandleFunc(routes.MaintenanceByID, maintenanceController.EditMaintenanceRequestHandler).Methods(http.MethodPatch)
	tenant.HandleFunc(routes.MaintenanceImageByID, maintenanceController.DeleteMaintenanceImageHandler).Methods(http.MethodDelete)

	tenant.HandleFunc(routes.DashboardTenant, dashboardController.TenantDashboardHandler).Methods(http.MethodGet)

	// Landlord routes
	landlord := secured.NewRoute().Subrouter()
	landlord.Use(middleware.RequireRole(models.RoleLandlord))

	landlord.HandleFunc(routes.Properties, propertyController.CreatePropertyHandler).Methods(http.MethodPost)
	landlord.HandleFunc(routes.Properties, propertyController.ListMyPropertiesHandler).Methods(http.MethodGet)
	landlord.HandleFunc(routes.PropertyByID, propertyController.GetMyPropertyHandler).Methods(http.MethodGet)
	landlord.HandleFunc(routes.PropertyByID, propertyController.UpdatePropertyHandler).Methods(http.MethodPatch)
	landlord.HandleFunc(routes.PropertyByID, propertyController.DeletePropertyHandler).Methods(http.MethodDelete)
	landlord.HandleFunc(routes.PropertyImages, propertyController.AddPropertyImageHandler).Methods(http.MethodPost)
	landlord.HandleFunc(routes.PropertyImageByID, propertyController.DeletePropertyImageHandler).Methods(http.MethodDelete)

	landlord.HandleFunc(routes.Invitations, invitationController.CreateInvitationHandler).Methods(http.MethodPost)
	landlord.HandleFunc(routes.Invitations, invitationController.ListInvitationsHandler).Methods(http.MethodGet)
	landlord.HandleFunc(routes.InvitationByID, invitationController.CancelInvitationHandler).Methods(http.MethodDelete)

	landlord.HandleFunc(routes.ApplicationsIncoming, applicationController.ListIncomingApplicationsHandler).Methods(http.MethodGet)
	landlord.HandleFunc(routes.ApplicationAccept, applicationController.AcceptApplicationHandler).Methods(http.MethodPost)
	landlord.HandleFunc(routes.ApplicationReject, applicationController.RejectApplicationHandler).Methods(http.MethodPost)
	landlord.HandleFunc(routes.ApplicationReply, applicationController.ReplyToApplicationHandler).Methods(http.MethodPost)

	landlord.HandleFunc(routes.Tenancies, tenancyController.ListLandlordTenanciesHandler).Methods(http.MethodGet)

	landlord.HandleFunc(routes.Maintenance, maintenanceController.ListLandlordMaintenanceRequestsHandler).Methods(http.MethodGet)
	landlord.HandleFunc(routes.MaintenanceUnreadCount, maintenanceController.UnreadCountHandler).Methods(http.MethodGet)
	landlord.HandleFunc(routes.MaintenanceStatus, maintenanceController.UpdateMaintenanceStatusHandler).Methods(http.MethodPatch)

	landlord.HandleFunc(routes.TenantDocuments, accountController.ListTenantDocuments).Methods(http.MethodGet)

	landlord.HandleFunc(routes.DashboardLandlord, dashboardController.LandlordDashboardHandler).Methods(http.MethodGet)

	// Shared routes: either party of the record may call these; the
	// service layer checks who is on the tenancy or application.
	secured.HandleFunc(routes.ApplicationByID, applicationController.GetApplicationHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.TenancyByID, tenancyController.GetTenancyHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.TenancyRequestTermination, tenancyController.RequestTerminationHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.MaintenanceByID, maintenanceController.GetMaintenanceRequestHandler).Methods(http.MethodGet)

	// Admin routes
	admin := router.NewRoute().Subrouter()
	admin.Use(middleware.AdminAuthMiddleware(cfg.RSAPublicKey))
	admin.HandleFunc(routes.AdminTenancyArchive, tenancyController.ArchiveTenancyHandler).Methods(http.MethodPost)

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	// CORS config
	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Platform"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Failed to start server:", err)
	}
}
