package testhelpers

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"log"
	"os"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/rentline/rental-service/internal/repositories"
)

// TestHelper encapsulates all necessary components for running integration
// tests against a live instance of the service.
type TestHelper struct {
	T          *testing.T
	Ctx        context.Context
	BaseURL    string
	DB         *pgxpool.Pool
	PrivateKey *rsa.PrivateKey

	// From ldflags
	AppName string

	// Repositories
	UserRepo        repositories.UserRepository
	TokenRepo       repositories.TokenRepository
	LoginRepo       repositories.LoginAttemptsRepository
	DocRepo         repositories.TenantDocumentRepository
	PropertyRepo    repositories.PropertyRepository
	ImageRepo       repositories.PropertyImageRepository
	InvitationRepo  repositories.InvitationRepository
	ApplicationRepo repositories.ApplicationRepository
	TenancyRepo     repositories.TenancyRepository
	MaintenanceRepo repositories.MaintenanceRepository
}

// NewTestHelper sets up the testing environment by loading env vars,
// connecting to the DB and initializing repositories. It's designed to be
// called once from a TestMain function.
//
// The helper signs its own JWTs with RSA_PRIVATE_KEY_BASE64, so the running
// service must hold the matching public key.
func NewTestHelper(t *testing.T, appName string) *TestHelper {
	baseURL := os.Getenv("APP_URL_FROM_ANYWHERE")
	if baseURL == "" {
		log.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	if os.Getenv("ENV") == "" {
		log.Fatal("ENV env var is missing")
	}

	dbURL := os.Getenv("DB_URL")
	require.NotEmpty(t, dbURL, "DB_URL env var is missing")

	privateKeyB64 := os.Getenv("RSA_PRIVATE_KEY_BASE64")
	require.NotEmpty(t, privateKeyB64, "RSA_PRIVATE_KEY_BASE64 env var is missing")
	privateKeyPEM, err := base64.StdEncoding.DecodeString(privateKeyB64)
	require.NoError(t, err)
	block, _ := pem.Decode(privateKeyPEM)
	require.NotNil(t, block, "Failed to parse PEM block for RSA_PRIVATE_KEY_BASE64")
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	require.NoError(t, err)

	ctx := context.Background()
	dbPool, err := pgxpool.Connect(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { dbPool.Close() })

	return &TestHelper{
		T:          t,
		Ctx:        ctx,
		BaseURL:    baseURL,
		DB:         dbPool,
		PrivateKey: privateKey,
		AppName:    appName,

		UserRepo:        repositories.NewUserRepository(dbPool),
		TokenRepo:       repositories.NewTokenRepository(dbPool),
		LoginRepo:       repositories.NewLoginAttemptsRepository(dbPool),
		DocRepo:         repositories.NewTenantDocumentRepository(dbPool),
		PropertyRepo:    repositories.NewPropertyRepository(dbPool),
		ImageRepo:       repositories.NewPropertyImageRepository(dbPool),
		InvitationRepo:  repositories.NewInvitationRepository(dbPool),
		ApplicationRepo: repositories.NewApplicationRepository(dbPool),
		TenancyRepo:     repositories.NewTenancyRepository(dbPool),
		MaintenanceRepo: repositories.NewMaintenanceRepository(dbPool),
	}
}
