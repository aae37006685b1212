package config

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/rentline/rental-service/internal/utils"
)

type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string

	// Database
	DBUrl string

	// Twilio / SendGrid / OpenAI
	TwilioAccountSID string
	TwilioAuthToken  string
	SendGridAPIKey   string
	OpenAIAPIKey     string

	// Auth
	RSAPrivateKey *rsa.PrivateKey
	RSAPublicKey  *rsa.PublicKey

	MobileTokenExpiry        time.Duration
	MobileRefreshTokenExpiry time.Duration
	WebTokenExpiry           time.Duration
	WebRefreshTokenExpiry    time.Duration

	MaxLoginAttempts int
	AttemptWindow    time.Duration
	LockDuration     time.Duration

	// Static flags fetched once from LaunchDarkly
	LDFlag_SendgridFromEmail         string
	LDFlag_TwilioFromPhone           string
	LDFlag_ShortTokenTTL             bool
	LDFlag_SendgridSandboxMode       bool
	LDFlag_ValidatePhoneWithTwilio   bool
	LDFlag_ValidateEmailWithSendGrid bool
	LDFlag_SeedDbWithTestData        bool
	LDFlag_SMSAlertsEnabled          bool
	LDFlag_AITriageEnabled           bool
	LDFlag_CORSHighSecurity          bool
}

// Constants for time-based configuration defaults.
const (
	OrganizationName            = utils.OrganizationName
	MaxLoginAttempts            = 10
	AttemptWindow               = 5 * time.Minute
	LockDuration                = 10 * time.Minute
	DefaultTokenExpiry          = 10 * time.Minute
	DefaultRefreshTokenExpiry   = 7 * 24 * time.Hour
	TestShortTokenExpiry        = 2 * time.Second
	TestShortRefreshTokenExpiry = 8 * time.Second
	LDConnectionTimeout         = 5 * time.Second
)

// build-time overrides
var (
	AppName             string
	LDServerContextKey  string
	LDServerContextKind string
)

func LoadConfig() *Config {
	if AppName == "" {
		utils.Logger.Fatal("AppName ldflag missing")
	}
	if LDServerContextKey == "" || LDServerContextKind == "" {
		utils.Logger.Fatal("LD context ldflags missing")
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	// Local development keeps its secrets in a .env file; deployed
	// environments inject real env vars and have no such file.
	if err := godotenv.Load(); err != nil {
		utils.Logger.Debug("No .env file found, relying on process env")
	}

	env := os.Getenv("ENV")
	if env == "" {
		utils.Logger.Fatal("ENV env var is missing")
	}
	appUrl := os.Getenv("APP_URL_FROM_ANYWHERE")
	if appUrl == "" {
		utils.Logger.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}

	privB64 := os.Getenv("RSA_PRIVATE_KEY_BASE64")
	if privB64 == "" {
		utils.Logger.Fatal("RSA_PRIVATE_KEY_BASE64 env var is missing")
	}
	privPEM, _ := base64.StdEncoding.DecodeString(privB64)
	if block, _ := pem.Decode(privPEM); block == nil {
		utils.Logger.Fatal("Failed to decode PEM block for private key")
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA private key")
	}

	pubB64 := os.Getenv("RSA_PUBLIC_KEY_BASE64")
	if pubB64 == "" {
		utils.Logger.Fatal("RSA_PUBLIC_KEY_BASE64 env var is missing")
	}
	pubPEM, _ := base64.StdEncoding.DecodeString(pubB64)
	if block, _ := pem.Decode(pubPEM); block == nil {
		utils.Logger.Fatal("Failed to decode PEM block for public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
	}

	// Twilio
	twilioSID := os.Getenv("TWILIO_ACCOUNT_SID")
	if twilioSID == "" {
		utils.Logger.Fatal("TWILIO_ACCOUNT_SID env var is missing")
	}
	twilioToken := os.Getenv("TWILIO_AUTH_TOKEN")
	if twilioToken == "" {
		utils.Logger.Fatal("TWILIO_AUTH_TOKEN env var is missing")
	}

	// SendGrid
	sgAPIKey := os.Getenv("SENDGRID_API_KEY")
	if sgAPIKey == "" {
		utils.Logger.Fatal("SENDGRID_API_KEY env var is missing")
	}

	ldSDKKey := os.Getenv("LD_SDK_KEY")
	if ldSDKKey == "" {
		utils.Logger.Fatal("LD_SDK_KEY env var is missing")
	}

	//----------------------------------------------------------------------
	// Default token expiries.
	//----------------------------------------------------------------------
	mobileTokenExpiry := DefaultTokenExpiry
	mobileRefreshTokenExpiry := DefaultRefreshTokenExpiry
	webTokenExpiry := DefaultTokenExpiry
	webRefreshTokenExpiry := DefaultRefreshTokenExpiry

	//----------------------------------------------------------------------
	// Initialize the LaunchDarkly client and fetch the static flags.
	//----------------------------------------------------------------------
	ldClient, err := ld.MakeClient(ldSDKKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	if !ldClient.Initialized() {
		ldClient.Close()
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}
	defer ldClient.Close()

	context := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)

	sendgridFromEmailFlag, err := ldClient.StringVariation("sendgrid_from_email", context, "")
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving sendgrid_from_email flag")
	}
	if sendgridFromEmailFlag == "" {
		utils.Logger.Warn("sendgrid_from_email flag is empty, defaulting to no-reply@rentline.ng")
		sendgridFromEmailFlag = "no-reply@rentline.ng"
	}

	twilioFromPhoneFlag, err := ldClient.StringVariation("twilio_from_phone", context, "")
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving twilio_from_phone flag")
	}
	if twilioFromPhoneFlag == "" {
		utils.Logger.Warn("twilio_from_phone flag is empty, defaulting to +10005550006")
		twilioFromPhoneFlag = "+10005550006"
	}
	utils.Logger.Debugf("twilio_from_phone flag: %s", twilioFromPhoneFlag)

	shortTokenTTLFlag, err := ldClient.BoolVariation("short_token_ttl", context, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving short_token_ttl flag")
	}
	utils.Logger.Debugf("short_token_ttl flag: %t", shortTokenTTLFlag)

	sendgridSandboxModeFlag, err := ldClient.BoolVariation("sendgrid_sandbox_mode", context, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving sendgrid_sandbox_mode flag")
	}
	utils.Logger.Debugf("sendgrid_sandbox_mode flag: %t", sendgridSandboxModeFlag)

	validatePhoneWithTwilioFlag, err := ldClient.BoolVariation("validate_phone_with_twilio", context, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving validate_phone_with_twilio flag")
	}
	utils.Logger.Debugf("validate_phone_with_twilio flag: %t", validatePhoneWithTwilioFlag)

	validateEmailWithSendGridFlag, err := ldClient.BoolVariation("validate_email_with_sendgrid", context, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving validate_email_with_sendgrid flag")
	}
	utils.Logger.Debugf("validate_email_with_sendgrid flag: %t", validateEmailWithSendGridFlag)

	seedDbWithTestDataFlag, err := ldClient.BoolVariation("seed_db_with_test_data", context, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving seed_db_with_test_data flag")
	}
	utils.Logger.Debugf("seed_db_with_test_data flag: %t", seedDbWithTestDataFlag)

	smsAlertsEnabledFlag, err := ldClient.BoolVariation("sms_alerts_enabled", context, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving sms_alerts_enabled flag")
	}
	utils.Logger.Debugf("sms_alerts_enabled flag: %t", smsAlertsEnabledFlag)

	aiTriageEnabledFlag, err := ldClient.BoolVariation("ai_triage_enabled", context, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving ai_triage_enabled flag")
	}
	utils.Logger.Debugf("ai_triage_enabled flag: %t", aiTriageEnabledFlag)

	corsHighSecurityFlag, err := ldClient.BoolVariation("cors_high_security", context, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving cors_high_security flag")
	}
	utils.Logger.Debugf("cors_high_security flag: %t", corsHighSecurityFlag)

	var openaiKey string
	if aiTriageEnabledFlag {
		openaiKey = os.Getenv("OPENAI_API_KEY")
		if openaiKey == "" {
			utils.Logger.Fatal("OPENAI_API_KEY env var missing but ai_triage_enabled flag set")
		}
	}

	//----------------------------------------------------------------------
	// If shortTokenTTLFlag is true, override expiries.
	//----------------------------------------------------------------------
	if shortTokenTTLFlag {
		mobileTokenExpiry = TestShortTokenExpiry
		mobileRefreshTokenExpiry = TestShortRefreshTokenExpiry
		webTokenExpiry = TestShortTokenExpiry
		webRefreshTokenExpiry = TestShortRefreshTokenExpiry
	}

	return &Config{
		OrganizationName:         OrganizationName,
		AppName:                  AppName,
		AppPort:                  appPort,
		AppUrl:                   appUrl,
		DBUrl:                    dbURL,
		TwilioAccountSID:         twilioSID,
		TwilioAuthToken:          twilioToken,
		SendGridAPIKey:           sgAPIKey,
		OpenAIAPIKey:             openaiKey,
		RSAPrivateKey:            privKey,
		RSAPublicKey:             pubKey,
		MobileTokenExpiry:        mobileTokenExpiry,
		MobileRefreshTokenExpiry: mobileRefreshTokenExpiry,
		WebTokenExpiry:           webTokenExpiry,
		WebRefreshTokenExpiry:    webRefreshTokenExpiry,
		MaxLoginAttempts:         MaxLoginAttempts,
		AttemptWindow:            AttemptWindow,
		LockDuration:             LockDuration,

		LDFlag_SendgridFromEmail:         sendgridFromEmailFlag,
		LDFlag_TwilioFromPhone:           twilioFromPhoneFlag,
		LDFlag_ShortTokenTTL:             shortTokenTTLFlag,
		LDFlag_SendgridSandboxMode:       sendgridSandboxModeFlag,
		LDFlag_ValidatePhoneWithTwilio:   validatePhoneWithTwilioFlag,
		LDFlag_ValidateEmailWithSendGrid: validateEmailWithSendGridFlag,
		LDFlag_SeedDbWithTestData:        seedDbWithTestDataFlag,
		LDFlag_SMSAlertsEnabled:          smsAlertsEnabledFlag,
		LDFlag_AITriageEnabled:           aiTriageEnabledFlag,
		LDFlag_CORSHighSecurity:          corsHighSecurityFlag,
	}
}

func (c *Config) Close() {}
