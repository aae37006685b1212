package utils

const (
	OrganizationName = "Rentline"

	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"

	LandlordAccountType = "landlord"
	TenantAccountType   = "tenant"
	AdminAccountType    = "admin"

	// TestEmailSuffix marks throwaway accounts minted by the test suites.
	// The domain is ours and has MX records, so these addresses survive
	// the deliverability checks without a SendGrid call.
	TestEmailSuffix = "testing@rentline.ng"
	TestPhoneBase   = "+23480"
)
