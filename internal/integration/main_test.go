//go:build (dev_test || staging_test) && integration

package integration

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rentline/rental-service/internal/config"
	"github.com/rentline/rental-service/internal/controllers"
	"github.com/rentline/rental-service/internal/dtos"
	"github.com/rentline/rental-service/internal/routes"
	"github.com/rentline/rental-service/internal/testhelpers"
	"github.com/rentline/rental-service/internal/utils"
)

var h *testhelpers.TestHelper

// TestMain sets up a single TestHelper for all integration tests in this package.
func TestMain(m *testing.M) {
	if config.AppName == "" {
		log.Fatal("AppName ldflag is missing")
	}

	flag.Parse()

	// Use a dummy testing.T to initialize the helper.
	// We can't use one from a real test since TestMain runs before tests.
	t := &testing.T{}
	h = testhelpers.NewTestHelper(t, config.AppName)

	// Give DB a moment to be fully ready
	time.Sleep(100 * time.Millisecond)

	code := m.Run()
	os.Exit(code)
}

// =============================================================================
// SHARED HELPER FUNCTIONS
// =============================================================================

// --- Generic request helpers ---

func doRequest(t *testing.T, method, urlStr string, body []byte, headers map[string]string) *http.Response {
	return doRequestWithClient(t, nil, method, urlStr, body, headers)
}

func doRequestWithClient(t *testing.T, client *http.Client, method, urlStr string, body []byte, headers map[string]string) *http.Response {
	if client == nil {
		client = &http.Client{}
	}
	req, err := http.NewRequest(method, urlStr, strings.NewReader(string(body)))
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func newBrowserClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// --- Registration helpers ---

func registerUserStatus(t *testing.T, reqDTO dtos.RegisterRequest) int {
	body, err := json.Marshal(reqDTO)
	require.NoError(t, err)

	resp := doRequest(t, http.MethodPost, h.BaseURL+routes.AuthRegister, body, map[string]string{
		"Content-Type": "application/json",
		"X-Platform":   "web",
	})
	defer resp.Body.Close()
	return resp.StatusCode
}

func registerUser(t *testing.T, reqDTO dtos.RegisterRequest) {
	status := registerUserStatus(t, reqDTO)
	require.Equal(t, http.StatusCreated, status,
		fmt.Sprintf("registerUser: expected 201 for %s, got %d", reqDTO.Email, status))
}

// --- Login/Logout/Refresh helpers ---

// loginWebExpect drives a browser-style login. On success the tokens travel
// as cookies only and the body carries just the user object.
func loginWebExpect(t *testing.T, client *http.Client, identifier, password string, wantStatus int) *dtos.LoginResponse {
	reqDTO := dtos.LoginRequest{Identifier: identifier, Password: password}
	body, err := json.Marshal(reqDTO)
	require.NoError(t, err)

	resp := doRequestWithClient(t, client, http.MethodPost, h.BaseURL+routes.AuthLogin, body, map[string]string{
		"Content-Type": "application/json",
		"X-Platform":   "web",
	})
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode,
		fmt.Sprintf("loginWebExpect: expected %d, got %d. Body: %s", wantStatus, resp.StatusCode, string(data)))

	if wantStatus != http.StatusOK {
		return nil
	}

	var loginResp dtos.LoginResponse
	require.NoError(t, json.Unmarshal(data, &loginResp))
	require.Empty(t, loginResp.AccessToken, "web login must not return tokens in the body")
	require.Empty(t, loginResp.RefreshToken, "web login must not return tokens in the body")

	cookiesPresent(t, client, controllers.RefreshCookiePath)
	return &loginResp
}

func loginWeb(t *testing.T, identifier, password string) (*dtos.LoginResponse, *http.Client) {
	client := newBrowserClient(t)
	loginResp := loginWebExpect(t, client, identifier, password, http.StatusOK)
	return loginResp, client
}

func logoutWebExpectSuccess(t *testing.T, client *http.Client) {
	resp := doRequestWithClient(t, client, http.MethodPost, h.BaseURL+routes.AuthLogout, nil, map[string]string{
		"X-Platform": "web",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func refreshWeb(t *testing.T, client *http.Client, expectSuccess bool) error {
	resp := doRequestWithClient(t, client, http.MethodPost, h.BaseURL+routes.AuthRefreshToken, nil, map[string]string{
		"X-Platform": "web",
	})
	defer resp.Body.Close()

	if expectSuccess {
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("refreshWeb expected 200, got %d. Body: %s", resp.StatusCode, string(body))
		}
		return nil
	}

	if resp.StatusCode == http.StatusOK {
		return fmt.Errorf("refreshWeb unexpectedly succeeded")
	}
	return nil
}

func loginMobileExpect(t *testing.T, identifier, password, platform, deviceID string, wantStatus int) *dtos.LoginResponse {
	reqDTO := dtos.LoginRequest{Identifier: identifier, Password: password}
	body, err := json.Marshal(reqDTO)
	require.NoError(t, err)

	headers := map[string]string{
		"Content-Type": "application/json",
		"X-Platform":   platform,
	}
	if deviceID != "" {
		headers["X-Device-ID"] = deviceID
	}

	resp := doRequest(t, http.MethodPost, h.BaseURL+routes.AuthLogin, body, headers)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode,
		fmt.Sprintf("loginMobileExpect: expected %d, got %d. Body: %s", wantStatus, resp.StatusCode, string(data)))

	if wantStatus != http.StatusOK {
		return nil
	}

	var loginResp dtos.LoginResponse
	require.NoError(t, json.Unmarshal(data, &loginResp))
	require.NotEmpty(t, loginResp.AccessToken, "mobile login must return an access token in the body")
	require.NotEmpty(t, loginResp.RefreshToken, "mobile login must return a refresh token in the body")
	return &loginResp
}

func loginMobile(t *testing.T, identifier, password, platform, deviceID string) *dtos.LoginResponse {
	return loginMobileExpect(t, identifier, password, platform, deviceID, http.StatusOK)
}

func logoutMobileExpectSuccess(t *testing.T, accessToken, refreshToken, platform, deviceID string) {
	reqDTO := dtos.LogoutRequest{RefreshToken: refreshToken}
	body, err := json.Marshal(reqDTO)
	require.NoError(t, err)

	resp := doRequest(t, http.MethodPost, h.BaseURL+routes.AuthLogout, body, map[string]string{
		"Authorization": "Bearer " + accessToken,
		"Content-Type":  "application/json",
		"X-Platform":    platform,
		"X-Device-ID":   deviceID,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func refreshMobile(t *testing.T, oldRefreshToken, platform, deviceID string, expectSuccess bool) (string, string, error) {
	reqDTO := dtos.RefreshTokenRequest{RefreshToken: oldRefreshToken}
	body, err := json.Marshal(reqDTO)
	require.NoError(t, err)

	resp := doRequest(t, http.MethodPost, h.BaseURL+routes.AuthRefreshToken, body, map[string]string{
		"Content-Type": "application/json",
		"X-Platform":   platform,
		"X-Device-ID":  deviceID,
	})
	defer resp.Body.Close()

	if expectSuccess {
		if resp.StatusCode != http.StatusOK {
			return "", "", fmt.Errorf("refreshMobile: expected 200 but got %d", resp.StatusCode)
		}
		var refreshResp dtos.RefreshTokenResponse
		data, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(data, &refreshResp); err != nil {
			return "", "", err
		}
		return refreshResp.AccessToken, refreshResp.RefreshToken, nil
	}

	if resp.StatusCode == http.StatusOK {
		return "", "", fmt.Errorf("refreshMobile: expected fail but got 200")
	}
	return "", "", nil
}

// cookiesPresent asserts that the jar holds both auth cookies. The refresh
// cookie is path-scoped, so it only shows up for the refresh endpoint URL.
func cookiesPresent(t *testing.T, client *http.Client, refreshPath string) {
	require.NotNil(t, client, "nil http.Client passed to cookiesPresent")

	rootURL, err := url.Parse(h.BaseURL)
	require.NoError(t, err)
	all := client.Jar.Cookies(rootURL)

	refreshURL, err := url.Parse(h.BaseURL + refreshPath)
	require.NoError(t, err)
	all = append(all, client.Jar.Cookies(refreshURL)...)

	hasAccess, hasRefresh := false, false
	for _, c := range all {
		switch c.Name {
		case utils.AccessTokenCookieName:
			hasAccess = true
		case utils.RefreshTokenCookieName:
			hasRefresh = true
		}
	}
	require.True(t, hasAccess, "access token cookie missing")
	require.True(t, hasRefresh, "refresh token cookie missing")
}

// requireErrorCode decodes the standard error envelope and asserts its code.
func requireErrorCode(t *testing.T, resp *http.Response, wantCode string) {
	var er utils.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &er), "response is not the standard error envelope")
	require.Equal(t, wantCode, er.Code)
}
