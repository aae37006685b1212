package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/mail"
	"strings"

	"github.com/sendgrid/sendgrid-go"
)

// isValidEmailSyntax does RFC-5322-ish syntax only (no DNS).
// mail.ParseAddress is surprisingly strict.
func isValidEmailSyntax(e string) bool {
	_, err := mail.ParseAddress(e)
	return err == nil
}

// hasMX checks an MX record via the default resolver.
func hasMX(ctx context.Context, domain string) bool {
	mx, err := net.DefaultResolver.LookupMX(ctx, domain)
	return err == nil && len(mx) > 0
}

// ValidateEmail returns true if:
//
//   - the string parses as an email, AND
//   - either:
//
//     – validateWithSendGrid == false ➜ MX lookup passes
//     – validateWithSendGrid == true  ➜ SendGrid "Deliverability Check" verdict is
//     "Valid" OR "Risky" (SendGrid uses those exact strings)
//
// Any SendGrid/network error is returned so the caller can decide.
func ValidateEmail(ctx context.Context, apiKey string, email string, validateWithSendGrid bool) (bool, error) {
	if !isValidEmailSyntax(email) {
		return false, nil
	}

	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return false, nil
	}
	if !hasMX(ctx, parts[1]) {
		return false, nil
	}

	if validateWithSendGrid {
		req := sendgrid.GetRequest(apiKey, "/v3/validations/email", "https://api.sendgrid.com")
		req.Method = "POST"
		req.Body = []byte(fmt.Sprintf(`{"email":"%s"}`, email))

		resp, err := sendgrid.API(req)
		if err != nil {
			return false, err
		}

		switch resp.StatusCode {
		case 200:
			var sg struct {
				Result struct {
					Verdict string `json:"verdict"`
				} `json:"result"`
			}
			if jsonErr := json.Unmarshal([]byte(resp.Body), &sg); jsonErr != nil {
				return false, fmt.Errorf("sendgrid JSON decode: %w", jsonErr)
			}
			verdict := strings.ToLower(sg.Result.Verdict)
			return verdict == "valid" || verdict == "risky", nil

		case 400: // SendGrid treats syntactically bad addresses as 400
			return false, nil
		default:
			return false, fmt.Errorf("sendgrid validation failed: status %d - %s", resp.StatusCode, resp.Body)
		}
	}

	return true, nil
}
