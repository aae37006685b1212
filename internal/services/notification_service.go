package services

import (
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/rentline/rental-service/internal/config"
	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/utils"
)

// NotificationService owns every outbound email and SMS. Callers treat
// sends as fire-and-forget; a failed notification never rolls back the
// write that triggered it.
type NotificationService struct {
	cfg            *config.Config
	sendgridClient *sendgrid.Client
	twilioClient   *twilio.RestClient
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	sgClient := sendgrid.NewSendClient(cfg.SendGridAPIKey)
	tClient := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return &NotificationService{
		cfg:            cfg,
		sendgridClient: sgClient,
		twilioClient:   tClient,
	}
}

// ---------------------------------------------------------------------
// Invitation email
// ---------------------------------------------------------------------

func (n *NotificationService) SendInvitationEmail(
	toEmail string,
	landlord *models.User,
	property *models.Property,
	link *models.InvitationLink,
) error {
	inviteURL := fmt.Sprintf("%s/invitations/%s", n.cfg.AppUrl, link.Token.String())

	from := mail.NewEmail(n.cfg.OrganizationName, n.cfg.LDFlag_SendgridFromEmail)
	to := mail.NewEmail("", toEmail)
	subject := n.cfg.OrganizationName + " - Tenancy Invitation"

	plainTextContent := fmt.Sprintf(
		"%s has invited you to move into %s (%s). Accept here: %s (expires %s)",
		landlord.FullName(), property.Title, property.Address, inviteURL,
		link.ExpiresAt.Format("2 Jan 2006"),
	)
	htmlContent := fmt.Sprintf(invitationEmailHTML,
		landlord.FullName(), property.Title, property.Address,
		link.ExpiresAt.Format("2 Jan 2006"), inviteURL, time.Now().Year(),
	)
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	return n.send(message, toEmail)
}

// ---------------------------------------------------------------------
// Application decision email
// ---------------------------------------------------------------------

func (n *NotificationService) SendApplicationDecisionEmail(
	toEmail string,
	firstName string,
	propertyTitle string,
	accepted bool,
	reply *string,
) error {
	headline := "Application update"
	body := fmt.Sprintf("Your application for %s was not successful this time.", propertyTitle)
	if accepted {
		headline = "Application accepted"
		body = fmt.Sprintf("Good news! Your application for %s has been accepted. Your landlord will be in touch about moving in.", propertyTitle)
	}

	quoted := ""
	if reply != nil && *reply != "" {
		quoted = fmt.Sprintf("<blockquote>%s</blockquote>", *reply)
	}

	from := mail.NewEmail(n.cfg.OrganizationName, n.cfg.LDFlag_SendgridFromEmail)
	to := mail.NewEmail(firstName, toEmail)
	subject := fmt.Sprintf("%s - %s", n.cfg.OrganizationName, headline)

	plainTextContent := body
	if reply != nil && *reply != "" {
		plainTextContent += "\n\n" + *reply
	}
	htmlContent := fmt.Sprintf(applicationDecisionEmailHTML,
		headline, firstName, body, quoted, time.Now().Year(),
	)
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	return n.send(message, toEmail)
}

// ---------------------------------------------------------------------
// Emergency maintenance SMS
// ---------------------------------------------------------------------

// SendMaintenanceAlertSMS texts the landlord about an emergency
// request. Gated on the sms_alerts_enabled flag.
func (n *NotificationService) SendMaintenanceAlertSMS(
	toPhone string,
	propertyTitle string,
	requestTitle string,
) error {
	if !n.cfg.LDFlag_SMSAlertsEnabled {
		utils.Logger.Debug("sms_alerts_enabled is off; skipping maintenance alert SMS")
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(toPhone)
	params.SetFrom(n.cfg.LDFlag_TwilioFromPhone)
	params.SetBody(fmt.Sprintf("%s: EMERGENCY maintenance reported at %s - %q. Log in to respond.",
		n.cfg.OrganizationName, propertyTitle, requestTitle))

	_, sendErr := n.twilioClient.Api.CreateMessage(params)
	if sendErr != nil {
		utils.Logger.WithError(sendErr).Errorf("Failed to send maintenance alert SMS to %s via Twilio", toPhone)
		return fmt.Errorf("%w: failed to send sms via twilio: %v", utils.ErrExternalServiceFailure, sendErr)
	}
	return nil
}

// send applies the sandbox flag and pushes the message out through
// SendGrid.
func (n *NotificationService) send(message *mail.SGMailV3, toEmail string) error {
	if n.cfg.LDFlag_SendgridSandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		message.MailSettings = ms
	}

	_, sendErr := n.sendgridClient.Send(message)
	if sendErr != nil {
		utils.Logger.WithError(sendErr).Errorf("Failed to send email to %s via SendGrid", toEmail)
		return fmt.Errorf("%w: failed to send email via sendgrid: %v", utils.ErrExternalServiceFailure, sendErr)
	}
	return nil
}
