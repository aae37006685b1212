package utils

import (
	"errors"
)

/*
Sentinel errors for the rental domain. Repositories and services return
these so controllers can do: if errors.Is(err, ErrXYZ) { ... }
*/
var (
	// Accounts / auth
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidPhone       = errors.New("invalid_phone")
	ErrEmailExists        = errors.New("email_exists")
	ErrUsernameExists     = errors.New("username_exists")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountLocked      = errors.New("locked_account")
	ErrPermissionDenied   = errors.New("permission_denied")
	ErrFileTooLarge       = errors.New("file_too_large")

	// Properties
	ErrPropertyOccupied    = errors.New("property_occupied")
	ErrPropertyUnavailable = errors.New("property_unavailable")
	ErrInvalidDateRange    = errors.New("invalid_date_range")
	ErrUnknownState        = errors.New("unknown_state")

	// Invitations
	ErrInvitationUsed    = errors.New("invitation_already_used")
	ErrInvitationExpired = errors.New("invitation_expired")

	// Applications
	ErrDuplicatePending      = errors.New("duplicate_pending_application")
	ErrActiveTenancyExists   = errors.New("already_has_active_tenancy")
	ErrApplicationNotPending = errors.New("application_not_pending")
	ErrEmptyReply            = errors.New("empty_reply")

	// Tenancies
	ErrTenancyNotActive = errors.New("no_active_tenancy")
	ErrTenancyFinalized = errors.New("tenancy_finalized")
	ErrTenancyNotEnded  = errors.New("tenancy_not_terminated")
	ErrNotTenancyParty  = errors.New("not_tenancy_party")

	// Maintenance
	ErrRequestLocked = errors.New("maintenance_request_locked")

	// Concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")
	ErrNoRowsUpdated      = errors.New("no_rows_updated")

	// External collaborators (SendGrid, Twilio, OpenAI)
	ErrExternalServiceFailure = errors.New("external_service_failure")
)
