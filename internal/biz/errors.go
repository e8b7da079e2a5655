package biz

import (
	"strconv"

	"github.com/go-kratos/kratos/v2/errors"
)

// Error reasons. The service layer maps them to user-facing text.
const (
	ReasonNotLinked             = "NOT_LINKED"
	ReasonUnknownOrExpiredState = "UNKNOWN_OR_EXPIRED_STATE"
	ReasonMissingParameters     = "MISSING_PARAMETERS"
	ReasonTokenExchangeFailed   = "TOKEN_EXCHANGE_FAILED"
	ReasonAccountLookupFailed   = "ACCOUNT_LOOKUP_FAILED"
	ReasonCatalogFetchFailed    = "CATALOG_FETCH_FAILED"
	ReasonEmptyCatalog          = "EMPTY_CATALOG"
	ReasonNotSessionOwner       = "NOT_SESSION_OWNER"
	ReasonSessionRetired        = "SESSION_RETIRED"
	ReasonDebugDisabled         = "DEBUG_DISABLED"
	ReasonMissingOwner          = "MISSING_OWNER"
)

var (
	// ErrNotLinked the user has no stored credential.
	ErrNotLinked = errors.NotFound(ReasonNotLinked, "no linked account")
	// ErrUnknownOrExpiredState the state was never issued, already consumed, or expired.
	ErrUnknownOrExpiredState = errors.BadRequest(ReasonUnknownOrExpiredState, "invalid or expired state")
	// ErrMissingParameters code or state missing on the callback.
	ErrMissingParameters = errors.BadRequest(ReasonMissingParameters, "missing code or state")
	// ErrAccountLookupFailed the identity endpoint rejected the credential.
	ErrAccountLookupFailed = errors.Unauthorized(ReasonAccountLookupFailed, "could not fetch account info, token may be expired")
	// ErrCatalogFetchFailed the catalog endpoint failed.
	ErrCatalogFetchFailed = errors.New(502, ReasonCatalogFetchFailed, "failed to fetch locker")
	// ErrEmptyCatalog the account has no items to show.
	ErrEmptyCatalog = errors.NotFound(ReasonEmptyCatalog, "no items found in locker")
	// ErrNotSessionOwner someone other than the owner pressed a control.
	ErrNotSessionOwner = errors.Forbidden(ReasonNotSessionOwner, "this locker is not for you")
	// ErrSessionRetired the session timed out or was torn down.
	ErrSessionRetired = errors.New(410, ReasonSessionRetired, "locker session has ended")
	// ErrDebugDisabled the token introspection endpoint is off.
	ErrDebugDisabled = errors.Forbidden(ReasonDebugDisabled, "disabled")
	// ErrMissingOwner no chat user id supplied.
	ErrMissingOwner = errors.BadRequest(ReasonMissingOwner, "missing discordId")
)

// ErrTokenExchangeFailed 令牌交换失败，上游状态码与响应体放在 metadata 中
func ErrTokenExchangeFailed(status int, body string, cause error) *errors.Error {
	return errors.InternalServer(ReasonTokenExchangeFailed, "token exchange failed").
		WithMetadata(map[string]string{
			"status": strconv.Itoa(status),
			"body":   body,
		}).
		WithCause(cause)
}
