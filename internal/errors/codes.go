package errors

// Error code constants, format: CATEGORY_SPECIFIC_DETAIL.
// Frontends map these codes to their own messages.

const (
	// Authentication (AUTH_)
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthUserNotFound       = "AUTH_USER_NOT_FOUND"      // unknown email at login
	AuthInvalidPassword    = "AUTH_INVALID_PASSWORD"    // wrong password at login
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // session token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // bad session token
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // duplicate email
	AuthResetTokenInvalid  = "AUTH_RESET_TOKEN_INVALID" // reset token absent or expired

	// Authorization (AUTHZ_)
	AuthzForbidden    = "AUTHZ_FORBIDDEN"      // role not permitted
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND" // no role attached to request

	// Validation (VALIDATION_)
	ValidationInvalidInput     = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID        = "VALIDATION_INVALID_ID"
	ValidationRequired         = "VALIDATION_REQUIRED"
	ValidationPasswordMismatch = "VALIDATION_PASSWORD_MISMATCH" // password != confirmation
	ValidationWrongOldPassword = "VALIDATION_WRONG_OLD_PASSWORD"

	// Resources (RESOURCE_)
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// Products (PRODUCT_)
	ProductNotFound = "PRODUCT_NOT_FOUND"

	// Uploads (UPLOAD_)
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFailed          = "UPLOAD_FAILED"

	// Internal (INTERNAL_)
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalMailError     = "INTERNAL_MAIL_ERROR" // notifier delivery failure
)
