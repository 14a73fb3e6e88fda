package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation       ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload   ErrCode = "INVALID_PAYLOAD"
	ErrInvalidFeeFormat ErrCode = "INVALID_FEE_FORMAT"
	ErrTotalMismatch    ErrCode = "TOTAL_MISMATCH"
	ErrDuplicateKey     ErrCode = "DUPLICATE_KEY"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrStudentNotFound ErrCode = "STUDENT_NOT_FOUND"
	ErrSubjectNotFound ErrCode = "SUBJECT_NOT_FOUND"
	ErrReceiptNotFound ErrCode = "RECEIPT_NOT_FOUND"

	// ─── Idempotency ───────────────────────────────────────────────────
	ErrConflict              ErrCode = "CONFLICT"
	ErrIdempotencyInProgress ErrCode = "IDEMPOTENCY_IN_PROGRESS"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrStorageDisabled ErrCode = "STORAGE_DISABLED"
	ErrInternal        ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "Request payload is invalid."
	case ErrInvalidFeeFormat:
		return "Fee must be a non-negative number."
	case ErrTotalMismatch:
		return "Submitted total does not match the current subject fees."
	case ErrDuplicateKey:
		return "A record with this key already exists."

	case ErrNotFound:
		return "Resource not found."
	case ErrStudentNotFound:
		return "Student not found."
	case ErrSubjectNotFound:
		return "Subject not found."
	case ErrReceiptNotFound:
		return "Receipt not found."

	case ErrConflict:
		return "Idempotency key was reused with a different request."
	case ErrIdempotencyInProgress:
		return "A request with this idempotency key is still being processed."

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrStorageDisabled:
		return "Export archiving is not configured."
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
