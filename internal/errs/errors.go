package errs

// Error kinds surfaced by the core. Handlers translate these into transport
// responses; nothing here carries storage-engine detail.
const (
	// ErrCredentialInput is returned when a signup is attempted with a
	// missing or empty username, email, or password. Detected before any
	// hashing or storage attempt.
	ErrCredentialInput kindError = "warbler: username, email and password are required"

	// ErrUniquenessViolation is returned when committing a user or edge
	// collides with an existing row. It is surfaced from the storage
	// layer's unique constraint, never from a pre-check.
	ErrUniquenessViolation kindError = "warbler: value already taken"

	// ErrNotFound is returned when a referenced user or message does not
	// exist. Idempotent operations treat a missing edge as a no-op and do
	// not return this.
	ErrNotFound kindError = "warbler: resource not found"

	// ErrTextRequired is returned when a message is posted with empty text.
	ErrTextRequired kindError = "warbler: message text must not be empty"

	// ErrTextTooLong is returned when a message exceeds the 140 character
	// limit.
	ErrTextTooLong kindError = "warbler: message text must not exceed 140 characters"
)

type kindError string

func (e kindError) Error() string {
	return string(e)
}
