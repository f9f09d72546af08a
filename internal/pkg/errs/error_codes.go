/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: World and Player Business Logic Errors
const (
	// ErrLocationNotFound indicates that the requested location does not exist.
	ErrLocationNotFound = 2101

	// ErrNoLinkToLocation indicates that no link leads from the player's current
	// location to the requested destination.
	ErrNoLinkToLocation = 2102

	// ErrAccessLevelTooLow indicates that the player's access level does not meet
	// the requirement of the link or location.
	ErrAccessLevelTooLow = 2103

	// ErrPlayerNotFound indicates that no player record exists for the user.
	ErrPlayerNotFound = 2201
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrPowChallengeRequired indicates the client must complete a Proof-of-Work challenge first.
	ErrPowChallengeRequired = 3001

	// ErrPowChallengeInvalid indicates that the PoW proof provided by the client is invalid or incorrect.
	ErrPowChallengeInvalid = 3002

	// ErrPowChallengeInternal indicates an internal error occurred during the PoW challenge generation or validation process.
	ErrPowChallengeInternal = 3003

	// ErrInvalidUsername indicates that the supplied username does not meet the format requirements.
	ErrInvalidUsername = 3101

	// ErrInvalidEmail indicates that the supplied email address is malformed.
	ErrInvalidEmail = 3102

	// ErrInvalidPassword indicates that the supplied password does not meet the length requirements.
	ErrInvalidPassword = 3103

	// ErrUserAlreadyExists indicates that the username or email is already registered.
	ErrUserAlreadyExists = 3104

	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = 3105

	// ErrUnauthorized indicates a missing or invalid bearer token on a protected route.
	ErrUnauthorized = 3201

	// ErrForbidden indicates that the authenticated user's role is not sufficient
	// for the requested operation.
	ErrForbidden = 3202
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageFailed indicates a failure while talking to the S3-compatible
	// storage backing location imagery.
	ErrStorageFailed = 5001
)
