// Package errs provides the error taxonomy shared by every layer of the fulfillment service.
//
// Value errors describe malformed input and are classified as validation failures:
//   - ValueIsRequiredError: a required value is missing
//   - ValueIsInvalidError: a value is present but malformed
//   - ValueIsOutOfRangeError: a value is outside its permitted range
//
// Request-level errors describe why an operation could not complete:
//   - ObjectNotFoundError: unknown order or tenant
//   - UnauthorizedError: missing or invalid credential
//   - LedgerUnavailableError: the ledger write failed; fatal to the request
//   - RelayUnavailableError: Central could not be reached; recovered by queueing
//   - QuotaExceededError: a rate limit was hit; carries a retry-after hint
//
// Each error type unwraps to a sentinel (ErrObjectNotFound, ErrUnauthorized, ...) so callers
// classify with errors.Is and the HTTP adapter maps each family to one status code.
package errs
