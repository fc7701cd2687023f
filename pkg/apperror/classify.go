package apperror

import (
	"errors"
	"strings"
)

// StatusCoder is implemented by backend errors carrying a normalized status code
// such as "PERMISSION_DENIED".
type StatusCoder interface {
	BackendStatus() string
}

// credentialCodes are backend status codes that always mean a key problem.
var credentialCodes = map[string]struct{}{
	"UNAUTHENTICATED":   {},
	"PERMISSION_DENIED": {},
}

// CredentialRule matches a backend error message, case-insensitively.
type CredentialRule struct {
	Name      string
	Substring string
}

// CredentialRules is the message table used when no status code settles it.
var CredentialRules = []CredentialRule{
	{Name: "invalid_key", Substring: "api key not valid"},
	{Name: "invalid_key", Substring: "api_key_invalid"},
	{Name: "entity_not_found", Substring: "requested entity was not found"},
	{Name: "upload_url", Substring: "failed to get upload url"},
	{Name: "permission_denied", Substring: "permission denied"},
	{Name: "permission_denied", Substring: "permission_denied"},
}

// MatchCredentialRule returns the name of the first rule matching msg.
func MatchCredentialRule(msg string) (string, bool) {
	lower := strings.ToLower(msg)
	for _, r := range CredentialRules {
		if strings.Contains(lower, r.Substring) {
			return r.Name, true
		}
	}
	return "", false
}

// IsCredentialProblem reports whether err should be surfaced as a credential error.
func IsCredentialProblem(err error) bool {
	if err == nil {
		return false
	}
	var ce *CredentialError
	if errors.As(err, &ce) {
		return true
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		if _, ok := credentialCodes[strings.ToUpper(sc.BackendStatus())]; ok {
			return true
		}
	}
	_, ok := MatchCredentialRule(err.Error())
	return ok
}

// Reclassify wraps err in a CredentialError when it is a credential problem and
// returns it unchanged otherwise.
func Reclassify(err error) error {
	if err == nil {
		return nil
	}
	var ce *CredentialError
	if errors.As(err, &ce) {
		return err
	}
	if IsCredentialProblem(err) {
		return &CredentialError{Cause: err}
	}
	return err
}
