package cwlpack

import (
	"strconv"
	"strings"
)

const illegalAppNameChars = ".!@#$%^&*()"

// ValidateAppID checks a repository application identifier of the form
// {owner}/{project}/{name} or {owner}/{project}/{name}/{revision}, where
// revision is a non-negative integer.
func ValidateAppID(appID string) error {
	parts := strings.Split(appID, "/")
	switch len(parts) {
	case 3:
	case 4:
		if revision, err := strconv.Atoi(parts[3]); err != nil || revision < 0 {
			return &InvalidAppIDError{AppID: appID, Reason: "revision must be a non-negative integer"}
		}
	default:
		return &InvalidAppIDError{AppID: appID, Reason: "expected {owner}/{project}/{name}[/{revision}]"}
	}
	for _, part := range parts[:3] {
		if part == "" {
			return &InvalidAppIDError{AppID: appID, Reason: "empty path segment"}
		}
	}
	if strings.ContainsAny(parts[2], illegalAppNameChars) {
		return &InvalidAppIDError{AppID: appID, Reason: "app name may not contain any of " + illegalAppNameChars}
	}
	return nil
}

// InvalidAppIDError reports a malformed application identifier.
type InvalidAppIDError struct {
	AppID  string
	Reason string
}

func (e *InvalidAppIDError) Error() string {
	return "invalid app id " + strconv.Quote(e.AppID) + ": " + e.Reason
}
