package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex subs_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	UUID_PREFIX_PLAN         = "plan"
	UUID_PREFIX_SUBSCRIPTION = "subs"
	UUID_PREFIX_CREDIT_USAGE = "usage"
	UUID_PREFIX_REFERRAL     = "ref"
	UUID_PREFIX_INVOICE      = "inv"
	UUID_PREFIX_AUDIT_LOG    = "audit"
)
