// Package sanitize strips markup from user-supplied text before it is
// persisted or rendered. Guard only accepts plain-text input (display
// names), so the strict bluemonday policy is used: every tag and
// attribute is removed.
package sanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the singleton bluemonday policy. Initialized once via
// sync.Once for thread-safe lazy initialization.
var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared policy, initializing it on first call.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// DisplayName returns the name with all HTML removed and surrounding
// whitespace trimmed. A name that was nothing but markup comes back
// empty, which callers treat as a missing name.
func DisplayName(name string) string {
	return strings.TrimSpace(getPolicy().Sanitize(name))
}
