//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"
)

// Operator identifies who started a session.
type Operator struct {
	// Hostname is the machine the sentinel runs on.
	Hostname string
	// Username is the system user that started it.
	Username string
}

// String renders the operator as username@hostname.
func (o *Operator) String() string {
	if o == nil {
		return "<unknown>"
	}

	return o.Username + "@" + o.Hostname
}

// DetectOperator gathers host and user information for the session log.
func DetectOperator() (*Operator, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &Operator{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}
