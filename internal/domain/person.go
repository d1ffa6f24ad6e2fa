package domain

import (
	"fmt"
	"net"
	"strings"
)

// PersonID is the chat-provider account identifier for one person
// (Slack user IDs look like "U0123ABCD" or "W0123ABCD").
type PersonID string

const minPersonIDLength = 9

type Person struct {
	ID          PersonID
	Address     string
	DisplayName string
}

func (p Person) Validate() error {
	if err := validatePersonID(p.ID); err != nil {
		return err
	}

	if strings.TrimSpace(p.DisplayName) == "" {
		return fmt.Errorf("person %s: %w: display name is empty", p.ID, ErrInvalidPerson)
	}

	ip := net.ParseIP(p.Address)
	if ip == nil || ip.To4() == nil {
		return fmt.Errorf("person %s: %w: address %q is not an IPv4 literal", p.ID, ErrInvalidPerson, p.Address)
	}

	return nil
}

func validatePersonID(id PersonID) error {
	raw := string(id)
	if raw == "" {
		return fmt.Errorf("%w: person id is empty", ErrInvalidPerson)
	}
	if len(raw) < minPersonIDLength {
		return fmt.Errorf("%w: person id %q is shorter than %d characters", ErrInvalidPerson, raw, minPersonIDLength)
	}
	if raw[0] != 'U' && raw[0] != 'W' {
		return fmt.Errorf("%w: person id %q does not start with U or W", ErrInvalidPerson, raw)
	}
	for _, r := range raw {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return fmt.Errorf("%w: person id %q contains %q", ErrInvalidPerson, raw, r)
		}
	}

	return nil
}

// ValidateRoster checks every entry and rejects the whole roster on the
// first problem, including duplicated ids or addresses.
func ValidateRoster(people []Person) error {
	seenIDs := make(map[PersonID]struct{}, len(people))
	seenAddrs := make(map[string]struct{}, len(people))

	for _, person := range people {
		if err := person.Validate(); err != nil {
			return err
		}
		if _, ok := seenIDs[person.ID]; ok {
			return fmt.Errorf("%w: duplicate person id %q", ErrInvalidPerson, person.ID)
		}
		if _, ok := seenAddrs[person.Address]; ok {
			return fmt.Errorf("%w: duplicate address %q", ErrInvalidPerson, person.Address)
		}
		seenIDs[person.ID] = struct{}{}
		seenAddrs[person.Address] = struct{}{}
	}

	return nil
}
