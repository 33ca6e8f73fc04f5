package exhibit

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/vitrine/internal/domain"
	"github.com/kailas-cloud/vitrine/internal/domain/validation"
)

// ContactEmails is the ordered list of exhibit contact addresses.
// It is always saved and replaced as a whole.
type ContactEmails []string

// ContactEntry is the per-address view editing surfaces work with.
// Entries have no identity of their own and are never stored individually.
type ContactEntry struct {
	Email string `json:"email"`
}

// ContactEmailsFromEntries builds the replacement list from submitted entries,
// dropping blank ones.
func ContactEmailsFromEntries(entries []ContactEntry) ContactEmails {
	out := make(ContactEmails, 0, len(entries))
	for _, e := range entries {
		if addr := strings.TrimSpace(e.Email); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// Entries returns the list as editable entries.
func (c ContactEmails) Entries() []ContactEntry {
	out := make([]ContactEntry, len(c))
	for i, addr := range c {
		out[i] = ContactEntry{Email: addr}
	}
	return out
}

// Validate checks every address and reports all invalid ones at once,
// keyed "contact_emails.<index>".
func (c ContactEmails) Validate() error {
	var verr *domain.ValidationError
	for i, addr := range c {
		if validation.Email(addr) {
			continue
		}
		if verr == nil {
			verr = &domain.ValidationError{Fields: make(map[string]string)}
		}
		verr.Fields[fmt.Sprintf("contact_emails.%d", i)] = fmt.Sprintf("%s is not valid", addr)
	}
	if verr == nil {
		return nil
	}
	return verr
}

// Equal reports element-wise equality.
func (c ContactEmails) Equal(o ContactEmails) bool { return slices.Equal(c, o) }
