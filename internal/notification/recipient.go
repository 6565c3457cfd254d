package notification

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ErrUnresolvedRecipient means the owner has no deliverable address.
var ErrUnresolvedRecipient = errors.New("recipient has no email address")

// RecipientResolver maps a complaint owner to a mail address.
type RecipientResolver interface {
	ResolveRecipient(ctx context.Context, ownerID string) (string, error)
}

// UserLookup fetches a user by id.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// DirectoryResolver resolves recipients from the user directory.
// A user's email wins; a username that is itself an address is the fallback.
type DirectoryResolver struct {
	users UserLookup
}

// NewDirectoryResolver builds a resolver backed by users.
func NewDirectoryResolver(users UserLookup) *DirectoryResolver {
	return &DirectoryResolver{users: users}
}

func (r *DirectoryResolver) ResolveRecipient(ctx context.Context, ownerID string) (string, error) {
	user, err := r.users.GetByID(ctx, ownerID)
	if err != nil {
		return "", fmt.Errorf("lookup owner %s: %w", ownerID, err)
	}
	candidates := []string{user.Username}
	if user.Email != nil {
		candidates = append([]string{*user.Email}, candidates...)
	}
	for _, candidate := range candidates {
		if addr, ok := parseAddress(candidate); ok {
			return addr, nil
		}
	}
	return "", ErrUnresolvedRecipient
}

func parseAddress(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.Contains(raw, "@") {
		return "", false
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", false
	}
	return addr.Address, true
}
