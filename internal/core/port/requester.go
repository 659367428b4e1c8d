package port

import (
	"context"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
)

// Requester is the HTTP fetch capability used by the cache layer.
// out may be nil when the response body is not needed.
type Requester interface {
	Do(ctx context.Context, method, path string, body any, out any) error
	// Upload POSTs file as the multipart form field named field.
	Upload(ctx context.Context, path, field string, file domain.ImageUpload, out any) error
}

// CredentialSource exposes the bearer credential attached to outgoing requests.
type CredentialSource interface {
	Credential() string
}

// CredentialRenewer exchanges the refresh cookie for a new bearer credential.
type CredentialRenewer interface {
	RenewCredential(ctx context.Context) (string, error)
}

// CredentialRefresher renews the credential once and reports success.
type CredentialRefresher interface {
	Refresh(ctx context.Context) bool
}
