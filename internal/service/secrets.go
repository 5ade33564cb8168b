package service

import (
	"context"
	"fmt"
	"strings"

	"netatlas/internal/access"
	"netatlas/internal/domain"
	"netatlas/internal/repository"
	"netatlas/internal/vault"
)

// SecretService manages sealed device secrets. The whole surface, listing
// included, sits on the write tier: secrets are administrator territory.
type SecretService struct {
	repo     repository.Repository
	vault    *vault.Vault
	eventBus *EventBus
}

// NewSecretService creates a new secret service
func NewSecretService(repo repository.Repository, v *vault.Vault, eventBus *EventBus) *SecretService {
	return &SecretService{
		repo:     repo,
		vault:    v,
		eventBus: eventBus,
	}
}

// SecretInput holds the caller-supplied fields of a secret, including the
// plaintext value to seal.
type SecretInput struct {
	Kind     domain.SecretKind `json:"kind"`
	Name     string            `json:"name"`
	Value    string            `json:"value"`
	DeviceID string            `json:"device_id,omitempty"`
	Notes    string            `json:"notes,omitempty"`
}

// CreateSecret seals and stores a secret in a root, optionally linked to a
// device of the same root.
func (s *SecretService) CreateSecret(ctx context.Context, identity domain.Identity, rootID string, input SecretInput) (*domain.Secret, error) {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return nil, err
	}
	if _, err := resolveRoot(ctx, s.repo, rootID); err != nil {
		return nil, err
	}
	if !input.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown secret kind %q", domain.ErrValidation, input.Kind)
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: secret name is required", domain.ErrValidation)
	}
	if input.DeviceID != "" {
		if _, err := resolveDevice(ctx, s.repo, rootID, input.DeviceID); err != nil {
			return nil, err
		}
	}

	sealed, err := s.vault.Seal([]byte(input.Value))
	if err != nil {
		return nil, err
	}

	secret := &domain.Secret{
		ID:          newID(),
		RootID:      rootID,
		Kind:        input.Kind,
		Name:        input.Name,
		ValueSealed: sealed,
		DeviceID:    input.DeviceID,
		Notes:       input.Notes,
		CreatedAt:   now(),
	}
	if err := s.repo.CreateSecret(ctx, secret); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventSecretCreated,
		Payload: map[string]string{"root_id": rootID, "secret_id": secret.ID},
	})
	return secret, nil
}

// ListSecrets returns a root's secrets, sealed values excluded from
// serialization, optionally narrowed to one linked device.
func (s *SecretService) ListSecrets(ctx context.Context, identity domain.Identity, rootID, deviceID string) ([]domain.Secret, error) {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return nil, err
	}
	if _, err := resolveRoot(ctx, s.repo, rootID); err != nil {
		return nil, err
	}
	if deviceID != "" {
		if _, err := resolveDevice(ctx, s.repo, rootID, deviceID); err != nil {
			return nil, err
		}
	}
	return s.repo.ListSecrets(ctx, rootID, deviceID)
}

// RevealSecret returns the plaintext value of a secret.
func (s *SecretService) RevealSecret(ctx context.Context, identity domain.Identity, rootID, id string) (string, error) {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return "", err
	}
	secret, err := s.resolveSecret(ctx, rootID, id)
	if err != nil {
		return "", err
	}
	plaintext, err := s.vault.Reveal(secret.ValueSealed)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// DeleteSecret removes a secret.
func (s *SecretService) DeleteSecret(ctx context.Context, identity domain.Identity, rootID, id string) error {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return err
	}
	if _, err := s.resolveSecret(ctx, rootID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteSecret(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventSecretDeleted,
		Payload: map[string]string{"root_id": rootID, "secret_id": id},
	})
	return nil
}

func (s *SecretService) resolveSecret(ctx context.Context, rootID, id string) (*domain.Secret, error) {
	secret, err := s.repo.GetSecret(ctx, id)
	if err != nil {
		return nil, err
	}
	if secret == nil || secret.RootID != rootID {
		return nil, fmt.Errorf("%w: secret %s", domain.ErrNotFound, id)
	}
	return secret, nil
}
