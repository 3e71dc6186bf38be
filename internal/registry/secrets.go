package registry

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name tokens are stored under in the OS keyring.
const KeyringService = "gitlab-desk"

// SecretStore keeps instance tokens outside the registry file.
type SecretStore interface {
	// Get returns the token for an instance, or "" if none is stored.
	Get(instanceID string) (string, error)
	Set(instanceID, token string) error
	// Delete removes the token. Deleting a missing token is not an error.
	Delete(instanceID string) error
}

// KeyringSecrets stores tokens in the operating system keyring.
type KeyringSecrets struct {
	Service string
}

// NewKeyringSecrets returns a keyring-backed SecretStore using KeyringService.
func NewKeyringSecrets() *KeyringSecrets {
	return &KeyringSecrets{Service: KeyringService}
}

func (k *KeyringSecrets) Get(instanceID string) (string, error) {
	token, err := keyring.Get(k.Service, instanceID)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return token, err
}

func (k *KeyringSecrets) Set(instanceID, token string) error {
	return keyring.Set(k.Service, instanceID, token)
}

func (k *KeyringSecrets) Delete(instanceID string) error {
	err := keyring.Delete(k.Service, instanceID)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
