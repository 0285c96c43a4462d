package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "retrieve-bankmail"

// panKey is the keyring entry holding the last-used PAN. The password
// for a given PAN is stored under passwordKey(pan).
const panKey = "PAN"

// passwordKey returns the keyring key for the password of a PAN.
func passwordKey(pan string) string {
	return fmt.Sprintf("%s_%s", panKey, pan)
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/retrieve-bankmail/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("retrieve-bankmail-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Keystore is the subset of keyring operations credential resolution
// needs, split out so tests can substitute an in-memory map.
type Keystore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// System is the Keystore backed by the operating system keyring.
type System struct{}

// Get retrieves a credential value by key from the system keyring.
func (System) Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func (System) Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func (System) Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}
