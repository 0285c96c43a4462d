// Package credential resolves the Bankwest login credential from the
// system keyring, the environment/config file, or an interactive prompt,
// in that order.
package credential

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/nhle/retrieve-bankmail/internal/model"
)

// ErrMissing indicates a credential field could not be obtained from any
// source, including the interactive prompt.
var ErrMissing = errors.New("unable to log into online banking without a PAN and password")

// Prompter obtains credential fields from the user. The password prompt
// must not echo input to the terminal.
type Prompter interface {
	AskPAN() (string, error)
	AskPassword() (string, error)
}

// Resolver produces a complete login credential for a run.
type Resolver struct {
	cfg      *model.AppConfig
	store    Keystore
	prompter Prompter
	logger   *log.Logger
}

// NewResolver creates a Resolver over the given config, keystore, and
// prompter.
func NewResolver(
	cfg *model.AppConfig,
	store Keystore,
	prompter Prompter,
	logger *log.Logger,
) *Resolver {
	return &Resolver{
		cfg:      cfg,
		store:    store,
		prompter: prompter,
		logger:   logger,
	}
}

// Resolve returns a complete credential. Each field is looked up in the
// keyring first, then the config/environment, then requested
// interactively. A password obtained by prompt is stored back into the
// keyring keyed by PAN so the next run does not ask again.
func (r *Resolver) Resolve() (*model.Credential, error) {
	pan, _ := r.store.Get(panKey)

	if pan == "" {
		pan = r.cfg.PAN
	}

	if pan == "" {
		r.logger.Warn("no credentials available")
		var err error
		pan, err = r.prompter.AskPAN()
		if err != nil {
			return nil, err
		}
	}

	if pan == "" {
		r.logger.Error("no PAN provided")
		return nil, ErrMissing
	}

	pw, _ := r.store.Get(passwordKey(pan))

	if pw == "" {
		pw = r.cfg.Password
	}

	if pw == "" {
		r.logger.Warn("no password in keychain for the pan provided")
		var err error
		pw, err = r.prompter.AskPassword()
		if err != nil {
			return nil, err
		}
		if pw != "" {
			if err := r.store.Set(passwordKey(pan), pw); err != nil {
				r.logger.Warn("could not store password in keychain", "err", err)
			}
		}
	}

	cred := &model.Credential{PAN: pan, Password: pw}
	if !cred.Valid() {
		return nil, ErrMissing
	}

	return cred, nil
}

// Reset removes the stored password for pan and the stored PAN itself.
// Used when a login attempt suggests the stored secret is stale.
func (r *Resolver) Reset(pan string) error {
	var errs []error
	if err := r.store.Delete(passwordKey(pan)); err != nil {
		errs = append(errs, err)
	}
	if err := r.store.Delete(panKey); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
