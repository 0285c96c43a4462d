// Package app runs the linear retrieval routine: log in, open the
// mailbox, enumerate messages, fetch and persist each one.
package app

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/nhle/retrieve-bankmail/internal/bankmail"
	"github.com/nhle/retrieve-bankmail/internal/model"
)

// Mailer is the slice of the bankmail client the runner drives.
type Mailer interface {
	Login(ctx context.Context, cred *model.Credential) error
	OpenMailbox(ctx context.Context) error
	ListMessages(ctx context.Context, limit int) ([]model.Message, error)
	FetchContent(ctx context.Context, id string) (string, error)
}

// CredentialSource produces the run's credential and can reset stored
// state when a login suggests it is stale.
type CredentialSource interface {
	Resolve() (*model.Credential, error)
	Reset(pan string) error
}

// Index is the subset of the archive the runner needs.
type Index interface {
	Has(ctx context.Context, id string) (bool, error)
	Record(ctx context.Context, msg model.Message, path string) error
}

// FileWriter persists one message and returns the path written.
type FileWriter interface {
	Write(msg model.Message) (string, error)
}

// Summary reports what a run accomplished. Saved files stay on disk
// even when the run ends in an error.
type Summary struct {
	Listed  int
	Saved   int
	Skipped int
}

// Runner owns one retrieval run.
type Runner struct {
	mailer Mailer
	creds  CredentialSource
	index  Index
	writer FileWriter
	logger *log.Logger
	limit  int
}

// New creates a Runner. limit caps how many messages are retrieved; 0
// means all.
func New(
	mailer Mailer,
	creds CredentialSource,
	index Index,
	writer FileWriter,
	logger *log.Logger,
	limit int,
) *Runner {
	return &Runner{
		mailer: mailer,
		creds:  creds,
		index:  index,
		writer: writer,
		logger: logger,
		limit:  limit,
	}
}

// login resolves the credential and performs the login. A first attempt
// that fails authentication clears the stored credential and retries
// once with a freshly resolved one, since a stale keyring password is
// the common cause.
func (r *Runner) login(ctx context.Context) error {
	cred, err := r.creds.Resolve()
	if err != nil {
		return err
	}

	err = r.mailer.Login(ctx, cred)
	if err == nil {
		return nil
	}
	if !bankmail.IsAuthError(err) {
		return err
	}

	r.logger.Warn("login did not complete, clearing stored credentials", "err", err)
	if resetErr := r.creds.Reset(cred.PAN); resetErr != nil {
		r.logger.Warn("could not clear stored credentials", "err", resetErr)
	}

	cred, err = r.creds.Resolve()
	if err != nil {
		return err
	}

	return r.mailer.Login(ctx, cred)
}

// Run executes the retrieval sequence. Any failure before the listing is
// fatal with nothing written; a failure while fetching or writing a
// message ends the run but keeps everything already saved.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	if err := r.login(ctx); err != nil {
		return sum, err
	}

	if err := r.mailer.OpenMailbox(ctx); err != nil {
		return sum, err
	}

	messages, err := r.mailer.ListMessages(ctx, r.limit)
	if err != nil {
		return sum, err
	}
	sum.Listed = len(messages)

	for _, msg := range messages {
		seen, err := r.index.Has(ctx, msg.ID)
		if err != nil {
			return sum, err
		}
		if seen {
			r.logger.Debug("already retrieved, skipping", "id", msg.ID)
			sum.Skipped++
			continue
		}

		content, err := r.mailer.FetchContent(ctx, msg.ID)
		if err != nil {
			return sum, err
		}
		msg.Content = content

		path, err := r.writer.Write(msg)
		if err != nil {
			return sum, err
		}
		if err := r.index.Record(ctx, msg, path); err != nil {
			return sum, err
		}
		sum.Saved++

		r.logger.Info("retrieved message",
			"id", msg.ID,
			"from", msg.Sender,
			"subject", msg.Subject,
			"date", msg.Date,
			"path", path,
		)
	}

	r.logger.Info("finished getting mail", "saved", sum.Saved, "skipped", sum.Skipped)

	return sum, nil
}
