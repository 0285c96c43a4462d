// Package bankmail drives the Bankwest Online Banking secure-mail pages
// through a browser session.
package bankmail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nhle/retrieve-bankmail/internal/browser"
	"github.com/nhle/retrieve-bankmail/internal/model"
)

// Selectors for the current Bankwest markup. The site is uncontrolled;
// these break when the bank redesigns and are collected here for that
// reason.
const (
	panSelector      = `input[name="PAN"]`
	passwordSelector = `input[name="Password"]`
	submitSelector   = `button[name="button"]`
	logoutSelector   = `.logoutButton`
	mailboxSelector  = `#leftColumn`
	bodySelector     = `span[id$="lblBody"]`
)

// listScript extracts the listing rows as {id, subject, sender, date}
// objects, mirroring the table structure of the secure-mail page.
const listScript = `
Array.from(document.querySelectorAll('.MasterTable_default > tbody > tr')).map(function (row) {
	var cells = row.querySelectorAll('td');
	var subject = row.querySelector('a > div');
	var sender = cells.length > 4 ? cells[4].querySelector('div') : null;
	var id = row.querySelector('td > input');
	return {
		id: id ? (id.getAttribute('value') || '') : '',
		subject: subject ? subject.innerText.trim() : '',
		sender: sender ? sender.innerText.trim() : '',
		date: cells.length > 2 ? cells[2].innerText.trim() : ''
	};
})`

// listedMessage is one row of the secure-mail listing as returned by
// listScript.
type listedMessage struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Sender  string `json:"sender"`
	Date    string `json:"date"`
}

// Client performs the secure-mail operations against one logged-in
// browser session.
type Client struct {
	session browser.Session
	cfg     *model.AppConfig
	logger  *log.Logger
}

// NewClient creates a bankmail client over an open browser session.
func NewClient(session browser.Session, cfg *model.AppConfig, logger *log.Logger) *Client {
	return &Client{
		session: session,
		cfg:     cfg,
		logger:  logger,
	}
}

// Login loads the login page, submits the credential, and waits for the
// signed-in marker. A wait that times out is reported as an AuthError so
// the caller can distinguish a stale credential from a broken page.
func (c *Client) Login(ctx context.Context, cred *model.Credential) error {
	c.logger.Info("loading login page", "url", c.cfg.LoginURL)
	if err := c.session.Navigate(ctx, c.cfg.LoginURL); err != nil {
		return err
	}
	if err := c.session.WaitVisible(ctx, panSelector); err != nil {
		return err
	}

	if err := c.session.Fill(ctx, panSelector, cred.PAN); err != nil {
		return err
	}
	if err := c.session.Fill(ctx, passwordSelector, cred.Password); err != nil {
		return err
	}
	if err := c.session.Click(ctx, submitSelector); err != nil {
		return err
	}

	c.logger.Info("waiting for page to load")
	if err := c.session.WaitVisible(ctx, logoutSelector); err != nil {
		if browser.IsTimeout(err) {
			return &AuthError{
				Message: fmt.Sprintf("signed-in marker never appeared for PAN %s", cred.PAN),
			}
		}
		return err
	}

	return nil
}

// OpenMailbox navigates to the secure-mail listing and waits for it to
// render.
func (c *Client) OpenMailbox(ctx context.Context) error {
	c.logger.Info("navigating to mail page")
	if err := c.session.Navigate(ctx, c.cfg.MailURL); err != nil {
		return err
	}

	c.logger.Info("waiting for mail page to load", "url", c.cfg.MailURL)
	return c.session.WaitVisible(ctx, mailboxSelector)
}

// ListMessages scrapes the listing table and returns up to limit
// messages without their content. A limit of 0 means all.
func (c *Client) ListMessages(ctx context.Context, limit int) ([]model.Message, error) {
	var rows []listedMessage
	if err := c.session.Evaluate(ctx, listScript, &rows); err != nil {
		return nil, fmt.Errorf("scraping mail listing: %w", err)
	}

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	c.logger.Debug("retrieved message listing", "count", len(rows))

	messages := make([]model.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, model.Message{
			ID:      row.ID,
			Subject: row.Subject,
			Sender:  row.Sender,
			Date:    row.Date,
		})
	}

	return messages, nil
}

// FetchContent loads the per-message page for id and returns the body
// text with the site's literal <br> markers normalized to newlines.
func (c *Client) FetchContent(ctx context.Context, id string) (string, error) {
	url := fmt.Sprintf(c.cfg.MessageURL, id)

	c.logger.Info("loading message", "id", id)
	if err := c.session.Navigate(ctx, url); err != nil {
		return "", err
	}

	c.logger.Info("waiting for message to load")
	if err := c.session.WaitVisible(ctx, bodySelector); err != nil {
		return "", err
	}

	body, err := c.session.Text(ctx, bodySelector)
	if err != nil {
		return "", err
	}

	return strings.ReplaceAll(body, "<br>", "\n"), nil
}
