package bankmail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/nhle/retrieve-bankmail/internal/model"
)

// fakeSession is a scripted browser.Session.
type fakeSession struct {
	navigated   []string
	filled      map[string]string
	clicked     []string
	waitErrs    map[string]error
	text        map[string]string
	evalPayload string
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		filled:   map[string]string{},
		waitErrs: map[string]error{},
		text:     map[string]string{},
	}
}

func (s *fakeSession) Navigate(_ context.Context, url string) error {
	s.navigated = append(s.navigated, url)
	return nil
}

func (s *fakeSession) WaitVisible(_ context.Context, sel string) error {
	return s.waitErrs[sel]
}

func (s *fakeSession) Fill(_ context.Context, sel, value string) error {
	s.filled[sel] = value
	return nil
}

func (s *fakeSession) Click(_ context.Context, sel string) error {
	s.clicked = append(s.clicked, sel)
	return nil
}

func (s *fakeSession) Text(_ context.Context, sel string) (string, error) {
	return s.text[sel], nil
}

func (s *fakeSession) Evaluate(_ context.Context, _ string, out any) error {
	return json.Unmarshal([]byte(s.evalPayload), out)
}

func (s *fakeSession) Close() error { return nil }

func testConfig() *model.AppConfig {
	return &model.AppConfig{
		LoginURL:   "https://bank.test/login",
		MailURL:    "https://bank.test/mail",
		MessageURL: "https://bank.test/message?msgid=%s",
	}
}

func newTestClient(s *fakeSession) *Client {
	return NewClient(s, testConfig(), log.New(io.Discard))
}

func TestLoginFillsCredentialAndSubmits(t *testing.T) {
	s := newFakeSession()
	c := newTestClient(s)

	cred := &model.Credential{PAN: "12345678", Password: "hunter2"}
	if err := c.Login(context.Background(), cred); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(s.navigated) != 1 || s.navigated[0] != "https://bank.test/login" {
		t.Fatalf("unexpected navigation %v", s.navigated)
	}
	if s.filled[panSelector] != "12345678" {
		t.Fatalf("PAN not filled: %v", s.filled)
	}
	if s.filled[passwordSelector] != "hunter2" {
		t.Fatalf("password not filled: %v", s.filled)
	}
	if len(s.clicked) != 1 || s.clicked[0] != submitSelector {
		t.Fatalf("submit not clicked: %v", s.clicked)
	}
}

func TestLoginTimeoutIsAuthError(t *testing.T) {
	s := newFakeSession()
	s.waitErrs[logoutSelector] = fmt.Errorf("waiting for %q: %w", logoutSelector, context.DeadlineExceeded)
	c := newTestClient(s)

	err := c.Login(context.Background(), &model.Credential{PAN: "1", Password: "2"})
	if !IsAuthError(err) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestLoginOtherWaitErrorIsNotAuthError(t *testing.T) {
	s := newFakeSession()
	s.waitErrs[logoutSelector] = fmt.Errorf("browser crashed")
	c := newTestClient(s)

	err := c.Login(context.Background(), &model.Credential{PAN: "1", Password: "2"})
	if err == nil || IsAuthError(err) {
		t.Fatalf("expected plain error, got %v", err)
	}
}

func listingPayload(n int) string {
	rows := make([]listedMessage, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, listedMessage{
			ID:      fmt.Sprintf("msg-%d", i),
			Subject: fmt.Sprintf("Subject %d", i),
			Sender:  "Bankwest",
			Date:    "02/05/2024",
		})
	}
	data, _ := json.Marshal(rows)
	return string(data)
}

func TestListMessagesAppliesLimit(t *testing.T) {
	cases := []struct {
		name      string
		available int
		limit     int
		want      int
	}{
		{name: "no limit returns all", available: 4, limit: 0, want: 4},
		{name: "limit below available", available: 4, limit: 2, want: 2},
		{name: "limit above available", available: 2, limit: 5, want: 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newFakeSession()
			s.evalPayload = listingPayload(tc.available)
			c := newTestClient(s)

			msgs, err := c.ListMessages(context.Background(), tc.limit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(msgs) != tc.want {
				t.Fatalf("expected %d messages, got %d", tc.want, len(msgs))
			}
			if tc.want > 0 && msgs[0].ID != "msg-0" {
				t.Fatalf("expected listing order preserved, got %q first", msgs[0].ID)
			}
		})
	}
}

func TestFetchContentNormalizesBreaks(t *testing.T) {
	s := newFakeSession()
	s.text[bodySelector] = "line one<br>line two"
	c := newTestClient(s)

	content, err := c.FetchContent(context.Background(), "msg-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "line one\nline two" {
		t.Fatalf("unexpected content %q", content)
	}
	if len(s.navigated) != 1 || s.navigated[0] != "https://bank.test/message?msgid=msg-7" {
		t.Fatalf("unexpected navigation %v", s.navigated)
	}
}
