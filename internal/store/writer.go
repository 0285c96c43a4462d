package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"

	"github.com/nhle/retrieve-bankmail/internal/model"
)

// senderAddress is the synthetic address used for the From header;
// bankmail carries a display name but no real mailbox.
const senderAddress = "bankmail@bankwest.com.au"

// listingDateLayout is the dd/mm/yyyy format the secure-mail listing
// displays.
const listingDateLayout = "02/01/2006"

// Writer writes one RFC 5322 file per retrieved message.
type Writer struct {
	dir string
}

// NewWriter creates a Writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// parseListingDate parses the listing's displayed date.
func parseListingDate(value string) (time.Time, error) {
	return time.Parse(listingDateLayout, strings.TrimSpace(value))
}

// sanitizeID strips filesystem-hostile characters from a message ID.
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}

// Filename returns the output file name for msg:
// <yyyy-mm-dd>-<id>.eml when the listing date parses, otherwise a
// uuid-suffixed fallback so the write still lands somewhere unique.
func (w *Writer) Filename(msg model.Message) string {
	id := sanitizeID(msg.ID)
	if t, err := parseListingDate(msg.Date); err == nil {
		return fmt.Sprintf("%s-%s.eml", t.Format("2006-01-02"), id)
	}
	return fmt.Sprintf("%s-%s.eml", id, uuid.NewString()[:8])
}

// Write persists msg as an .eml file and returns the path written.
func (w *Writer) Write(msg model.Message) (string, error) {
	path := filepath.Join(w.dir, w.Filename(msg))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	var h mail.Header
	h.SetSubject(msg.Subject)
	h.SetAddressList("From", []*mail.Address{{Name: msg.Sender, Address: senderAddress}})
	h.Set("X-Bankmail-Id", msg.ID)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if t, err := parseListingDate(msg.Date); err == nil {
		h.SetDate(t)
	}

	mw, err := mail.CreateSingleInlineWriter(f, h)
	if err != nil {
		return "", fmt.Errorf("writing headers for %s: %w", path, err)
	}

	if _, err := io.WriteString(mw, msg.Content); err != nil {
		mw.Close()
		return "", fmt.Errorf("writing body for %s: %w", path, err)
	}

	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finishing %s: %w", path, err)
	}

	return path, nil
}
