package model

// Credential holds the login identity for Bankwest Online Banking.
type Credential struct {
	// PAN is the primary account number used as the login identifier.
	PAN string

	// Password is the online banking password.
	Password string
}

// Valid reports whether both credential fields are present.
func (c *Credential) Valid() bool {
	return c != nil && c.PAN != "" && c.Password != ""
}

// Message is a single bankmail item from the secure-mail listing.
type Message struct {
	// ID is the site-assigned message identifier from the listing row.
	ID string

	// Subject is the message subject line.
	Subject string

	// Sender is the displayed sender name.
	Sender string

	// Date is the listing date exactly as displayed (dd/mm/yyyy).
	Date string

	// Content is the message body, populated after a detail fetch.
	Content string
}
