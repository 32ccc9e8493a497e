// internal/pkg/email/types.go
package email

// Message represents an outgoing email message
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}
