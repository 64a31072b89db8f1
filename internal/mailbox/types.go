package mailbox

// EmailMessage is the decoded, immutable view of one mail message handed to
// the certificate extractor.
type EmailMessage struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Date    string `json:"date"`
	From    string `json:"from"`
	Snippet string `json:"snippet"`
}
