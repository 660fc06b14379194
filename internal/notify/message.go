// Package notify delivers transactional account emails off the request path.
package notify

import "fmt"

// Message is one outbound plain-text email.
type Message struct {
	To      string
	Name    string
	Subject string
	Text    string
}

// WelcomeMessage builds the email sent after registration.
func WelcomeMessage(email, name string) Message {
	return Message{
		To:      email,
		Name:    name,
		Subject: "Welcome to Taskly!",
		Text: fmt.Sprintf("Welcome to Taskly, %s. We would love to hear your opinion and input "+
			"on your experience with us. We wish you a great experience with the app.", name),
	}
}

// CancellationMessage builds the email sent after account deletion.
func CancellationMessage(email, name string) Message {
	return Message{
		To:      email,
		Name:    name,
		Subject: "We are sorry to see you leave!",
		Text: fmt.Sprintf("We are sorry to see you leave, %s. "+
			"Is there something we could have done to keep you with us?", name),
	}
}
