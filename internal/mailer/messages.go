package mailer

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/markup"
)

// compose builds a message whose text part is body (markdown) and whose
// HTML part is body rendered.
func compose(to, subject, body string) Message {
	msg := Message{To: []string{to}, Subject: subject, Text: body}
	if html, err := markup.Render(body); err == nil {
		msg.HTML = html
	}
	return msg
}

// OTPMessage carries a one-time login code.
func OTPMessage(to, code string) Message {
	return compose(to, "Your login code", fmt.Sprintf(
		"Your one-time login code is **%s**.\n\nIt expires in 10 minutes. If you did not ask for it, ignore this email.\n", code))
}

// ResetLink builds the frontend URL a password reset email points to.
func ResetLink(frontendURL, token, email string) string {
	q := url.Values{"token": {token}, "email": {email}}
	return strings.TrimSuffix(frontendURL, "/") + "/user/reset-password?" + q.Encode()
}

// PasswordResetMessage carries a password reset link.
func PasswordResetMessage(to, name, link string) Message {
	return compose(to, "Reset your password", fmt.Sprintf(
		"Hi %s,\n\nUse the link below to choose a new password. It is valid for one hour.\n\n[Reset password](%s)\n\n%s\n",
		greetingName(name), link, link))
}

// QuoteAdminMessage notifies the site admin of a new quote request.
func QuoteAdminMessage(admin string, q domain.Quote, propertyTitle string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "New quote request from **%s**.\n\n", q.Name)
	fmt.Fprintf(&b, "- Email: %s\n- Phone: %s\n", q.Email, q.ContactNumber)
	if propertyTitle != "" {
		fmt.Fprintf(&b, "- Property: %s\n", propertyTitle)
	}
	fmt.Fprintf(&b, "\n> %s\n", strings.ReplaceAll(q.Message, "\n", "\n> "))
	return compose(admin, "New quote request: "+q.Name, b.String())
}

// QuoteConfirmationMessage thanks the requester for a quote request.
func QuoteConfirmationMessage(q domain.Quote, propertyTitle string) Message {
	about := "your enquiry"
	if propertyTitle != "" {
		about = "**" + propertyTitle + "**"
	}
	return compose(q.Email, "We received your request", fmt.Sprintf(
		"Hi %s,\n\nThanks for asking about %s. Our team will contact you shortly.\n", greetingName(q.Name), about))
}

// ContactAdminMessage notifies the site admin of a contact form enquiry.
func ContactAdminMessage(admin string, c domain.Contact) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "New enquiry from **%s**.\n\n- Email: %s\n- Phone: %s\n", c.Name, c.Email, c.Phone)
	if c.Budget != "" {
		fmt.Fprintf(&b, "- Budget: %s\n", c.Budget)
	}
	if c.Message != "" {
		fmt.Fprintf(&b, "\n> %s\n", strings.ReplaceAll(c.Message, "\n", "\n> "))
	}
	return compose(admin, "New enquiry: "+c.Name, b.String())
}

// NewsletterWelcomeMessage confirms a newsletter subscription.
func NewsletterWelcomeMessage(to, name string) Message {
	return compose(to, "You're subscribed", fmt.Sprintf(
		"Hi %s,\n\nYou will now receive our latest listings and articles.\n", greetingName(name)))
}

func greetingName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "there"
	}
	return name
}
