package server

import (
	"context"
	"strings"
	"unicode"
)

// FAQResponder is a keyword driven customer support bot. Rules are tried in
// order and the first match wins.
type FAQResponder struct{}

var _ Responder = FAQResponder{}

type faqRule struct {
	// words match whole words, phrases match anywhere in the message
	words   []string
	phrases []string
	reply   string
}

var faqRules = []faqRule{
	{words: []string{"hello", "hi", "hey"}, reply: "Hello 👋 Welcome to Customer Support. How can I assist you today?"},
	{phrases: []string{"how are you"}, reply: "I'm here and ready to assist you 😊 How may I help you today?"},
	{words: []string{"bye", "goodbye"}, reply: "Thank you for contacting support. Have a great day! 👋"},

	{phrases: []string{"track", "order status"}, reply: "Sure 📦 Please provide your Order ID so I can help you track your order."},
	{phrases: []string{"order id"}, reply: "Thank you for providing your Order ID. Your order is currently being processed and will be shipped within 24-48 hours."},
	{phrases: []string{"cancel order"}, reply: "I can help you cancel your order. Please provide your Order ID. Orders can only be canceled before shipping."},

	{phrases: []string{"international shipping"}, reply: "🌍 Yes, we offer international shipping. Delivery times vary depending on your country."},
	{phrases: []string{"shipping", "delivery time"}, reply: "🚚 Standard delivery takes 3-5 business days. Express delivery takes 1-2 business days."},

	{phrases: []string{"refund"}, reply: "💰 Refunds are processed within 5-7 business days after we receive the returned item."},
	{phrases: []string{"return policy"}, reply: "🔄 You can return products within 30 days of purchase. Items must be unused and in original packaging."},

	{phrases: []string{"reset password", "forgot password"}, reply: "🔐 To reset your password, click on 'Forgot Password' on the login page and follow the instructions sent to your email."},
	{phrases: []string{"update email"}, reply: "📧 To update your email address, go to Account Settings > Personal Information."},
	{phrases: []string{"delete account"}, reply: "⚠️ We're sorry to see you go. Please contact our support team at support@example.com to request account deletion."},

	{phrases: []string{"payment methods"}, reply: "💳 We accept Credit/Debit Cards, UPI, Net Banking, and PayPal."},
	{phrases: []string{"payment failed"}, reply: "If your payment failed, please check your bank balance or try another payment method."},

	{
		phrases: []string{"help", "what can you do"},
		reply: "I can assist with:\n" +
			"• Order tracking\n" +
			"• Shipping information\n" +
			"• Returns & refunds\n" +
			"• Account issues\n" +
			"• Payment support\n\n" +
			"How can I help you today?",
	},
}

const (
	faqFollowUp        = "Sure 🙂 Could you please provide more details so I can assist you better?"
	faqFollowUpNoCtx   = "Alright 🙂 How can I assist you further?"
	faqDecline         = "No problem 😊 Let me know if you need anything else."
	FAQDefaultResponse = "I'm sorry, I didn't fully understand your request. Could you please provide more details so I can assist you better?"
)

func (FAQResponder) Respond(_ context.Context, message string, history []Message) (string, error) {
	text := strings.ToLower(strings.TrimSpace(message))
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, rule := range faqRules {
		if rule.matches(text, words) {
			return rule.reply, nil
		}
	}

	switch text {
	case "yes", "okay", "ok":
		if hasAssistantTurn(history) {
			return faqFollowUp, nil
		}
		return faqFollowUpNoCtx, nil
	case "no", "not really":
		return faqDecline, nil
	}

	return FAQDefaultResponse, nil
}

func (r faqRule) matches(text string, words []string) bool {
	for _, p := range r.phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	for _, w := range words {
		for _, candidate := range r.words {
			if w == candidate {
				return true
			}
		}
	}
	return false
}

func hasAssistantTurn(history []Message) bool {
	for _, m := range history {
		if m.Role == RoleAssistant {
			return true
		}
	}
	return false
}
