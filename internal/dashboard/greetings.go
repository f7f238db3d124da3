package dashboard

import (
	"fmt"
	"net/url"
	"strings"
)

// WhatsAppURL builds a chat link with a birthday greeting. Every non-digit
// is stripped from the phone number.
func WhatsAppURL(phone, name string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	text := fmt.Sprintf("Happy Birthday, %s! Wishing you all the best on your special day! 🎉🎂", name)
	return "https://wa.me/" + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
