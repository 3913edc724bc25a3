package leads

import (
	"fmt"
	"strings"
	"unicode"
)

// DeterminePreferredContact uses an explicit preferredContact answer when it
// is one of the known channels, otherwise infers it from the contact fields.
func DeterminePreferredContact(details, contact map[string]string) PreferredContact {
	switch p := PreferredContact(details["preferredContact"]); p {
	case ContactEmail, ContactPhone, ContactEither:
		return p
	}
	hasEmail := contact["email"] != ""
	hasPhone := contact["phone"] != ""
	switch {
	case hasEmail && hasPhone:
		return ContactEither
	case hasEmail:
		return ContactEmail
	default:
		return ContactPhone
	}
}

// SummarizeDetails renders details as "Key: value" pairs joined by "; ", in key order.
func SummarizeDetails(details map[string]string) string {
	parts := make([]string, 0, len(details))
	for _, key := range sortedKeys(details) {
		parts = append(parts, fmt.Sprintf("%s: %s", humanizeKey(key), displayValue(details[key])))
	}
	return strings.Join(parts, "; ")
}

// humanizeKey turns "handymanServices" or "tv_size" into "Handyman Services" / "Tv size".
func humanizeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r == '_':
			b.WriteRune(' ')
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return out
	}
	runes := []rune(out)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func displayValue(v string) string {
	switch v {
	case "true":
		return "Yes"
	case "false":
		return "No"
	}
	return v
}

// keyDetails extracts the one phrase per service worth putting in the headline.
var keyDetails = map[string]func(d map[string]string) string{
	"roofing":    prefixed("Needs ", "roofingService"),
	"plumbing":   prefixed("Issue: ", "issue"),
	"electrical": prefixed("Needs ", "electricalService"),
	"hvac":       prefixed("Needs ", "hvacService"),
	"handyman":   prefixed("Tasks: ", "handymanServices"),
	"painting":   prefixed("Scope: ", "paintingScope"),
	"flooring":   suffixed("squareFootage", " sq ft"),
	"windows":    suffixed("windowCount", " windows"),
}

func prefixed(prefix, key string) func(map[string]string) string {
	return func(d map[string]string) string {
		if v := d[key]; v != "" {
			return prefix + v
		}
		return ""
	}
}

func suffixed(key, suffix string) func(map[string]string) string {
	return func(d map[string]string) string {
		if v := d[key]; v != "" {
			return v + suffix
		}
		return ""
	}
}

// GenerateSummary builds the one-line headline for a payload, e.g.
// "🚨 EMERGENCY: New Roofing quote request from Jane Doe in Spokane. Needs emergency. Contact via phone."
func GenerateSummary(p *Payload) string {
	var b strings.Builder
	switch p.Summary.Urgency {
	case UrgencyEmergency:
		b.WriteString("🚨 EMERGENCY: ")
	case UrgencyUrgent:
		b.WriteString("⚡ URGENT: ")
	}

	b.WriteString("New ")
	b.WriteString(p.Service.Name)
	b.WriteString(" quote request from ")
	b.WriteString(p.Contact["firstName"])
	b.WriteString(" ")
	b.WriteString(p.Contact["lastName"])
	if city := strings.TrimSpace(p.Contact["city"]); city != "" {
		b.WriteString(" in ")
		b.WriteString(city)
	}
	if extract, ok := keyDetails[p.Service.ID]; ok {
		if detail := extract(p.ServiceDetails); detail != "" {
			b.WriteString(". ")
			b.WriteString(detail)
		}
	}

	b.WriteString(". Contact via ")
	switch p.Summary.PreferredContact {
	case ContactEmail:
		b.WriteString("email")
	case ContactPhone:
		b.WriteString("phone")
	default:
		b.WriteString("phone or email")
	}
	b.WriteString(".")
	return b.String()
}
