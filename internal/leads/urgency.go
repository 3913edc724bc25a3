package leads

import (
	"encoding/json"
	"strings"
)

// urgentKeywords force an emergency classification wherever they appear in
// the serialized details, keys included.
var urgentKeywords = []string{"emergency", "urgent", "leak", "flood", "asap", "immediately"}

type urgencyRule func(details map[string]string) Urgency

var urgencyRules = map[string]urgencyRule{
	"plumbing": func(d map[string]string) Urgency {
		switch d["issue"] {
		case "emergency", "burst-pipe", "sewer-backup":
			return UrgencyEmergency
		}
		if d["waterRunning"] == "yes" {
			return UrgencyEmergency
		}
		switch d["issue"] {
		case "clog", "water-heater", "no-hot-water":
			return UrgencyUrgent
		}
		return ""
	},
	"roofing": func(d map[string]string) Urgency {
		if d["roofingService"] == "emergency" || d["waterIntrusion"] == "yes" || d["needsTarp"] == "yes" {
			return UrgencyEmergency
		}
		if d["roofingService"] == "repair" {
			return UrgencyUrgent
		}
		return ""
	},
	"electrical": func(d map[string]string) Urgency {
		switch d["electricalIssue"] {
		case "outage", "sparking":
			return UrgencyEmergency
		case "flicker", "dead-outlet":
			return UrgencyUrgent
		}
		return ""
	},
	"hvac": func(d map[string]string) Urgency {
		switch d["hvacIssue"] {
		case "gas-smell":
			return UrgencyEmergency
		case "no-heat", "no-cooling":
			return UrgencyUrgent
		}
		return ""
	},
}

// DetermineUrgency classifies cleaned details. The keyword scan wins over
// the per-service rules, which win over the generic timeline rule.
func DetermineUrgency(serviceID string, details map[string]string) Urgency {
	if containsKeyword(details) {
		return UrgencyEmergency
	}
	if rule, ok := urgencyRules[serviceID]; ok {
		if u := rule(details); u != "" {
			return u
		}
	}
	switch details["timeline"] {
	case "asap", "within_week":
		return UrgencyUrgent
	}
	return UrgencyNormal
}

func containsKeyword(details map[string]string) bool {
	data, err := json.Marshal(details)
	if err != nil {
		return false
	}
	text := strings.ToLower(string(data))
	for _, kw := range urgentKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
