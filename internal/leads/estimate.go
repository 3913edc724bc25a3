package leads

import "strings"

type valueRule func(details map[string]string) EstimatedValue

var valueRules = map[string]valueRule{
	"roofing": func(d map[string]string) EstimatedValue {
		switch d["roofingService"] {
		case "replacement":
			return ValueLarge
		case "rejuvenation":
			return ValueMedium
		}
		return ValueSmall
	},
	"flooring": func(d map[string]string) EstimatedValue {
		return bucket(leadingInt(d["squareFootage"]), 1000, 500)
	},
	"windows": func(d map[string]string) EstimatedValue {
		return bucket(leadingInt(d["windowCount"]), 10, 5)
	},
	"plumbing": func(d map[string]string) EstimatedValue {
		switch d["issue"] {
		case "repiping":
			return ValueLarge
		case "water-heater", "remodel":
			return ValueMedium
		}
		return ValueSmall
	},
	"electrical": func(d map[string]string) EstimatedValue {
		switch d["electricalService"] {
		case "panel-upgrade", "rewiring":
			return ValueLarge
		case "ev-charger", "generator":
			return ValueMedium
		}
		return ValueSmall
	},
	"hvac": func(d map[string]string) EstimatedValue {
		switch d["hvacService"] {
		case "replacement", "installation":
			return ValueLarge
		case "repair":
			return ValueMedium
		}
		return ValueSmall
	},
	"handyman": func(d map[string]string) EstimatedValue {
		if countItems(d["handymanServices"]) >= 5 {
			return ValueMedium
		}
		return ValueSmall
	},
	"painting": func(d map[string]string) EstimatedValue {
		switch d["paintingScope"] {
		case "exterior", "both":
			return ValueLarge
		case "interior":
			if leadingInt(d["roomCount"]) > 4 {
				return ValueMedium
			}
		}
		return ValueSmall
	},
}

// EstimateProjectValue buckets a lead by project size. Unknown services are small.
func EstimateProjectValue(serviceID string, details map[string]string) EstimatedValue {
	if rule, ok := valueRules[serviceID]; ok {
		return rule(details)
	}
	return ValueSmall
}

func bucket(n, large, medium int) EstimatedValue {
	switch {
	case n > large:
		return ValueLarge
	case n > medium:
		return ValueMedium
	default:
		return ValueSmall
	}
}

// leadingInt parses the leading run of digits after optional spaces and
// sign, returning 0 when there is none. "1,200" parses as 1.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > 1<<30 {
			break
		}
	}
	if neg {
		return -n
	}
	return n
}

func countItems(joined string) int {
	if strings.TrimSpace(joined) == "" {
		return 0
	}
	return len(strings.Split(joined, ", "))
}
