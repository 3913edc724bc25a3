package leads

import (
	"sort"
	"strings"
	"time"

	"github.com/wolfman30/contractor-leads/internal/forms"
)

// Formatter turns a submitted form state into a Payload.
type Formatter struct {
	formVersion string
	now         func() time.Time
}

// FormatterOption customizes a Formatter.
type FormatterOption func(*Formatter)

// WithClock overrides the clock used for meta.timestamp.
func WithClock(now func() time.Time) FormatterOption {
	return func(f *Formatter) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFormatter creates a formatter stamping payloads with formVersion.
func NewFormatter(formVersion string, opts ...FormatterOption) *Formatter {
	if strings.TrimSpace(formVersion) == "" {
		formVersion = DefaultFormVersion
	}
	f := &Formatter{formVersion: formVersion, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FormVersion is the version string stamped on every payload.
func (f *Formatter) FormVersion() string { return f.formVersion }

// Format builds the normalized lead record. The only input not taken from the
// arguments is the clock reading in meta.timestamp.
func (f *Formatter) Format(serviceID, serviceName string, state forms.State) *Payload {
	contact, rawDetails := splitContact(state)
	details := CleanServiceDetails(rawDetails)

	p := &Payload{
		Meta: Meta{
			Timestamp:   f.now().UTC().Format(time.RFC3339Nano),
			FormVersion: f.formVersion,
			Source:      Source,
			FormType:    FormType,
		},
		Service: ServiceInfo{
			ID:       serviceID,
			Name:     serviceName,
			Category: Category,
		},
		Contact:        contact,
		ServiceDetails: details,
		Summary: Summary{
			Urgency:          DetermineUrgency(serviceID, details),
			EstimatedValue:   EstimateProjectValue(serviceID, details),
			PreferredContact: DeterminePreferredContact(details, contact),
		},
		ServiceDetailsSummary: SummarizeDetails(details),
	}
	p.Summary.Text = GenerateSummary(p)
	return p
}

// splitContact partitions the state into the contact subset and everything else.
func splitContact(state forms.State) (map[string]string, forms.State) {
	contact := map[string]string{}
	rest := forms.State{}
	for name, v := range state {
		if forms.IsContactField(name) {
			if !v.IsNone() {
				contact[name] = v.Flatten()
			}
			continue
		}
		rest[name] = v
	}
	return contact, rest
}

// CleanServiceDetails drops unanswered entries and flattens lists into
// comma-separated strings. Empty lists are dropped.
func CleanServiceDetails(details forms.State) map[string]string {
	out := make(map[string]string, len(details))
	for name, v := range details {
		if v.IsEmpty() {
			continue
		}
		out[name] = v.Flatten()
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
