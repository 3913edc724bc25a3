package leads

// Urgency tells the receiving office how fast a lead needs a call back.
type Urgency string

const (
	UrgencyNormal    Urgency = "normal"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyEmergency Urgency = "emergency"
)

// EstimatedValue is a coarse project size bucket used for prioritization.
type EstimatedValue string

const (
	ValueSmall  EstimatedValue = "small"
	ValueMedium EstimatedValue = "medium"
	ValueLarge  EstimatedValue = "large"
)

// PreferredContact is how the customer wants to be reached.
type PreferredContact string

const (
	ContactEmail  PreferredContact = "email"
	ContactPhone  PreferredContact = "phone"
	ContactEither PreferredContact = "either"
)

const (
	// Source identifies this site to webhook consumers.
	Source = "website"
	// FormType is the kind of form every payload comes from.
	FormType = "quote-request"
	// Category is the service category reported for every lead.
	Category = "home-services"
	// DefaultFormVersion is used when no version is configured.
	DefaultFormVersion = "2.0"
)

// Meta carries envelope information about a submission.
type Meta struct {
	Timestamp   string `json:"timestamp"`
	FormVersion string `json:"formVersion"`
	Source      string `json:"source"`
	FormType    string `json:"formType"`
}

// ServiceInfo names the service the lead asked about.
type ServiceInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Summary is the derived classification of a lead.
type Summary struct {
	Urgency          Urgency          `json:"urgency"`
	EstimatedValue   EstimatedValue   `json:"estimatedValue"`
	PreferredContact PreferredContact `json:"preferredContact"`
	Text             string           `json:"text"`
}

// Payload is the normalized lead record handed to delivery. It is built once
// per submission attempt and not modified afterwards.
type Payload struct {
	Meta                  Meta              `json:"meta"`
	Service               ServiceInfo       `json:"service"`
	Contact               map[string]string `json:"contact"`
	ServiceDetails        map[string]string `json:"serviceDetails"`
	Summary               Summary           `json:"summary"`
	ServiceDetailsSummary string            `json:"serviceDetailsSummary"`
}

// ContactName is the display name used in logs and submission history.
func (p *Payload) ContactName() string {
	return joinNonEmpty(" ", p.Contact["firstName"], p.Contact["lastName"])
}
