package notify

import (
	"fmt"
	"strings"

	"github.com/wolfman30/htx-dental-leads/internal/catalog"
	"github.com/wolfman30/htx-dental-leads/internal/leads"
)

// LeadEmail renders the owner notification for a new lead.
func LeadEmail(siteName, to string, n Notification) EmailMessage {
	lead := n.Lead
	procedure := string(lead.Procedure)
	subject := fmt.Sprintf("New Lead: %s — %s", lead.Name, orDefault(procedure, "General"))

	lines := []string{
		fmt.Sprintf("NEW LEAD — %s", siteName),
		"",
		"Name: " + lead.Name,
		"Phone: " + lead.Phone,
		"Email: " + orDefault(lead.Email, "not provided"),
		"Procedure: " + orDefault(procedure, "Not specified"),
		"Source: " + string(lead.Source),
		"Location: " + orDefault(lead.Location, "general"),
		"Urgency: " + orDefault(string(lead.Urgency), "Not specified"),
		"",
		"UTM Source: " + orDefault(lead.UTMSource, "direct"),
		"UTM Medium: " + orDefault(lead.UTMMedium, "none"),
		"UTM Campaign: " + orDefault(lead.UTMCampaign, "none"),
		"",
		"Matched Dentists:",
		providerList(n.Matched),
	}

	return EmailMessage{
		To:          to,
		Subject:     subject,
		Body:        strings.Join(lines, "\n"),
		ReplyTo:     lead.Email,
		ReplyToName: lead.Name,
		Tags: map[string]string{
			"lead_source": string(lead.Source),
			"procedure":   orDefault(procedure, "general"),
		},
	}
}

func providerList(ps []catalog.Provider) string {
	if len(ps) == 0 {
		return "(none)"
	}
	items := make([]string, 0, len(ps))
	for _, p := range ps {
		items = append(items, fmt.Sprintf("• %s — %s (%s)", p.Name, p.Practice, p.ContactPhone()))
	}
	return strings.Join(items, "\n")
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// LeadPayload is the flat JSON record posted to the spreadsheet webhook and
// published on the queue and stream sinks.
type LeadPayload struct {
	Timestamp        string   `json:"timestamp"`
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Phone            string   `json:"phone"`
	Email            string   `json:"email,omitempty"`
	Procedure        string   `json:"procedure"`
	Source           string   `json:"source"`
	LocationInterest string   `json:"location_interest,omitempty"`
	Urgency          string   `json:"urgency"`
	UTMSource        string   `json:"utm_source,omitempty"`
	UTMMedium        string   `json:"utm_medium,omitempty"`
	UTMCampaign      string   `json:"utm_campaign,omitempty"`
	Matched          []string `json:"matched,omitempty"`
}

// Payload flattens n. The timestamp is when the pipeline received the lead.
func Payload(n Notification) LeadPayload {
	lead := n.Lead
	received := n.ReceivedAt
	if received.IsZero() {
		received = lead.CreatedAt
	}
	matched := make([]string, 0, len(n.Matched))
	for _, p := range n.Matched {
		matched = append(matched, p.Slug)
	}
	return LeadPayload{
		Timestamp:        received.UTC().Format(timeLayout),
		ID:               lead.ID,
		Name:             lead.Name,
		Phone:            lead.Phone,
		Email:            lead.Email,
		Procedure:        string(lead.Procedure),
		Source:           string(lead.Source),
		LocationInterest: lead.Location,
		Urgency:          string(lead.Urgency),
		UTMSource:        lead.UTMSource,
		UTMMedium:        lead.UTMMedium,
		UTMCampaign:      lead.UTMCampaign,
		Matched:          matched,
	}
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// leadFields is used in log lines; the phone is masked.
func leadFields(l leads.Lead) []any {
	return []any{"lead_id", l.ID, "lead_source", string(l.Source), "phone", leads.MaskPhone(l.Phone)}
}
