package domain

import "time"

// LinkStat counts clicks on one link inside a tracked email.
type LinkStat struct {
	URL    string `json:"url"`
	Clicks int64  `json:"clicks"`
}

// DeliveryRecord is the persisted state of one tracked outbound email. It is
// created at dispatch time and mutated only by tracking events afterwards.
// Opened is true exactly when OpenCount is positive; OpenedAt keeps the
// timestamp of the first open and is never overwritten. The Clicked fields
// follow the same pattern for link clicks.
type DeliveryRecord struct {
	ID         string     `json:"id"`
	Recipient  string     `json:"recipient"`
	Subject    string     `json:"subject"`
	Template   string     `json:"template"`
	CampaignID *string    `json:"campaign_id,omitempty"`
	SentAt     time.Time  `json:"sent_at"`
	Opened     bool       `json:"opened"`
	OpenCount  int64      `json:"open_count"`
	OpenedAt   *time.Time `json:"opened_at,omitempty"`
	Clicked    bool       `json:"clicked"`
	ClickCount int64      `json:"click_count"`
	ClickedAt  *time.Time `json:"clicked_at,omitempty"`
	Links      []LinkStat `json:"links"`
}

// MergeLink increments the entry matching url or appends a new one with a
// single click. Entries stay unique by URL and keep insertion order.
func MergeLink(links []LinkStat, url string) []LinkStat {
	for i := range links {
		if links[i].URL == url {
			links[i].Clicks++
			return links
		}
	}
	return append(links, LinkStat{URL: url, Clicks: 1})
}
