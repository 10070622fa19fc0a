package rsl

// Well-known permission terms. The vocabulary is open: licenses may carry
// any non-empty term, these are just the ones the RSL standard names.
const (
	TermSearchIndex = "search-index"
	TermAITrain     = "ai-train"
	TermAIUse       = "ai-use"
	TermArchive     = "archive"
	TermAnalysis    = "analysis"
)

// Payment types understood by the validator.
const (
	PaymentFree         = "free"
	PaymentAttribution  = "attribution"
	PaymentSubscription = "subscription"
	PaymentPerUse       = "per-use"
	PaymentOther        = "other"
)

// Document is the in-memory form of an RSL document. It is built fresh by
// the parser on every read and discarded after the generator serializes it;
// the persisted form is always the canonical XML text.
type Document struct {
	Contents []Content `json:"contents"`
}

// Content describes the licensing terms for one resource URL.
type Content struct {
	URL           string            `json:"url"`
	LicenseServer string            `json:"licenseServer,omitempty"`
	Encrypted     bool              `json:"encrypted"`
	LastModified  string            `json:"lastModified,omitempty"`
	Licenses      []License         `json:"licenses"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// License is one license block under a content entry. Permits and Prohibits
// are sets of permission terms; duplicates are collapsed by the parser and
// the generator emits them in lexical order.
type License struct {
	Permits   []string     `json:"permits"`
	Prohibits []string     `json:"prohibits"`
	Payment   *PaymentTerm `json:"payment,omitempty"`
	Legal     *LegalTerm   `json:"legal,omitempty"`
	Standard  bool         `json:"standard"`
	Name      string       `json:"name,omitempty"`
}

// PaymentTerm describes the compensation required for the granted permissions.
type PaymentTerm struct {
	Type     string `json:"type"`
	Amount   string `json:"amount,omitempty"`
	Currency string `json:"currency,omitempty"`
	URL      string `json:"url,omitempty"`
}

// LegalTerm carries jurisdiction, warranty and disclaimer text.
type LegalTerm struct {
	Jurisdiction string `json:"jurisdiction,omitempty"`
	Warranty     string `json:"warranty,omitempty"`
	Disclaimer   string `json:"disclaimer,omitempty"`
}

// SetMetadata records an unmodeled extension field on the content block.
func (c *Content) SetMetadata(key, value string) {
	if c.Metadata == nil {
		c.Metadata = make(map[string]string)
	}
	c.Metadata[key] = value
}

// IsEmpty reports whether the license block carries no terms at all.
func (l *License) IsEmpty() bool {
	return len(l.Permits) == 0 && len(l.Prohibits) == 0 && l.Payment == nil && l.Legal == nil
}
