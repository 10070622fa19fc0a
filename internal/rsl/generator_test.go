package rsl

import (
	"reflect"
	"strings"
	"testing"
)

func sampleDocument() *Document {
	return &Document{
		Contents: []Content{
			{
				URL:           "https://example.com/post",
				LicenseServer: "https://license.example.com",
				Encrypted:     true,
				LastModified:  "2026-01-10T12:00:00Z",
				Licenses: []License{
					{
						Permits:   []string{"ai-use", "search-index"},
						Prohibits: []string{"ai-train"},
						Payment:   &PaymentTerm{Type: "subscription", Amount: "9.99", Currency: "USD"},
						Legal:     &LegalTerm{Jurisdiction: "US-CA", Warranty: "as-is"},
						Standard:  true,
						Name:      "CC-BY-4.0",
					},
				},
				Metadata: map[string]string{"publisher": "Example Media"},
			},
			{
				URL:      "https://example.com/feed",
				Licenses: []License{{Permits: []string{"search-index"}}},
			},
		},
	}
}

func TestGenerate_RoundTrip(t *testing.T) {
	doc := sampleDocument()

	parsed, err := Parse(Generate(doc), "roundtrip")
	if err != nil {
		t.Fatalf("Parse of generated output failed: %v", err)
	}

	if !reflect.DeepEqual(doc, parsed) {
		t.Errorf("Round trip changed the document.\nbefore: %+v\nafter:  %+v", doc, parsed)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	doc := sampleDocument()

	first := Generate(doc)
	parsed, err := Parse(first, "roundtrip")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	second := Generate(parsed)

	if first != second {
		t.Errorf("Canonical form is not a fixed point.\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := &Document{Contents: []Content{{
		URL:      "https://example.com",
		Licenses: []License{{Permits: []string{"ai-train", "ai-use", "search-index"}}},
	}}}
	b := &Document{Contents: []Content{{
		URL:      "https://example.com",
		Licenses: []License{{Permits: []string{"search-index", "ai-use", "ai-train"}}},
	}}}

	if Generate(a) != Generate(b) {
		t.Error("Term ordering leaked into the generated output")
	}
}

func TestGenerate_BooleansAlwaysExplicit(t *testing.T) {
	out := Generate(&Document{Contents: []Content{{URL: "https://example.com"}}})

	if !strings.Contains(out, `encrypted="false"`) {
		t.Errorf("Expected explicit encrypted attribute, got:\n%s", out)
	}
}

func TestGenerate_OmitsAbsentOptionals(t *testing.T) {
	out := Generate(&Document{Contents: []Content{{URL: "https://example.com"}}})

	for _, attr := range []string{"server=", "lastmod="} {
		if strings.Contains(out, attr) {
			t.Errorf("Expected absent optional %s to be omitted, got:\n%s", attr, out)
		}
	}
}

func TestGenerate_EmptyDocument(t *testing.T) {
	out := Generate(&Document{})

	if !strings.Contains(out, "<rsl") {
		t.Errorf("Expected an rsl root even for an empty document, got:\n%s", out)
	}

	parsed, err := Parse(out, "empty")
	if err != nil {
		t.Fatalf("Parse of empty document failed: %v", err)
	}
	if len(parsed.Contents) != 0 {
		t.Errorf("Expected no content blocks, got %d", len(parsed.Contents))
	}
}

func TestGenerate_MetadataSurvivesRoundTrip(t *testing.T) {
	input := `<rsl><content url="https://example.com"><publisher>Acme</publisher><license><permits type="search-index"/></license></content></rsl>`

	doc, err := Parse(input, "test")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	reparsed, err := Parse(Generate(doc), "test")
	if err != nil {
		t.Fatalf("Reparse failed: %v", err)
	}
	if reparsed.Contents[0].Metadata["publisher"] != "Acme" {
		t.Errorf("Metadata lost in round trip: %v", reparsed.Contents[0].Metadata)
	}
}
