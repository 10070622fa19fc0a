package rsl

import (
	"strings"
	"testing"
)

func TestParse_MinimalDocument(t *testing.T) {
	input := `<rsl><content url="https://example.com"><license><permits type="search-index"/></license></content></rsl>`

	doc, err := Parse(input, "test")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(doc.Contents) != 1 {
		t.Fatalf("Expected 1 content block, got %d", len(doc.Contents))
	}

	content := doc.Contents[0]
	if content.URL != "https://example.com" {
		t.Errorf("Expected url https://example.com, got %s", content.URL)
	}
	if content.Encrypted {
		t.Error("Expected encrypted to default to false")
	}
	if len(content.Licenses) != 1 {
		t.Fatalf("Expected 1 license, got %d", len(content.Licenses))
	}
	if len(content.Licenses[0].Permits) != 1 || content.Licenses[0].Permits[0] != "search-index" {
		t.Errorf("Expected permits [search-index], got %v", content.Licenses[0].Permits)
	}
}

func TestParse_FullContent(t *testing.T) {
	input := `<rsl>
	  <content url="https://example.com/post" server="https://license.example.com" encrypted="true" lastmod="2026-01-10T12:00:00Z">
	    <license standard="true" name="CC-BY-4.0">
	      <permits type="search-index"/>
	      <prohibits type="ai-train"/>
	      <payment type="subscription" amount="9.99" currency="USD" url="https://example.com/subscribe"/>
	      <legal jurisdiction="US-CA" warranty="as-is" disclaimer="no liability"/>
	    </license>
	  </content>
	</rsl>`

	doc, err := Parse(input, "test")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	content := doc.Contents[0]
	if content.LicenseServer != "https://license.example.com" {
		t.Errorf("Expected license server, got %s", content.LicenseServer)
	}
	if !content.Encrypted {
		t.Error("Expected encrypted to be true")
	}
	if content.LastModified != "2026-01-10T12:00:00Z" {
		t.Errorf("Unexpected lastmod: %s", content.LastModified)
	}

	license := content.Licenses[0]
	if !license.Standard || license.Name != "CC-BY-4.0" {
		t.Errorf("Expected standard license CC-BY-4.0, got standard=%v name=%s", license.Standard, license.Name)
	}
	if license.Payment == nil || license.Payment.Type != "subscription" || license.Payment.Amount != "9.99" {
		t.Errorf("Unexpected payment term: %+v", license.Payment)
	}
	if license.Legal == nil || license.Legal.Jurisdiction != "US-CA" {
		t.Errorf("Unexpected legal term: %+v", license.Legal)
	}
}

func TestParse_UnknownFieldsPreserved(t *testing.T) {
	input := `<rsl><content url="https://example.com" publisher-id="42">
	  <publisher>Example Media</publisher>
	  <contact>licensing@example.com</contact>
	</content></rsl>`

	doc, err := Parse(input, "test")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	metadata := doc.Contents[0].Metadata
	if metadata["publisher"] != "Example Media" {
		t.Errorf("Expected publisher element preserved, got %v", metadata)
	}
	if metadata["contact"] != "licensing@example.com" {
		t.Errorf("Expected contact element preserved, got %v", metadata)
	}
	if metadata["publisher-id"] != "42" {
		t.Errorf("Expected unknown attribute preserved, got %v", metadata)
	}
}

func TestParse_BooleanVariants(t *testing.T) {
	for _, token := range []string{"true", "TRUE", "True", "1", "yes", "YES"} {
		doc, err := Parse(`<rsl><content url="/a" encrypted="`+token+`"/></rsl>`, "test")
		if err != nil {
			t.Errorf("Parse failed for token %q: %v", token, err)
			continue
		}
		if !doc.Contents[0].Encrypted {
			t.Errorf("Expected token %q to parse as true", token)
		}
	}

	for _, token := range []string{"false", "0", "no", "No"} {
		doc, err := Parse(`<rsl><content url="/a" encrypted="`+token+`"/></rsl>`, "test")
		if err != nil {
			t.Errorf("Parse failed for token %q: %v", token, err)
			continue
		}
		if doc.Contents[0].Encrypted {
			t.Errorf("Expected token %q to parse as false", token)
		}
	}
}

func TestParse_InvalidBoolean(t *testing.T) {
	_, err := Parse(`<rsl><content url="/a" encrypted="maybe"/></rsl>`, "test")
	if err == nil {
		t.Fatal("Expected parse error for invalid boolean")
	}

	parseErr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("Expected *ParseError, got %T", err)
	}
	if parseErr.Reason != ReasonInvalidBoolean {
		t.Errorf("Expected reason %s, got %s", ReasonInvalidBoolean, parseErr.Reason)
	}
}

func TestParse_MalformedXML(t *testing.T) {
	_, err := Parse(`<rsl><content url="x"></rsl>`, "test")
	if err == nil {
		t.Fatal("Expected parse error for unclosed tag")
	}
	if parseErr, ok := err.(*ParseError); !ok || parseErr.Reason != ReasonMalformedXML {
		t.Errorf("Expected malformed-xml ParseError, got %v", err)
	}
}

func TestParse_MissingRoot(t *testing.T) {
	_, err := Parse(`<licensing><content url="x"/></licensing>`, "test")
	if err == nil {
		t.Fatal("Expected parse error for wrong root element")
	}
	if !strings.Contains(err.Error(), "missing-root") {
		t.Errorf("Expected missing-root reason, got %v", err)
	}
}

func TestParse_MissingURL(t *testing.T) {
	_, err := Parse(`<rsl><content encrypted="true"/></rsl>`, "test")
	if err == nil {
		t.Fatal("Expected parse error for content without url")
	}
	if parseErr, ok := err.(*ParseError); !ok || parseErr.Reason != ReasonMissingURL {
		t.Errorf("Expected missing-url ParseError, got %v", err)
	}
}

func TestParse_TermTextFallback(t *testing.T) {
	doc, err := Parse(`<rsl><content url="/a"><license><permits>ai-train</permits></license></content></rsl>`, "test")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if permits := doc.Contents[0].Licenses[0].Permits; len(permits) != 1 || permits[0] != "ai-train" {
		t.Errorf("Expected text-form term to parse, got %v", permits)
	}
}

func TestParse_UnknownTopLevelElementsSkipped(t *testing.T) {
	input := `<rsl><generator>some tool</generator><content url="https://example.com"/></rsl>`

	doc, err := Parse(input, "test")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Contents) != 1 {
		t.Fatalf("Expected 1 content block, got %d", len(doc.Contents))
	}
	if doc.Contents[0].Metadata != nil {
		t.Errorf("Expected top-level element not to leak into content metadata, got %v", doc.Contents[0].Metadata)
	}
}

func TestParse_DuplicateTermsCollapsed(t *testing.T) {
	doc, err := Parse(`<rsl><content url="/a"><license><permits type="ai-use"/><permits type="ai-use"/></license></content></rsl>`, "test")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if permits := doc.Contents[0].Licenses[0].Permits; len(permits) != 1 {
		t.Errorf("Expected duplicate terms collapsed, got %v", permits)
	}
}
