package rsl

import (
	"sort"
	"strconv"

	"github.com/beevik/etree"
)

// Namespace is the xmlns value stamped on every generated document.
const Namespace = "https://rslstandard.org/rsl"

// Generate serializes a Document to its canonical XML form. It is total:
// any Document serializes, including semantically broken ones (those are a
// validator concern). The output is deterministic — element order follows
// the document, permission terms and metadata keys are emitted in lexical
// order, and attribute order is fixed — so equal documents produce
// byte-identical text.
func Generate(doc *Document) string {
	tree := etree.NewDocument()
	tree.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := tree.CreateElement("rsl")
	root.CreateAttr("xmlns", Namespace)

	for i := range doc.Contents {
		writeContent(root, &doc.Contents[i])
	}

	tree.Indent(2)
	out, err := tree.WriteToString()
	if err != nil {
		// WriteToString only fails on writer errors; a string builder has none.
		return ""
	}
	return out
}

func writeContent(root *etree.Element, content *Content) {
	el := root.CreateElement("content")
	el.CreateAttr("url", content.URL)
	if content.LicenseServer != "" {
		el.CreateAttr("server", content.LicenseServer)
	}
	// Booleans are always explicit so the document stays self-describing.
	el.CreateAttr("encrypted", strconv.FormatBool(content.Encrypted))
	if content.LastModified != "" {
		el.CreateAttr("lastmod", content.LastModified)
	}

	for i := range content.Licenses {
		writeLicense(el, &content.Licenses[i])
	}

	for _, key := range sortedKeys(content.Metadata) {
		el.CreateElement(key).SetText(content.Metadata[key])
	}
}

func writeLicense(parent *etree.Element, license *License) {
	el := parent.CreateElement("license")
	el.CreateAttr("standard", strconv.FormatBool(license.Standard))
	if license.Name != "" {
		el.CreateAttr("name", license.Name)
	}

	for _, term := range sortedTerms(license.Permits) {
		el.CreateElement("permits").CreateAttr("type", term)
	}
	for _, term := range sortedTerms(license.Prohibits) {
		el.CreateElement("prohibits").CreateAttr("type", term)
	}

	if p := license.Payment; p != nil {
		pe := el.CreateElement("payment")
		pe.CreateAttr("type", p.Type)
		if p.Amount != "" {
			pe.CreateAttr("amount", p.Amount)
		}
		if p.Currency != "" {
			pe.CreateAttr("currency", p.Currency)
		}
		if p.URL != "" {
			pe.CreateAttr("url", p.URL)
		}
	}

	if l := license.Legal; l != nil {
		le := el.CreateElement("legal")
		if l.Jurisdiction != "" {
			le.CreateAttr("jurisdiction", l.Jurisdiction)
		}
		if l.Warranty != "" {
			le.CreateAttr("warranty", l.Warranty)
		}
		if l.Disclaimer != "" {
			le.CreateAttr("disclaimer", l.Disclaimer)
		}
	}
}

func sortedTerms(terms []string) []string {
	out := make([]string, len(terms))
	copy(out, terms)
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
