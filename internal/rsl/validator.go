package rsl

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Result kinds.
const (
	KindError   = "error"
	KindWarning = "warning"
	KindInfo    = "info"
)

// Rule group contexts, used by callers to group findings in the UI.
const (
	ContextPresence = "Presence rules"
	ContextURL      = "URL rules"
	ContextConflict = "Conflict rules"
	ContextPayment  = "Payment rules"
	ContextDate     = "Date rules"
	ContextInternal = "Internal"
)

// Result is a single validation finding.
type Result struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Context string `json:"context"`
}

// Report aggregates every finding across the whole document. IsValid is
// true exactly when no error-level findings exist; warnings never affect it.
type Report struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Results  []Result `json:"results"`
}

func (r *Report) add(kind, context, format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	r.Results = append(r.Results, Result{Kind: kind, Message: message, Context: context})
	switch kind {
	case KindError:
		r.Errors = append(r.Errors, message)
	case KindWarning:
		r.Warnings = append(r.Warnings, message)
	}
}

// rule functions are independent: each one walks the whole content list and
// appends findings. One rule's findings never suppress another's, so the
// caller always sees the full diagnostic set, linter style.
type rule func(contents []Content, report *Report)

var rules = []rule{
	checkPresence,
	checkURLs,
	checkDuplicateURLs,
	checkConflicts,
	checkPayment,
	checkDates,
}

// Validate checks contents against the RSL standard's structural and
// semantic rules. It never fails: semantic problems are soft and land in
// the report, and an unexpected panic inside a rule is surfaced as a single
// internal-validation-error finding rather than propagating.
func Validate(contents []Content) *Report {
	report := &Report{
		Errors:   []string{},
		Warnings: []string{},
		Results:  []Result{},
	}

	for _, r := range rules {
		runRule(r, contents, report)
	}

	report.IsValid = len(report.Errors) == 0
	return report
}

func runRule(r rule, contents []Content, report *Report) {
	defer func() {
		if cause := recover(); cause != nil {
			report.add(KindError, ContextInternal, "internal validation error: %v", cause)
		}
	}()
	r(contents, report)
}

func checkPresence(contents []Content, report *Report) {
	for i, content := range contents {
		if content.URL == "" {
			report.add(KindError, ContextPresence, "content block %d has no url", i+1)
		}
		if len(content.Licenses) == 0 {
			report.add(KindWarning, ContextPresence,
				"content block %d (%s): no license declared — content is ungoverned by default", i+1, content.URL)
		}
		if content.Encrypted && content.LicenseServer == "" {
			report.add(KindError, ContextPresence,
				"content block %d (%s): encrypted content has no license-issuing endpoint", i+1, content.URL)
		}
	}
}

func checkURLs(contents []Content, report *Report) {
	for i, content := range contents {
		if content.URL != "" && !isValidResourceURL(content.URL) {
			report.add(KindError, ContextURL, "content block %d: invalid url %q", i+1, content.URL)
		}
		if content.LicenseServer != "" && !isValidResourceURL(content.LicenseServer) {
			report.add(KindError, ContextURL, "content block %d: invalid license server url %q", i+1, content.LicenseServer)
		}
	}
}

func checkDuplicateURLs(contents []Content, report *Report) {
	seen := make(map[string]int)
	for i, content := range contents {
		if content.URL == "" {
			continue
		}
		key := normalizeURL(content.URL)
		if first, dup := seen[key]; dup {
			report.add(KindError, ContextURL,
				"content blocks %d and %d declare the same url (%s)", first+1, i+1, content.URL)
		} else {
			seen[key] = i
		}
	}
}

func checkConflicts(contents []Content, report *Report) {
	for i, content := range contents {
		for j, license := range content.Licenses {
			for _, term := range license.Permits {
				if containsTerm(license.Prohibits, term) {
					report.add(KindError, ContextConflict,
						"content block %d license %d: %q is both permitted and prohibited", i+1, j+1, term)
				}
			}
			if license.IsEmpty() {
				report.add(KindWarning, ContextConflict,
					"content block %d license %d declares no terms", i+1, j+1)
			}
		}
	}
}

func checkPayment(contents []Content, report *Report) {
	for i, content := range contents {
		for j, license := range content.Licenses {
			if p := license.Payment; p != nil && p.Type != PaymentFree && p.Type != "" {
				if p.Amount == "" && p.URL == "" {
					report.add(KindWarning, ContextPayment,
						"content block %d license %d: %s payment declares neither amount nor reference url", i+1, j+1, p.Type)
				}
			}
			if license.Standard && license.Name == "" {
				report.add(KindError, ContextPayment,
					"content block %d license %d: marked standard but names no standard license", i+1, j+1)
			}
		}
	}
}

func checkDates(contents []Content, report *Report) {
	for i, content := range contents {
		if content.LastModified == "" {
			continue
		}
		if !isValidTimestamp(content.LastModified) {
			report.add(KindError, ContextDate,
				"content block %d: lastmod %q is not an ISO-8601 timestamp", i+1, content.LastModified)
		}
	}
}

func containsTerm(terms []string, term string) bool {
	for _, t := range terms {
		if t == term {
			return true
		}
	}
	return false
}

// isValidResourceURL accepts absolute http(s) URLs and root-relative paths.
func isValidResourceURL(raw string) bool {
	if strings.HasPrefix(raw, "/") {
		_, err := url.Parse(raw)
		return err == nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// normalizeURL lowercases the scheme and host and strips one trailing slash
// from the path so near-identical URLs compare equal.
func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

func isValidTimestamp(value string) bool {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}
