package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/openrsl/rslserver/internal/rsl"
)

// rslcheck validates an RSL document from a file or URL and prints the
// full validation report, grouped by rule context.
func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: rslcheck <file-or-url>\n")
		os.Exit(2)
	}
	source := flag.Arg(0)

	xmlText, err := load(source)
	if err != nil {
		log.Fatalf("Error loading %s: %v", source, err)
	}

	doc, err := rsl.Parse(xmlText, source)
	if err != nil {
		log.Fatalf("Parse failed: %v", err)
	}

	fmt.Printf("Parsed %d content block(s)\n\n", len(doc.Contents))

	report := rsl.Validate(doc.Contents)
	printReport(report)

	if !report.IsValid {
		os.Exit(1)
	}
}

func load(source string) (string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := http.Get(source)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}
		return string(body), nil
	}

	body, err := os.ReadFile(source)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func printReport(report *rsl.Report) {
	if report.IsValid {
		fmt.Println("Document is valid")
	} else {
		fmt.Printf("Document has %d error(s)\n", len(report.Errors))
	}
	fmt.Printf("%d error(s), %d warning(s)\n", len(report.Errors), len(report.Warnings))

	grouped := make(map[string][]rsl.Result)
	var order []string
	for _, result := range report.Results {
		if _, seen := grouped[result.Context]; !seen {
			order = append(order, result.Context)
		}
		grouped[result.Context] = append(grouped[result.Context], result)
	}

	for _, context := range order {
		fmt.Printf("\n--- %s ---\n", context)
		for _, result := range grouped[context] {
			fmt.Printf("  [%s] %s\n", strings.ToUpper(result.Kind), result.Message)
		}
	}
}
