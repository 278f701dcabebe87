package cli

import (
	"fmt"
	"strings"

	"github.com/orafadelg/surveyqr/internal/survey"
)

// ParamParser turns key=value flag arguments into a parameter set, keeping
// the order they were given on the command line.
type ParamParser struct{}

func NewParamParser() *ParamParser {
	return &ParamParser{}
}

func (pp *ParamParser) Parse(args []string) (*survey.Params, error) {
	params := survey.NewParams()
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (want key=value)", arg)
		}
		params.Set(key, survey.String(value))
	}
	return params, nil
}

// SummaryPrinter writes the outcome of a generate run to stdout.
type SummaryPrinter struct{}

func NewSummaryPrinter() *SummaryPrinter {
	return &SummaryPrinter{}
}

func (sp *SummaryPrinter) PrintSummary(link survey.Link, files []string) {
	fmt.Println("Survey URL:")
	fmt.Println("  " + link.URL)
	if link.Signature != "" {
		fmt.Println("Signature (HMAC-SHA256):")
		fmt.Println("  " + link.Signature)
	}
	for _, file := range files {
		fmt.Println("Wrote " + file)
	}
}
