package report

import (
	"fmt"
	"strings"

	"github.com/Veraticus/underbudget/internal/common"
	"github.com/Veraticus/underbudget/internal/pattern"
)

// Section names one of the report tables.
type Section string

// Report sections in display order.
const (
	SectionSummary    Section = "summary"
	SectionComparison Section = "comparison"
	SectionAllocation Section = "allocation"
	SectionWorksheet  Section = "worksheet"
)

// AllSections returns every section in display order.
func AllSections() []Section {
	return []Section{SectionSummary, SectionComparison, SectionAllocation, SectionWorksheet}
}

// ParseSections parses a comma-separated section list. "all" selects every section.
// Duplicates are dropped and display order is kept.
func ParseSections(list string) ([]Section, error) {
	wanted := make(map[Section]bool)
	for _, part := range strings.Split(list, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if name == "all" {
			return AllSections(), nil
		}
		if !validSection(Section(name)) {
			return nil, unknownSection(name)
		}
		wanted[Section(name)] = true
	}
	if len(wanted) == 0 {
		return []Section{SectionSummary}, nil
	}

	var sections []Section
	for _, s := range AllSections() {
		if wanted[s] {
			sections = append(sections, s)
		}
	}
	return sections, nil
}

func validSection(s Section) bool {
	for _, known := range AllSections() {
		if s == known {
			return true
		}
	}
	return false
}

func unknownSection(name string) error {
	names := make([]string, 0, 5)
	for _, s := range AllSections() {
		names = append(names, string(s))
	}
	names = append(names, "all")
	if hint, ok := pattern.Suggest(name, names); ok {
		return fmt.Errorf("%w: unknown report %q (did you mean %q?)", common.ErrInvalidConfig, name, hint)
	}
	return fmt.Errorf("%w: unknown report %q (choose from %s)", common.ErrInvalidConfig, name, strings.Join(names, ", "))
}
