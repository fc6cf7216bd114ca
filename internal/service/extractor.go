package service

import (
	"clausecheck/internal/model"
	"fmt"
	"regexp"
	"strconv"
)

// Reference patterns recognized in evaluator free text. The content
// evaluator writes hierarchical clause notations ("clause 5", "clause 5
// paragraph 2", "clause 5 item 2"); canonical ids (std:005, std:005:item:002)
// pass through unchanged.
var (
	canonicalPattern = regexp.MustCompile(`\bstd:(\d{3})(?::item:(\d{3}))?\b`)
	clausePattern    = regexp.MustCompile(`(?i)\bclause\s+(\d+)(?:\s*[,.]?\s*(?:paragraph|item|sub-?clause)\s+(\d+))?`)
)

// ExtractReferences scans one free-text mention and returns the canonical,
// possibly-partial requirement references it names, deduplicated in match
// order. A mention naming no known pattern yields a ParsingError; the caller
// records it and continues with the next item.
func ExtractReferences(text string) ([]string, error) {
	var refs []string
	seen := make(map[string]bool)

	add := func(ref string) {
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}

	for _, m := range canonicalPattern.FindAllStringSubmatch(text, -1) {
		if m[2] != "" {
			add(fmt.Sprintf("std:%s:item:%s", m[1], m[2]))
		} else {
			add("std:" + m[1])
		}
	}

	for _, m := range clausePattern.FindAllStringSubmatch(text, -1) {
		clause, _ := strconv.Atoi(m[1])
		if m[2] != "" {
			item, _ := strconv.Atoi(m[2])
			add(fmt.Sprintf("std:%03d:item:%03d", clause, item))
		} else {
			add(fmt.Sprintf("std:%03d", clause))
		}
	}

	if len(refs) == 0 {
		return nil, &model.ParsingError{RawText: text, Reason: "no clause reference recognized"}
	}
	return refs, nil
}
