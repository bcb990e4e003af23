package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)

// loadDocuments reads the given .txt files (glob patterns allowed) and
// returns one candidate document per blank-line separated paragraph.
func loadDocuments(paths []string) ([]string, error) {
	var documents []string
	for _, p := range paths {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("bad file pattern %q: %w", p, err)
		}
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if !strings.HasSuffix(strings.ToLower(m), ".txt") {
				continue
			}
			data, err := os.ReadFile(m)
			if err != nil {
				return nil, err
			}
			for _, para := range paragraphSplitRe.Split(string(data), -1) {
				para = strings.TrimSpace(para)
				if para != "" {
					documents = append(documents, para)
				}
			}
		}
	}
	if len(documents) == 0 {
		return nil, fmt.Errorf("no .txt documents found")
	}
	return documents, nil
}
