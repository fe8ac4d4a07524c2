package main

import (
	"testing"

	"github.com/matsen/refdup/citation"
)

func TestMatchAgainst(t *testing.T) {
	library := []citation.Citation{
		{
			Title:    "Caffeine and cognition in older adults",
			DOI:      "10.1000/caffeine.2023",
			Abstract: "A two-year cohort study.",
		},
		{Title: "Glacier mass balance in the Alps"},
		{Title: "Glacier mass balance in the Alps!"},
	}

	t.Run("probe doi finds its library record", func(t *testing.T) {
		probe := citation.Citation{Title: "CAFFEINE AND COGNITION", DOI: "10.1000/caffeine.2023"}
		matches, err := matchAgainst(probe, library)
		if err != nil {
			t.Fatalf("matchAgainst: %v", err)
		}
		if len(matches) != 1 || matches[0].DOI != "10.1000/caffeine.2023" {
			t.Errorf("matches = %+v, want the caffeine record", matches)
		}
	})

	t.Run("library-only duplicates are not reported", func(t *testing.T) {
		probe := citation.Citation{Title: "Unrelated probe title", DOI: "10.9999/nothing"}
		matches, err := matchAgainst(probe, library)
		if err != nil {
			t.Fatalf("matchAgainst: %v", err)
		}
		if len(matches) != 0 {
			t.Errorf("matches = %+v, want none for an unmatched probe", matches)
		}
	})

	t.Run("empty probe matches nothing", func(t *testing.T) {
		matches, err := matchAgainst(citation.Citation{}, library)
		if err != nil {
			t.Fatalf("matchAgainst: %v", err)
		}
		if len(matches) != 0 {
			t.Errorf("matches = %+v, want none for an empty probe", matches)
		}
	})
}
