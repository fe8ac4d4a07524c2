package dedupe

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases and strips punctuation",
			input: "Caffeine & Cognition: A Review!",
			want:  "caffeineandcognitionareview",
		},
		{
			name:  "entity ampersand folds like bare ampersand",
			input: "Caffeine &amp; Cognition: A Review",
			want:  "caffeineandcognitionareview",
		},
		{
			name:  "superscript markup removed",
			input: "<sup>18</sup>F-FDG uptake in glioma",
			want:  "18ffdguptakeinglioma",
		},
		{
			name:  "subscript and inf markup removed",
			input: "PM<sub>2.5</sub> and NO<inf>x</inf> exposure",
			want:  "pm25andnoxexposure",
		},
		{
			name:  "greek letter folds to latin",
			input: "α-Synuclein aggregation in β-cells",
			want:  "asynucleinaggregationinbcells",
		},
		{
			name:  "spelled-out greek folds the same way",
			input: "Alpha-synuclein aggregation in beta-cells",
			want:  "asynucleinaggregationinbcells",
		},
		{
			name:  "sharp s folds to b like beta",
			input: "ß-blocker therapy",
			want:  "bblockertherapy",
		},
		{
			name:  "unicode escape notation decoded",
			input: "Role of <U+03B1>-synuclein",
			want:  "roleofasynuclein",
		},
		{
			name:  "diacritics removed",
			input: "Étude générale des phénomènes",
			want:  "etudegeneraledesphenomenes",
		},
		{
			name:  "angle bracket entities do not leak text",
			input: "IL-6 &lt;predicts&gt; outcome",
			want:  "il6predictsoutcome",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeTitle(tt.input); got != tt.want {
				t.Errorf("normalizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeJournal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "conference suffix dropped",
			input: "The Lancet. Conference: 2023 Annual Meeting",
			want:  "thelancet",
		},
		{
			name:  "plain name normalized like a title",
			input: "Nature Reviews Genetics",
			want:  "naturereviewsgenetics",
		},
		{
			name:  "no suffix leaves name intact",
			input: "Journal of Clinical Oncology",
			want:  "journalofclinicaloncology",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeJournal(tt.input); got != tt.want {
				t.Errorf("normalizeJournal(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
