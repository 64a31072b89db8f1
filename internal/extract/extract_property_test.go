package extract

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: for any subject line, the extracted title is never empty; the
// heuristics always fall back to the cleaned subject or the fixed default.
func TestProperty_TitleNeverEmpty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("title_never_empty", prop.ForAll(
		func(subject string) bool {
			return ExtractTitle(subject) != ""
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

// Property: extracted skills are capped, de-duplicated, and ordered by the
// vocabulary, no matter what text is fed in.
func TestProperty_SkillsCappedAndOrdered(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	// Generator for texts mentioning a random subset of vocabulary terms.
	termSubsetGen := gen.SliceOf(gen.OneConstOf(
		"python", "docker", "aws", "kubernetes", "scrum", "leadership",
		"react", "sql", "linux", "machine learning",
	)).Map(func(terms []string) string {
		return "I learned " + strings.Join(terms, " and ") + " today"
	})

	properties.Property("at_most_max_skills", prop.ForAll(
		func(text string) bool {
			return len(ExtractSkills(text)) <= MaxSkills
		},
		termSubsetGen,
	))

	properties.Property("no_duplicates", prop.ForAll(
		func(text string) bool {
			skills := ExtractSkills(text)
			seen := make(map[string]bool)
			for _, s := range skills {
				if seen[s] {
					return false
				}
				seen[s] = true
			}
			return true
		},
		termSubsetGen,
	))

	properties.Property("vocabulary_order", prop.ForAll(
		func(text string) bool {
			skills := ExtractSkills(text)
			rank := make(map[string]int)
			for i, term := range skillVocabulary {
				rank[titleCaseWords(term)] = i
			}
			for i := 1; i < len(skills); i++ {
				if rank[skills[i-1]] > rank[skills[i]] {
					return false
				}
			}
			return true
		},
		termSubsetGen,
	))

	properties.TestingRun(t)
}

// Property: descriptions respect the hard length caps regardless of input.
func TestProperty_DescriptionLengthBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("description_bounded", prop.ForAll(
		func(body, snippet string) bool {
			desc := ExtractDescription(body, snippet)
			// Longest allowed output is the cap plus the ellipsis.
			return len(desc) <= maxDescriptionLength+len("...")
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestExtractTitle(t *testing.T) {
	cases := []struct {
		name    string
		subject string
		want    string
	}{
		{
			name:    "congratulations prefix with completed rule",
			subject: "Congratulations! You have completed AWS Solutions Architect",
			want:    "AWS Solutions Architect",
		},
		{
			name:    "certificate of completion noise removed",
			subject: "Certificate of Completion - Docker Fundamentals",
			want:    "Docker Fundamentals",
		},
		{
			name:    "x certificate form",
			subject: "Python Programming Certificate",
			want:    "Python Programming",
		},
		{
			name:    "reply prefix stripped",
			subject: "Re: Completed the Kubernetes Basics course",
			want:    "Kubernetes Basics",
		},
		{
			name:    "empty subject falls back",
			subject: "",
			want:    FallbackTitle,
		},
		{
			name:    "only noise falls back",
			subject: "Congratulations!",
			want:    FallbackTitle,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractTitle(tc.subject); got != tc.want {
				t.Errorf("ExtractTitle(%q) = %q, want %q", tc.subject, got, tc.want)
			}
		})
	}
}

func TestExtractIssuer(t *testing.T) {
	cases := []struct {
		name string
		from string
		want string
	}{
		{"display name preferred", `"Coursera" <no-reply@coursera.org>`, "Coursera"},
		{"name containing at rejected", `"no-reply@x.com" <no-reply@coursera.org>`, "Coursera"},
		{"bare address uses domain label", "certificates@udemy.com", "Udemy"},
		{"empty input", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractIssuer(tc.from); got != tc.want {
				t.Errorf("ExtractIssuer(%q) = %q, want %q", tc.from, got, tc.want)
			}
		})
	}
}

func TestExtractSkills(t *testing.T) {
	text := "Completed a course covering Python, Docker and Scrum practices"
	got := ExtractSkills(text)
	want := []string{"Python", "Docker", "Scrum"}
	if len(got) != len(want) {
		t.Fatalf("ExtractSkills() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("skill[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFormatDate(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Mon, 02 Jan 2006 15:04:05 -0700", "January 2, 2006"},
		{"Tue, 15 Aug 2023 09:30:00 +0000", "August 15, 2023"},
		{"not a date", "not a date"},
	}
	for _, tc := range cases {
		if got := FormatDate(tc.raw); got != tc.want {
			t.Errorf("FormatDate(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestExtractDescription(t *testing.T) {
	t.Run("keyword sentences from short body", func(t *testing.T) {
		body := "Hello there. You have completed the course with distinction. See you soon."
		got := ExtractDescription(body, "snippet text")
		if !strings.Contains(got, "completed the course") {
			t.Errorf("expected keyword sentence, got %q", got)
		}
	})

	t.Run("long body falls back to snippet", func(t *testing.T) {
		body := strings.Repeat("x", 600)
		got := ExtractDescription(body, "the snippet")
		if got != "the snippet" {
			t.Errorf("expected snippet fallback, got %q", got)
		}
	})

	t.Run("empty body falls back to snippet", func(t *testing.T) {
		if got := ExtractDescription("", "fallback"); got != "fallback" {
			t.Errorf("expected snippet fallback, got %q", got)
		}
	})
}
