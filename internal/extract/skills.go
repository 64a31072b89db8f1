package extract

import "strings"

// skillVocabulary is the fixed vocabulary matched against subject+body.
// Order matters: matched skills keep vocabulary order, not input order, and
// the list is capped at MaxSkills.
var skillVocabulary = []string{
	// Languages
	"Python", "JavaScript", "TypeScript", "Java", "Golang", "Rust",
	"C++", "C#", "Ruby", "PHP", "Swift", "Kotlin", "SQL",
	// Frameworks
	"React", "Angular", "Vue", "Node.js", "Django", "Flask", "Spring",
	// Cloud / DevOps
	"AWS", "Azure", "Google Cloud", "Docker", "Kubernetes", "Terraform",
	"Jenkins", "Git", "CI/CD", "Linux", "DevOps",
	// Data
	"Machine Learning", "Deep Learning", "Data Science", "Data Analysis",
	"TensorFlow", "Pandas",
	// Soft skills
	"Leadership", "Communication", "Project Management", "Agile", "Scrum",
	"Teamwork", "Problem Solving",
}

// MaxSkills caps the skill tags attached to one certificate.
const MaxSkills = 5

// ExtractSkills matches the skill vocabulary against the given text
// (case-insensitive substring match), returning at most MaxSkills terms,
// title-cased per word and de-duplicated, in vocabulary order.
func ExtractSkills(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	skills := make([]string, 0, MaxSkills)

	for _, term := range skillVocabulary {
		if len(skills) >= MaxSkills {
			break
		}
		if !strings.Contains(lower, strings.ToLower(term)) {
			continue
		}
		display := titleCaseWords(term)
		if seen[display] {
			continue
		}
		seen[display] = true
		skills = append(skills, display)
	}
	return skills
}

// titleCaseWords upper-cases the first rune of each space-separated word,
// leaving the rest of the word untouched so acronyms survive.
func titleCaseWords(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(word)
		if len(runes) > 0 && runes[0] >= 'a' && runes[0] <= 'z' {
			runes[0] = runes[0] - 'a' + 'A'
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
