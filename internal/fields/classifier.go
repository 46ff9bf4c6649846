// Package fields infers a user's professional field from free text. The
// rule table is deliberately simple pattern matching, not NLP: the wording
// of each pattern is part of the product's contract, since changing it
// changes which field a given utterance resolves to.
package fields

import (
	"regexp"
	"strings"
)

// Field is the inferred professional category of a user. The empty value
// means unknown.
type Field string

const (
	Unknown             Field = ""
	SoftwareDevelopment Field = "software development"
	Design              Field = "design"
	DataScience         Field = "data science"
	Marketing           Field = "marketing"
	ProjectManagement   Field = "project management"
	Finance             Field = "finance"
	HumanResources      Field = "human resources"
	Sales               Field = "sales"
	Education           Field = "education"
	Healthcare          Field = "healthcare"
	Legal               Field = "legal"
)

type rule struct {
	pattern *regexp.Regexp
	resolve func(match []string) Field
}

func constant(f Field) func([]string) Field {
	return func([]string) Field { return f }
}

// capturedField lower-cases the first captured group and uses it as the
// label directly ("I work in tech" yields "tech").
func capturedField(match []string) Field {
	return Field(strings.ToLower(match[1]))
}

// rules is evaluated in declaration order and the first match wins, even
// when a later rule would match more specifically. This mirrors the shipped
// behavior: "as an account manager, I work in tech" resolves through the
// sales rule, not the workplace rule.
var rules = []rule{
	{regexp.MustCompile(`(?i)(?:i am|i'm|as) an? (software|web|frontend|backend|full.?stack) (developer|engineer)`), constant(SoftwareDevelopment)},
	{regexp.MustCompile(`(?i)(?:i am|i'm|as) an? (ux|ui|product|graphic|visual) (designer)`), constant(Design)},
	{regexp.MustCompile(`(?i)(?:i am|i'm|as) an? (data scientist|data analyst|machine learning|ml|ai)`), constant(DataScience)},
	{regexp.MustCompile(`(?i)(?:i am|i'm|as) an? (marketing|seo|content|social media)`), constant(Marketing)},
	{regexp.MustCompile(`(?i)(?:i am|i'm|as) an? (project manager|product manager|scrum master|agile coach)`), constant(ProjectManagement)},
	{regexp.MustCompile(`(?i)(?:i am|i'm|as) an? (finance|accounting|financial)`), constant(Finance)},
	{regexp.MustCompile(`(?i)(?:i am|i'm|as) an? (hr|human resources|talent|recruiting)`), constant(HumanResources)},
	{regexp.MustCompile(`(?i)(?:i am|i'm|as) an? (sales|business development|account)`), constant(Sales)},
	{regexp.MustCompile(`(?i)(?:i am|i'm|as) an? (teacher|professor|educator|instructor)`), constant(Education)},
	{regexp.MustCompile(`(?i)(?:i am|i'm|as) an? (healthcare|doctor|nurse|medical)`), constant(Healthcare)},
	{regexp.MustCompile(`(?i)(?:i am|i'm|as) an? (legal|lawyer|attorney)`), constant(Legal)},
	{regexp.MustCompile(`(?i)(?:i work|working) in (software|tech|design|marketing|finance|healthcare|education|legal|sales)`), capturedField},
	{regexp.MustCompile(`(?i)(?:my field is|my industry is|my sector is) (software|tech|design|marketing|finance|healthcare|education|legal|sales)`), capturedField},
}

// Classify maps an utterance to a professional field. The second return is
// false when no rule matches. Safe for concurrent use.
func Classify(text string) (Field, bool) {
	lowered := strings.ToLower(text)
	for _, r := range rules {
		if match := r.pattern.FindStringSubmatch(lowered); match != nil {
			return r.resolve(match), true
		}
	}
	return Unknown, false
}
