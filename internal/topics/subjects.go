package topics

import "strings"

type subjectRule struct {
	keyword string
	subject string
}

// subjectRules is scanned top to bottom; the first keyword found wins, so more
// specific keywords are listed before the general ones they contain.
var subjectRules = []subjectRule{
	{"computer", "Computer Science"},
	{"programming", "Computer Science"},
	{"software", "Computer Science"},
	{"algorithm", "Computer Science"},
	{"data structure", "Computer Science"},
	{"database", "Computer Science"},
	{"electronics", "Electronics"},
	{"electrical", "Electrical Engineering"},
	{"mechanical", "Mechanical Engineering"},
	{"civil", "Civil Engineering"},
	{"calculus", "Mathematics"},
	{"algebra", "Mathematics"},
	{"statistics", "Statistics"},
	{"math", "Mathematics"},
	{"physics", "Physics"},
	{"chemistry", "Chemistry"},
	{"biology", "Biology"},
	{"botany", "Biology"},
	{"zoology", "Biology"},
	{"economics", "Economics"},
	{"accounting", "Accountancy"},
	{"business", "Business Studies"},
	{"management", "Management"},
	{"history", "History"},
	{"geography", "Geography"},
	{"political", "Political Science"},
	{"psychology", "Psychology"},
	{"sociology", "Sociology"},
	{"philosophy", "Philosophy"},
	{"literature", "Literature"},
	{"english", "English"},
	{"law", "Law"},
}

// DetectSubject returns the subject for the first keyword contained in s
// (case-insensitive), or DefaultSubject.
func DetectSubject(s string) string {
	lower := strings.ToLower(s)
	for _, rule := range subjectRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.subject
		}
	}
	return DefaultSubject
}
