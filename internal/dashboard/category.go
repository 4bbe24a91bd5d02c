package dashboard

import "strings"

// Category groups subjects by substring match on the subject name.
type Category struct {
	Name  string   `json:"name" mapstructure:"name"`
	Match []string `json:"match" mapstructure:"match"`
}

var DefaultCategories = []Category{
	{Name: "재정학", Match: []string{"재정학"}},
	{Name: "회계학", Match: []string{"회계학"}},
	{Name: "세법학", Match: []string{"세법학"}},
	{Name: "선택법", Match: []string{"상법", "민법", "행정소송법"}},
}

// Classify returns the first category whose patterns match subjectName.
func Classify(cats []Category, subjectName string) (string, bool) {
	for _, c := range cats {
		for _, m := range c.Match {
			if m != "" && strings.Contains(subjectName, m) {
				return c.Name, true
			}
		}
	}
	return "", false
}

func names(cats []Category) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, c.Name)
	}
	return out
}
