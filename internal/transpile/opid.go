package transpile

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OperationIDs issues document-wide unique operation ids derived from request
// names.
type OperationIDs struct {
	counts map[string]int
	issued map[string]struct{}
}

func newOperationIDs() *OperationIDs {
	return &OperationIDs{counts: map[string]int{}, issued: map[string]struct{}{}}
}

// Next returns the camel-case form of name. A repeated base gets a numeric
// suffix that starts at 1 and increments per repeat; suffixes already issued
// to other names are skipped.
func (o *OperationIDs) Next(name string) string {
	base := camelCase(name)
	n, seen := o.counts[base]
	id := base
	if seen {
		n++
		id = base + strconv.Itoa(n)
	}
	for o.taken(id) {
		n++
		id = base + strconv.Itoa(n)
	}
	o.counts[base] = n
	o.issued[id] = struct{}{}
	return id
}

func (o *OperationIDs) taken(id string) bool {
	_, ok := o.issued[id]
	return ok
}

// camelCase converts a free-form name into a lowerCamel identifier.
// Example: "Get User by ID" -> "getUserById", "list-items" -> "listItems".
func camelCase(s string) string {
	words := splitWords(s)
	if len(words) == 0 {
		return ""
	}
	title := cases.Title(language.Und)
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(title.String(w))
	}
	return b.String()
}

// splitWords breaks s on separators and case boundaries. An acronym run ends
// before an uppercase letter that starts a lowercase word ("HTTPServer").
func splitWords(s string) []string {
	runes := []rune(s)
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 && unicode.IsUpper(r) {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}
