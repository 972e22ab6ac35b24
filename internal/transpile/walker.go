package transpile

import (
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/postman2openapi/internal/collection"
	"github.com/sirupsen/logrus"
)

const defaultFolderName = "<folder>"

// tagStack is the chain of folder names above the item being visited. push
// returns a new stack so sibling scopes never share a backing array.
type tagStack []string

func (s tagStack) push(name string) tagStack {
	next := make(tagStack, len(s), len(s)+1)
	copy(next, s)
	return append(next, name)
}

// walk visits items in input order. Folders register a tag and recurse with
// their name pushed; leaves become operations tagged with the current stack.
func (st *state) walk(items []collection.Item, stack tagStack) error {
	for i := range items {
		if err := st.ctx.Err(); err != nil {
			return err
		}
		item := &items[i]
		if item.IsFolder() {
			name := item.Name
			if name == "" {
				name = defaultFolderName
			}
			st.doc.Tags = append(st.doc.Tags, &openapi3.Tag{
				Name:        name,
				Description: st.resolver.Resolve(item.Description.Text()),
			})
			st.log.WithFields(logrus.Fields{"folder": name, "depth": len(stack) + 1}).Debug("entering folder")
			if err := st.walk(item.Items, stack.push(name)); err != nil {
				return err
			}
			continue
		}
		st.buildOperation(item, stack)
	}
	return nil
}
