// Package path implements the JSONPath-like selector used to pull elements
// out of a document by a dotted/bracketed path string, the Go port of
// jbson's path_select/detail::select family: a single recursive function
// consumes the path string from the front, one segment at a time, rather
// than pre-parsing it into a segment slice.
package path

import (
	"strconv"
	"strings"

	"github.com/ikmak/mongo-go-driver/bson"
	"github.com/ikmak/mongo-go-driver/expr"
	"github.com/pkg/errors"
)

// Select evaluates path against doc and returns every matched element, in
// the order the path's brackets and recursion visit them. A path segment
// that matches nothing is not an error; Select only errors on malformed
// path syntax or a runtime failure inside a bracket expression.
func Select(doc *bson.Document, p string) ([]*bson.Element, error) {
	if i := strings.IndexFunc(p, func(r rune) bool { return r != '$' }); i >= 0 {
		p = p[i:]
	} else {
		p = ""
	}

	var out []*bson.Element
	if err := selectDoc(doc, p, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// childDoc returns the document backing e's value, covering both embedded
// documents and arrays (an array is a document keyed by decimal index).
func childDoc(e *bson.Element) (*bson.Document, bool) {
	v := e.Value()
	switch v.Type() {
	case bson.TypeEmbeddedDocument:
		d, ok := v.MutableDocumentOK()
		return d, ok
	case bson.TypeArray:
		a, ok := v.MutableArrayOK()
		if !ok {
			return nil, false
		}
		return a.Document(), true
	}
	return nil, false
}

func appendAll(doc *bson.Document, out *[]*bson.Element) {
	iter := doc.Iterator()
	for iter.Next() {
		*out = append(*out, iter.Element())
	}
}

// selectDoc consumes as much of path as describes a single segment, applies
// it to doc, and recurses on whatever remains.
func selectDoc(doc *bson.Document, p string, out *[]*bson.Element) error {
	if p == "" {
		appendAll(doc, out)
		return nil
	}

	if strings.HasPrefix(p, "@") {
		p = p[1:]
	}
	if !strings.HasPrefix(p, "..") {
		p = strings.TrimLeft(p, ".")
	}
	if p == "" {
		appendAll(doc, out)
		return nil
	}

	if p[0] == '[' {
		end := strings.IndexByte(p, ']')
		if end < 0 {
			return errors.Errorf("path_parse_error: unterminated '[' in %q", p)
		}
		return selectSub(doc, p[end+1:], p[1:end], out)
	}

	recursive := strings.HasPrefix(p, "..")
	stripped := p
	if recursive {
		stripped = p[2:]
	}

	name := stripped
	rest := ""
	if i := strings.IndexAny(stripped, ".["); i >= 0 {
		name = stripped[:i]
		rest = stripped[i:]
	}
	if strings.HasPrefix(rest, ".") && !strings.HasPrefix(rest, "..") {
		rest = rest[1:]
	}

	// The current node's own match is resolved before descending into
	// children, so a ".." path segment reports matches in document
	// pre-order: a node is emitted before any descendant that shares its
	// name (e.g. "$..x" over {"x":1,"a":{"x":2}} yields 1 then 2).
	if err := selectName(doc, rest, name, out); err != nil {
		return err
	}
	if !recursive {
		return nil
	}
	return selectName(doc, p, "..", out)
}

// selectName looks up name within doc. name of "*" or ".." additionally
// triggers recursive descent: every document/array child is searched with
// the same remaining path.
func selectName(doc *bson.Document, rest string, name string, out *[]*bson.Element) error {
	if name == "" {
		return nil
	}

	if name == "*" || name == ".." {
		if rest != "" {
			iter := doc.Iterator()
			for iter.Next() {
				if child, ok := childDoc(iter.Element()); ok {
					if err := selectDoc(child, rest, out); err != nil {
						return err
					}
				}
			}
		} else {
			appendAll(doc, out)
		}
	}

	el, err := doc.Lookup(name)
	if err != nil {
		return nil
	}
	if rest != "" {
		if child, ok := childDoc(el); ok {
			return selectDoc(child, rest, out)
		}
		return nil
	}
	*out = append(*out, el)
	return nil
}

// selectSub handles the contents of a single `[...]`: a comma-separated
// list of quoted names, decimal indices, `*`, or a single `(expr)`/`?(expr)`
// bracket expression.
func selectSub(doc *bson.Document, rest string, subscript string, out *[]*bson.Element) error {
	var matched []*bson.Element

	for subscript != "" {
		if subscript[0] == '(' || subscript[0] == '?' {
			end := strings.IndexByte(subscript, ')')
			if end < 0 {
				return errors.Errorf("path_parse_error: unterminated bracket expression %q", subscript)
			}
			if err := selectExpr(doc, rest, subscript[:end+1], &matched); err != nil {
				return err
			}
			subscript = subscript[end+1:]
		} else {
			name, remainder, err := scanSubscriptName(subscript)
			if err != nil {
				return err
			}
			if err := selectName(doc, rest, name, &matched); err != nil {
				return err
			}
			subscript = remainder
		}

		if subscript != "" && subscript[0] == ',' {
			subscript = subscript[1:]
		}
	}

	appendDedup(out, matched)
	return nil
}

func scanSubscriptName(subscript string) (name, remainder string, err error) {
	switch {
	case subscript[0] == '"' || subscript[0] == '\'':
		quote := subscript[0]
		end := strings.IndexByte(subscript[1:], quote)
		if end < 0 {
			return "", "", errors.Errorf("path_parse_error: unterminated quoted subscript %q", subscript)
		}
		return subscript[1 : 1+end], subscript[1+end+1:], nil
	case subscript[0] >= '0' && subscript[0] <= '9':
		if end := strings.IndexByte(subscript, ','); end >= 0 {
			return subscript[:end], subscript[end:], nil
		}
		return subscript, "", nil
	case subscript[0] == '*':
		return "*", subscript[1:], nil
	}
	return "", "", errors.Errorf("path_parse_error: unexpected subscript token %q", subscript)
}

// selectExpr handles a single `(expr)` computed subscript or `?(expr)`
// filter subscript, whose text (including the delimiters, excluding the
// trailing `]`) is given verbatim in src.
func selectExpr(doc *bson.Document, rest string, src string, out *[]*bson.Element) error {
	if src == "" || src[len(src)-1] != ')' {
		return nil
	}
	body := src[:len(src)-1]

	filter := false
	if strings.HasPrefix(body, "?(") {
		body = body[2:]
		filter = true
	} else if strings.HasPrefix(body, "(") {
		body = body[1:]
	} else {
		return errors.Errorf("path_parse_error: malformed bracket expression %q", src)
	}

	code, err := expr.Compile(body)
	if err != nil {
		return err
	}

	var matched []*bson.Element
	if filter {
		matched, err = filterChildren(doc, code)
		if err != nil {
			return err
		}
	} else {
		name, ok, err := computedName(doc, code)
		if err != nil {
			return err
		}
		if ok {
			if err := selectName(doc, "", name, &matched); err != nil {
				return err
			}
		}
	}

	if rest == "" {
		*out = append(*out, matched...)
		return nil
	}
	for _, e := range matched {
		if child, ok := childDoc(e); ok {
			if err := selectDoc(child, rest, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// computedName evaluates code against doc and coerces the result to a
// subscript name per the computed-subscript coercion rule: int64 becomes
// its decimal string, string is used verbatim. Any other result kind
// produces no subscript.
func computedName(doc *bson.Document, code []expr.Instr) (string, bool, error) {
	v, err := expr.Eval(code, doc, Select)
	if err != nil {
		return "", false, err
	}
	switch v.Kind {
	case expr.KindInt:
		return strconv.FormatInt(v.Int, 10), true
	case expr.KindString:
		return v.Str, true
	}
	return "", false, nil
}

// filterChildren evaluates code once per immediate child of doc, with the
// child itself as the expression's root document when it is a container;
// non-container children evaluate to false and are skipped.
func filterChildren(doc *bson.Document, code []expr.Instr) ([]*bson.Element, error) {
	var matched []*bson.Element

	iter := doc.Iterator()
	for iter.Next() {
		e := iter.Element()

		child, isContainer := childDoc(e)
		if !isContainer {
			continue
		}

		v, err := expr.Eval(code, child, Select)
		if err != nil {
			return nil, err
		}

		switch v.Kind {
		case expr.KindBool:
			if v.Bool {
				matched = append(matched, e)
			}
		case expr.KindInt:
			if e.Key() == strconv.FormatInt(v.Int, 10) {
				matched = append(matched, e)
			}
		case expr.KindString:
			if e.Key() == v.Str {
				matched = append(matched, e)
			}
		case expr.KindElement:
			matched = append(matched, e)
		}
	}

	return matched, nil
}

// appendDedup appends src to out, skipping any element already present in
// out and any later duplicate within src itself, per the bracket-list
// duplicate policy. Document.Lookup and Iterator both hand out the same
// *Element pointer for the same underlying slot, so pointer identity is
// exactly the "same byte offset within the same backing buffer" the policy
// calls for.
func appendDedup(out *[]*bson.Element, src []*bson.Element) {
	seen := make(map[*bson.Element]struct{}, len(*out)+len(src))
	for _, e := range *out {
		seen[e] = struct{}{}
	}
	for _, e := range src {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		*out = append(*out, e)
	}
}
