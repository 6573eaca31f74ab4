package billingresp

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

// errorElementPattern matches an <error ...>text</error> element whose content is plain text.
var errorElementPattern = regexp.MustCompile(`<error(\s[^>]*)?>([^<]*)</error>`)

// errorFragmentPattern finds an error element inside a body that is not a well-formed document.
var errorFragmentPattern = regexp.MustCompile(`(?s)<error(\s[^>]*)?(/>|>.*?</error>)`)

// rewriteErrorMarkup moves the inline text of error elements into a nested <text> element so
// that the tree conversion sees both the attributes and the message.
func rewriteErrorMarkup(body string) string {
	return errorElementPattern.ReplaceAllString(body, `<error$1><text>$2</text></error>`)
}

// parseFallbackXML decodes a raw XML body into the same loose shape a structured decoder
// produces: {rootTag: {attr: "...", child: ..., repeatedChild: [...]}}.
// Only a body that starts with markup is read as a whole document. Any other body, such as
// JSON quoting a tag inside a string, is searched for an <error> fragment only.
// It returns nil when no XML document or error fragment can be found.
func parseFallbackXML(raw string) map[string]any {
	body := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "\ufeff"))
	if body == "" || !strings.Contains(body, "<") {
		return nil
	}
	body = rewriteErrorMarkup(body)
	if strings.HasPrefix(body, "<") {
		if out := readXMLDocument(body); out != nil {
			return out
		}
	}
	frag := errorFragmentPattern.FindString(body)
	if frag == "" {
		return nil
	}
	return readXMLDocument(frag)
}

func readXMLDocument(body string) map[string]any {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromString(body); err != nil {
		return nil
	}
	root := doc.Root()
	if root == nil {
		return nil
	}
	return map[string]any{root.Tag: elementValue(root)}
}

func elementValue(e *etree.Element) any {
	children := e.ChildElements()
	if len(e.Attr) == 0 && len(children) == 0 {
		text := strings.TrimSpace(e.Text())
		if text == "" {
			return nil
		}
		return text
	}
	out := make(map[string]any, len(e.Attr)+len(children))
	for _, a := range e.Attr {
		if a.Space == "xmlns" || a.Key == "xmlns" {
			continue
		}
		out[a.Key] = a.Value
	}
	seen := make(map[string]int, len(children))
	for _, c := range children {
		v := elementValue(c)
		seen[c.Tag]++
		switch n := seen[c.Tag]; {
		case n == 1:
			out[c.Tag] = v
		case n == 2:
			out[c.Tag] = []any{out[c.Tag], v}
		default:
			out[c.Tag] = append(out[c.Tag].([]any), v)
		}
	}
	return out
}

// splitAuxCodes fills fieldName and errorType from "fieldName:errorType" auxCode values.
func splitAuxCodes(root Node) Node {
	errs := root.Get(KeyErrors)
	if !errs.IsSeq() {
		return root
	}
	items := make([]Node, len(errs.items))
	for i, rec := range errs.items {
		items[i] = rec
		aux := rec.Get(KeyAuxCode)
		if aux.Kind() != KindString {
			continue
		}
		field, errType, ok := strings.Cut(aux.str, ":")
		if !ok {
			continue
		}
		items[i] = rec.With(KeyFieldName, Str(field)).With(KeyErrorType, Str(errType))
	}
	return root.With(KeyErrors, NewSeq(items...))
}
