package merge

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	loopOpenPattern  = regexp.MustCompile(`\{#([A-Za-z_][A-Za-z0-9_]*)\}`)
	imageTagPattern  = regexp.MustCompile(`\{%([A-Za-z_][A-Za-z0-9_]*)\}`)
	inlineTagPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)
)

const maxPlaceholderLength = 120

// coalescePlaceholders rejoins placeholder text that Word split across
// multiple runs, so `{no` + `meDFT}` inside separate w:t elements becomes a
// single matchable {nomeDFT}. Markup between the braces is dropped; a
// placeholder never spans a paragraph boundary.
func coalescePlaceholders(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	i := 0
	for i < len(s) {
		c := s[i]
		if c != '{' {
			out.WriteByte(c)
			i++
			continue
		}

		text, end, hadMarkup, ok := scanPlaceholder(s, i)
		if !ok {
			out.WriteByte(c)
			i++
			continue
		}
		if hadMarkup {
			out.WriteString("{" + text + "}")
		} else {
			out.WriteString(s[i:end])
		}
		i = end
	}
	return out.String()
}

// scanPlaceholder walks forward from an opening brace collecting text
// content until the matching closing brace. It reports the collected inner
// text, the index just past the closing brace, and whether any XML markup
// was skipped along the way.
func scanPlaceholder(s string, start int) (text string, end int, hadMarkup, ok bool) {
	var inner strings.Builder
	i := start + 1
	for i < len(s) {
		switch s[i] {
		case '}':
			return inner.String(), i + 1, hadMarkup, true
		case '{':
			return "", 0, false, false
		case '<':
			close := strings.IndexByte(s[i:], '>')
			if close < 0 {
				return "", 0, false, false
			}
			tag := s[i : i+close+1]
			if strings.HasPrefix(tag, "</w:p>") || strings.HasPrefix(tag, "<w:p ") || tag == "<w:p>" {
				return "", 0, false, false
			}
			hadMarkup = true
			i += close + 1
		default:
			if inner.Len() >= maxPlaceholderLength {
				return "", 0, false, false
			}
			inner.WriteByte(s[i])
			i++
		}
	}
	return "", 0, false, false
}

// scopeStack resolves tag names against nested loop scopes, innermost first.
type scopeStack []map[string]any

func (s scopeStack) resolve(name string) (any, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if value, ok := s[i][name]; ok {
			return value, true
		}
	}
	return nil, false
}

func (s scopeStack) push(scope map[string]any) scopeStack {
	next := make(scopeStack, 0, len(s)+1)
	next = append(next, s...)
	return append(next, scope)
}

// renderScope expands loops, image tags, and inline tags inside content
// against the given scopes. Loops recurse so inner tags see the item scope.
func renderScope(content string, scopes scopeStack, state *renderState) (string, error) {
	expanded, err := expandLoops(content, scopes, state)
	if err != nil {
		return "", err
	}

	var imageErr error
	expanded = imageTagPattern.ReplaceAllStringFunc(expanded, func(tag string) string {
		name := imageTagPattern.FindStringSubmatch(tag)[1]
		replacement, err := state.resolveImage(scopes, name)
		if err != nil && imageErr == nil {
			imageErr = err
		}
		return replacement
	})
	if imageErr != nil {
		return "", imageErr
	}

	expanded = inlineTagPattern.ReplaceAllStringFunc(expanded, func(tag string) string {
		name := inlineTagPattern.FindStringSubmatch(tag)[1]
		value, _ := scopes.resolve(name)
		return escapeValue(value)
	})
	return expanded, nil
}

func expandLoops(content string, scopes scopeStack, state *renderState) (string, error) {
	for {
		loc := loopOpenPattern.FindStringSubmatchIndex(content)
		if loc == nil {
			return content, nil
		}
		name := content[loc[2]:loc[3]]
		closeTag := "{/" + name + "}"
		closeOffset := strings.Index(content[loc[1]:], closeTag)
		if closeOffset < 0 {
			return "", fmt.Errorf("%w: section {#%s} is never closed", ErrRender, name)
		}
		closeStart := loc[1] + closeOffset
		closeEnd := closeStart + len(closeTag)

		// When the opener and closer live in different paragraphs the whole
		// paragraph range loops and the delimiter paragraphs are removed.
		replaceStart, replaceEnd := loc[0], closeEnd
		inner := content[loc[1]:closeStart]
		if openParaStart, openParaEnd, ok := paragraphBounds(content, loc[0]); ok {
			if closeStart >= openParaEnd {
				if closeParaStart, closeParaEnd, ok := paragraphBounds(content, closeStart); ok {
					replaceStart, replaceEnd = openParaStart, closeParaEnd
					inner = content[openParaEnd:closeParaStart]
				}
			}
		}

		value, _ := scopes.resolve(name)
		rendered, err := renderSection(inner, value, scopes, state)
		if err != nil {
			return "", err
		}
		content = content[:replaceStart] + rendered + content[replaceEnd:]
	}
}

func renderSection(inner string, value any, scopes scopeStack, state *renderState) (string, error) {
	switch v := value.(type) {
	case []any:
		var out strings.Builder
		for _, item := range v {
			itemScope, ok := item.(map[string]any)
			if !ok {
				itemScope = map[string]any{}
			}
			rendered, err := renderScope(inner, scopes.push(itemScope), state)
			if err != nil {
				return "", err
			}
			out.WriteString(rendered)
		}
		return out.String(), nil
	case bool:
		if !v {
			return "", nil
		}
		return renderScope(inner, scopes, state)
	case string:
		if strings.TrimSpace(v) == "" {
			return "", nil
		}
		return renderScope(inner, scopes, state)
	case float64:
		if v == 0 {
			return "", nil
		}
		return renderScope(inner, scopes, state)
	case nil:
		return "", nil
	default:
		return renderScope(inner, scopes, state)
	}
}

// paragraphBounds locates the w:p element enclosing the byte offset idx.
func paragraphBounds(s string, idx int) (start, end int, ok bool) {
	start = -1
	for _, opener := range []string{"<w:p>", "<w:p "} {
		if candidate := strings.LastIndex(s[:idx], opener); candidate > start {
			start = candidate
		}
	}
	if start < 0 {
		return 0, 0, false
	}
	closeOffset := strings.Index(s[idx:], "</w:p>")
	if closeOffset < 0 {
		return 0, 0, false
	}
	end = idx + closeOffset + len("</w:p>")
	return start, end, true
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// escapeValue renders a scalar payload value as XML text. Newlines become
// w:br elements so multi-line text survives the merge.
func escapeValue(value any) string {
	text := escapeValueString(value)
	escaped := xmlEscaper.Replace(text)
	return strings.ReplaceAll(escaped, "\n", `</w:t><w:br/><w:t xml:space="preserve">`)
}

func escapeValueString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
