package nofix

import (
	"fmt"
	"strings"

	"github.com/gnolang/wtp"
)

const nofixPrefix = "wtp:nofix"

// Manager manages nofix scopes and checks if a template is exempt from a
// rewrite rule.
type Manager struct {
	scopes []nofixScope
}

// nofixScope is a template, or the whole page when tpl is nil, where
// nofix applies.
type nofixScope struct {
	rules map[string]struct{}
	tpl   *wtp.Template
}

// ParseComments collects the nofix comments of doc.
//
// A comment before any other content applies to the whole page. A comment
// inside a template applies to the innermost template holding it. A comment
// followed by a template with only whitespace between applies to that
// template. Any other nofix comment has no effect.
func ParseComments(doc *wtp.Document) *Manager {
	manager := &Manager{}
	templates := doc.Templates()
	text := doc.String()

	for _, c := range doc.Comments() {
		ns, err := parseComment(c, templates, text)
		if err != nil {
			// ignore invalid nofix comments
			continue
		}
		manager.scopes = append(manager.scopes, ns)
	}
	return manager
}

func parseComment(c *wtp.Comment, templates []*wtp.Template, text string) (nofixScope, error) {
	var ns nofixScope
	body := c.Text()
	if !strings.HasPrefix(body, nofixPrefix) {
		return ns, fmt.Errorf("not a nofix comment")
	}

	// A nofix comment can either have a list of rules after a colon (:)
	// or if no rules are specified, it applies to all rules
	rest := body[len(nofixPrefix):]
	if len(rest) > 0 && rest[0] != ':' {
		return ns, fmt.Errorf("invalid nofix comment format")
	}
	if len(rest) > 0 {
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return ns, fmt.Errorf("invalid nofix comment: no rules specified after colon")
		}
	}
	ns.rules = parseRuleNames(rest)

	span := c.Span()
	if strings.TrimSpace(text[:span.Start]) == "" {
		return ns, nil
	}

	// inline: the innermost template holding the comment
	for _, tpl := range templates {
		s := tpl.Span()
		if s.Start < span.Start && span.End <= s.End {
			ns.tpl = tpl
		}
	}
	if ns.tpl != nil {
		return ns, nil
	}

	// standalone: the template right after the comment
	for _, tpl := range templates {
		s := tpl.Span()
		if s.Start >= span.End && strings.TrimSpace(text[span.End:s.Start]) == "" {
			ns.tpl = tpl
			return ns, nil
		}
	}
	return ns, fmt.Errorf("nofix comment applies to nothing")
}

// parseRuleNames parses the comma separated rule list of a nofix comment.
func parseRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	for _, rule := range strings.Split(text, ",") {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

// IsNofix reports whether tpl is exempt from the rule called ruleName.
func (m *Manager) IsNofix(tpl *wtp.Template, ruleName string) bool {
	for _, ns := range m.scopes {
		if ns.tpl != nil && !ns.tpl.SameAs(tpl) {
			continue
		}
		// If the rules list is empty, nofix applies to all rules
		if len(ns.rules) == 0 {
			return true
		}
		if _, exists := ns.rules[ruleName]; exists {
			return true
		}
	}
	return false
}
