/*
Package wtp reads and edits template arguments in wikitext.

# Arguments

MediaWiki calls the pieces after the template name arguments:

	{{Cite web|url=https://example.org|Example|accessdate=2024-01-01}}

Each argument starts with a one-byte marker ('|', or ':' for the first
argument of a parser function such as {{#if:...}}) followed by either

  - name=value (a keyword argument), or
  - bare content (a positional argument, named by its position).

The separator of a keyword argument is the first '=' that is not inside a
construct nested in the argument. In

	{{t|link=[[page|x=y]]}}

the argument is named "link" and its value is "[[page|x=y]]"; the '=' inside
the link is shielded. Links, templates, parameters, parser functions, tables,
comments and extension tags all shield their content.

Positional arguments are numbered from 1 by counting the preceding positional
siblings of the same template. Keyword siblings do not take a slot:

	{{t|a|k=v|b}}   // "a" is 1, "b" is 2

# Editing

A Document owns the text and every span recorded over it. Arguments, templates
and the other views only remember which span they describe, so they stay
usable after edits anywhere in the document: every read recomputes name,
value and position from the current text.

	doc := wtp.Parse("{{t|a|k=v}}")
	arg := doc.Templates()[0].Arguments()[1]
	_ = arg.SetName("key")    // {{t|a|key=v}}
	_ = arg.SetPositional(true) // {{t|a|v}}

Converting a positional argument to a keyword one needs a name, so
SetPositional(false) on a positional argument fails with ErrInvalidOperation;
use SetName instead.

A Document is not safe for concurrent use.
*/
package wtp
