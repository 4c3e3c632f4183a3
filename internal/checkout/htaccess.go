package checkout

import (
	"errors"
	"strings"
)

// ErrNoRewriteBase is returned when an .htaccess file has no "RewriteBase /"
// line to anchor the checkout rules on.
var ErrNoRewriteBase = errors.New(`could not find "RewriteBase /" in .htaccess`)

// insertRewriteRules puts the routes' rule block right after the
// "RewriteBase /" line. changed is false when the block is already present.
func insertRewriteRules(content string, r Routes) (updated string, changed bool, err error) {
	rules := r.RewriteRules()
	if strings.Contains(strings.ReplaceAll(content, "\r\n", "\n"), rules) {
		return content, false, nil
	}

	eol := "\n"
	idx := strings.Index(content, "RewriteBase /\n")
	if idx < 0 {
		idx = strings.Index(content, "RewriteBase /\r\n")
		eol = "\r\n"
	}
	if idx < 0 {
		return "", false, ErrNoRewriteBase
	}
	at := idx + len("RewriteBase /"+eol)
	block := strings.ReplaceAll(rules, "\n", eol) + eol
	return content[:at] + block + content[at:], true, nil
}
