// Package checkout derives the public checkout routes of a deployment and
// writes them into the files that serve them: the checkout .env file, the
// Apache .htaccess rewrite rules and the PAY_PATH / NOTIFY_PATH declarations.
package checkout

import (
	"errors"
	"fmt"
	"strings"
)

// Routes names a deployment's checkout endpoints. All paths share the prefix
// "/{Base}pay/" and end with Suffix.
type Routes struct {
	Base   string
	Suffix string
}

// Validate checks that both parts are non-empty and usable inside a URL path
// segment and a rewrite pattern.
func (r Routes) Validate() error {
	if r.Base == "" {
		return errors.New("base name cannot be empty")
	}
	if r.Suffix == "" {
		return errors.New("suffix cannot be empty")
	}
	for _, part := range []string{r.Base, r.Suffix} {
		if strings.ContainsAny(part, "/\\ \t\r\n$^()[]{}*+?|.") {
			return fmt.Errorf("invalid route part %q: only plain path characters are allowed", part)
		}
	}
	return nil
}

func (r Routes) prefix() string { return "/" + r.Base + "pay/" }

func (r Routes) PayPath() string     { return r.prefix() + "pay" + r.Suffix }
func (r Routes) NotifyPath() string  { return r.prefix() + "notify" + r.Suffix }
func (r Routes) SuccessPath() string { return r.prefix() + "success" + r.Suffix }
func (r Routes) CancelPath() string  { return r.prefix() + "cancel" + r.Suffix }

// RewriteRules returns the Apache rules mapping the routes onto the checkout
// application, one rule per line.
func (r Routes) RewriteRules() string {
	p := r.Base + "pay/"
	lines := []string{
		"RewriteRule ^" + p + "pay" + r.Suffix + "$ checkout/checkout.php [QSA,PT,L]",
		"RewriteRule ^" + p + "notify" + r.Suffix + "$ /checkout/pay/stckWebhook [QSA,PT,L]",
		"RewriteRule ^" + p + "success" + r.Suffix + "$ /checkout/pay/stckSuccess [QSA,PT,L]",
		"RewriteRule ^" + p + "cancel" + r.Suffix + "$ /checkout/pay/stckCancel [QSA,PT,L]",
		"RewriteRule ^" + p + "(.*)$ checkout/$1 [QSA,PT,L]",
	}
	return strings.Join(lines, "\n")
}
