package mail

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultTemplates covers every Kind so LoadTemplates always returns a
// usable map even when dir is absent (first run, tests, cmd/vaultseed).
var defaultTemplates = map[Kind]Template{
	KindPending: {
		Subject: "Registration received",
		Text:    "Hi {{.Login}},\n\nYour account is pending approval. We'll email you once it's reviewed.\n",
	},
	KindRegister: {
		Subject: "Account approved",
		Text:    "Hi {{.Login}},\n\nYour account has been approved. Use this token to set your password: {{.SetPasswordToken}}\nThen sign in at {{.BaseURL}}.\n",
	},
	KindRecover: {
		Subject: "Password reset",
		Text:    "Hi {{.Login}},\n\nUse this token to set a new password: {{.SetPasswordToken}}\nVisit {{.BaseURL}} to continue.\n",
	},
	KindRejected: {
		Subject: "Registration rejected",
		Text:    "Hi {{.Login}},\n\nYour registration request was not approved.\n",
	},
}

// LoadTemplates reads {dir}/{kind}.txt (mandatory) and {dir}/{kind}.html
// (optional) for each known Kind, falling back to defaultTemplates for
// any kind whose text file is absent. A text template is mandatory;
// an HTML template is optional — applied per file rather than per
// process, so an operator can override one kind without shipping all
// four.
func LoadTemplates(dir string) (map[Kind]Template, error) {
	out := make(map[Kind]Template, len(defaultTemplates))
	for kind, fallback := range defaultTemplates {
		tmpl := fallback
		textPath := filepath.Join(dir, string(kind)+".txt")
		if text, err := os.ReadFile(textPath); err == nil {
			tmpl.Text = string(text)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("mail: read %s: %w", textPath, err)
		}
		htmlPath := filepath.Join(dir, string(kind)+".html")
		if html, err := os.ReadFile(htmlPath); err == nil {
			tmpl.HTML = string(html)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("mail: read %s: %w", htmlPath, err)
		}
		out[kind] = tmpl
	}
	return out, nil
}
