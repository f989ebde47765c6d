package mail_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sampleforge/vault/internal/mail"
)

func TestLoadTemplatesFallsBackToDefaultsWhenDirEmpty(t *testing.T) {
	templates, err := mail.LoadTemplates(t.TempDir())
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	for _, kind := range []mail.Kind{mail.KindPending, mail.KindRegister, mail.KindRecover, mail.KindRejected} {
		tmpl, ok := templates[kind]
		if !ok {
			t.Fatalf("expected a default template for kind %q", kind)
		}
		if tmpl.Text == "" {
			t.Errorf("default template for %q has no text body", kind)
		}
	}
}

func TestLoadTemplatesOverridesOneKindWithoutAffectingOthers(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "recover.txt"), []byte("custom recovery for {{.Login}}"), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	templates, err := mail.LoadTemplates(dir)
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	if templates[mail.KindRecover].Text != "custom recovery for {{.Login}}" {
		t.Errorf("recover template not overridden: %q", templates[mail.KindRecover].Text)
	}
	if templates[mail.KindPending].Text == "" {
		t.Error("pending template should still fall back to its default")
	}
}
