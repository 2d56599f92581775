package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jokarl/lintscope/lint"
	"github.com/jokarl/lintscope/scope"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileSource_Discovery(t *testing.T) {
	root := t.TempDir()
	both := filepath.Join(root, "both")
	yamlOnly := filepath.Join(root, "yaml")
	writeFile(t, filepath.Join(both, PrimaryFile), `disable = ["UnusedResources"]`)
	writeFile(t, filepath.Join(both, SecondaryFile), "enable: [Security]\n")
	writeFile(t, filepath.Join(yamlOnly, SecondaryFile), "disable: [Security]\n")
	if err := os.MkdirAll(filepath.Join(root, "dir", PrimaryFile), 0o755); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource(testRegistry, nil)
	tests := []struct {
		name          string
		dir           string
		wantFile      string
		wantSecondary string
	}{
		{"primary with secondary", both, filepath.Join(both, PrimaryFile), filepath.Join(both, SecondaryFile)},
		{"secondary alone", yamlOnly, filepath.Join(yamlOnly, SecondaryFile), ""},
		{"none", root, "", ""},
		{"directory named like a file", filepath.Join(root, "dir"), "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := src.ConfigFile(tt.dir)
			if file != tt.wantFile {
				t.Fatalf("ConfigFile() = %q, want %q", file, tt.wantFile)
			}
			if file == "" {
				return
			}
			if got := src.Secondary(file); got != tt.wantSecondary {
				t.Errorf("Secondary() = %q, want %q", got, tt.wantSecondary)
			}
		})
	}
}

func TestFileSource_LoadErrors(t *testing.T) {
	root := t.TempDir()
	src := NewFileSource(testRegistry, nil)

	if _, err := src.Load(filepath.Join(root, "missing.hcl")); err == nil {
		t.Error("Load() of missing file returned nil error")
	}
	bad := filepath.Join(root, "lint.json")
	writeFile(t, bad, "{}")
	if _, err := src.Load(bad); err == nil {
		t.Error("Load() of unsupported extension returned nil error")
	}
}

func TestFileSource_Hierarchy(t *testing.T) {
	root := t.TempDir()
	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(root, PrimaryFile), `disable = ["Security"]`)
	writeFile(t, filepath.Join(app, PrimaryFile), `
issue "HardcodedText" {
  override = "error"
}
`)
	writeFile(t, filepath.Join(app, SecondaryFile), "enable: [Security]\n")

	security := &lint.Issue{ID: "SetJavaScriptEnabled", Category: lint.Security, DefaultSeverity: lint.WARNING}
	text := testRegistry.Issue("HardcodedText")

	h := scope.NewHierarchy(NewFileSource(testRegistry, nil), scope.Options{RootDir: root})
	node, err := h.ResolveForFolder(filepath.Join(app, "src", "main"), nil)
	if err != nil {
		t.Fatalf("ResolveForFolder() error = %v", err)
	}
	if got := node.Severity(text); got != lint.ERROR {
		t.Errorf("Severity(HardcodedText) = %s, want ERROR", got)
	}
	if got := node.Severity(security); got != lint.WARNING {
		t.Errorf("Severity(Security issue) = %s, want WARNING from lint.yml", got)
	}
	if parent, _ := h.ResolveForFolder(root, nil); parent.Severity(security) != lint.IGNORE {
		t.Error("root scope should disable Security")
	}
}

func TestFileSource_EditCreatesFile(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "app")
	if err := os.MkdirAll(project, 0o755); err != nil {
		t.Fatal(err)
	}
	issue := testRegistry.Issue("UnusedResources")

	h := scope.NewHierarchy(NewFileSource(testRegistry, nil), scope.Options{RootDir: root})
	node, err := h.ResolveForProject(scope.Project{Name: "app", Dir: project})
	if err != nil {
		t.Fatalf("ResolveForProject() error = %v", err)
	}
	tx, err := node.Edit()
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	tx.SetSeverity("UnusedResources", lint.ERROR)
	tx.Ignore("UnusedResources", "gen/")
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	want := filepath.Join(project, PrimaryFile)
	if node.File() != want {
		t.Fatalf("File() = %q, want %q", node.File(), want)
	}

	fresh := scope.NewHierarchy(NewFileSource(testRegistry, nil), scope.Options{RootDir: root})
	reloaded, err := fresh.ResolveForFolder(project, nil)
	if err != nil {
		t.Fatalf("ResolveForFolder() error = %v", err)
	}
	if got := reloaded.Severity(issue); got != lint.ERROR {
		t.Errorf("reloaded Severity() = %s, want ERROR", got)
	}
	if !reloaded.IsIgnored(issue, filepath.Join(project, "gen", "R.java"), "") {
		t.Error("reloaded scope lost ignore path")
	}
}

func TestFileSource_SaveYAML(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, SecondaryFile)
	src := NewFileSource(testRegistry, nil)

	ds := lint.NewDirectiveSet(lint.Directives{DisabledCategories: lint.NewSet("Icons")})
	got, err := src.Save(root, file, ds)
	if err != nil || got != file {
		t.Fatalf("Save() = %q, %v; want %q, nil", got, err, file)
	}
	loaded, err := src.Load(file)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	icon := &lint.Issue{ID: "IconDensities", Category: lint.Icons, DefaultSeverity: lint.WARNING}
	if !loaded.IsDisabled(icon) {
		t.Error("Icons category not disabled after YAML round trip")
	}
}

func TestDefaultRootDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LINTSCOPE_ROOT", dir+string(filepath.Separator))
	if got := DefaultRootDir(); got != dir {
		t.Errorf("DefaultRootDir() = %q, want %q", got, dir)
	}

	t.Setenv("LINTSCOPE_ROOT", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := DefaultRootDir(); got != home {
		t.Errorf("DefaultRootDir() = %q, want home %q", got, home)
	}
}
