// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func allIds() []Id {
	return []Id{
		ConfigNotFoundId,
		ConfigInvalidId,
		InvalidSettingId,
		UnknownInstallerTypeId,
		PackageNotAllowedId,
		VersionNotAllowedId,
		ToolNotFoundId,
		ExecutionFailedId,
		ExecutionTimedOutId,
		OperationInterruptedId,
	}
}

func TestId_Constants(t *testing.T) {
	seen := make(map[Id]bool)
	for _, id := range allIds() {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}

	if ConfigNotFoundId != 1 {
		t.Errorf("ConfigNotFoundId = %d, want 1", ConfigNotFoundId)
	}
}

func TestGet(t *testing.T) {
	for _, id := range allIds() {
		issue := Get(id)
		if issue == nil {
			t.Fatalf("Get(%d) returned nil", id)
		}
		if issue.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, issue.Id())
		}
		if strings.TrimSpace(string(issue.MarkdownMsg())) == "" {
			t.Errorf("Get(%d).MarkdownMsg() is empty", id)
		}
	}

	if Get(Id(999)) != nil {
		t.Error("Get(999) should return nil")
	}
}

func TestValues(t *testing.T) {
	values := Values()
	if len(values) != len(allIds()) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), len(allIds()))
	}
	for i, issue := range values {
		if issue.Id() != allIds()[i] {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, issue.Id(), allIds()[i])
		}
	}
}

func TestIssue_ExtLinks_Clone(t *testing.T) {
	issue := Get(ToolNotFoundId)
	links := issue.ExtLinks()
	if len(links) == 0 {
		t.Fatal("ToolNotFound issue should carry install links")
	}

	links[0] = "https://example.invalid"
	if issue.ExtLinks()[0] == "https://example.invalid" {
		t.Error("ExtLinks() should return a copy")
	}
}

func TestIssue_Markdown(t *testing.T) {
	withLinks := Get(ToolNotFoundId).Markdown()
	if !strings.Contains(withLinks, "## See also") || !strings.Contains(withLinks, "- <https://brew.sh/>") {
		t.Errorf("Markdown() = %q, want a See also section", withLinks)
	}

	noLinks := Get(PackageNotAllowedId).Markdown()
	if strings.Contains(noLinks, "See also") {
		t.Errorf("Markdown() = %q, want no See also section", noLinks)
	}
}

func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	var gotStyle, gotInput string
	render = func(in string, stylePath string) (string, error) {
		gotInput = in
		gotStyle = stylePath
		return "rendered", nil
	}

	out, err := Get(VersionNotAllowedId).Render("dark")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "rendered" {
		t.Errorf("Render() = %q, want %q", out, "rendered")
	}
	if gotStyle != "dark" {
		t.Errorf("style = %q, want %q", gotStyle, "dark")
	}
	if !strings.Contains(gotInput, "Version not allowed") {
		t.Errorf("render input = %q, want the issue Markdown", gotInput)
	}
}

func TestAllIssuesAreRenderable(t *testing.T) {
	for _, issue := range Values() {
		out, err := issue.Render("notty")
		if err != nil {
			t.Errorf("Render(%d) error = %v", issue.Id(), err)
			continue
		}
		if strings.TrimSpace(out) == "" {
			t.Errorf("Render(%d) produced empty output", issue.Id())
		}
	}
}
