// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestValues_OrderedAndComplete(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != len(issues) {
		t.Fatalf("Values() returned %d issues, catalogue has %d", len(values), len(issues))
	}
	for i, is := range values {
		if want := Id(i + 1); is.Id() != want {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, is.Id(), want)
		}
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	is := Get(InvalidJSONEnvFileId)
	if is == nil {
		t.Fatal("Get(InvalidJSONEnvFileId) returned nil")
	}
	if !strings.Contains(string(is.MarkdownMsg()), "flat object") {
		t.Errorf("unexpected markdown: %s", is.MarkdownMsg())
	}

	if Get(Id(999)) != nil {
		t.Error("Get(999) should return nil")
	}
}

func TestIssue_LinksAreCopies(t *testing.T) {
	t.Parallel()

	is := &Issue{id: TaskNotFoundId, docLinks: []HttpLink{"https://example.com/a"}}
	links := is.DocLinks()
	links[0] = "changed"

	if is.DocLinks()[0] != "https://example.com/a" {
		t.Error("DocLinks() exposed the internal slice")
	}
	if len(is.ExtLinks()) != 0 {
		t.Error("ExtLinks() should be empty")
	}
}

func TestAllIssuesAreRenderable(t *testing.T) {
	t.Parallel()

	for _, is := range Values() {
		if strings.TrimSpace(string(is.MarkdownMsg())) == "" {
			t.Errorf("issue %d has no content", is.Id())
			continue
		}

		out, err := is.Render("notty")
		if err != nil {
			t.Errorf("issue %d failed to render: %v", is.Id(), err)
			continue
		}
		if strings.TrimSpace(out) == "" {
			t.Errorf("issue %d rendered empty output", is.Id())
		}
	}
}

func TestIssue_RenderWithLinks(t *testing.T) {
	t.Parallel()

	is := &Issue{
		id:       ConfigLoadFailedId,
		mdMsg:    "# Title",
		docLinks: []HttpLink{"https://example.com/docs"},
		extLinks: []HttpLink{"https://example.com/ext"},
	}

	out, err := is.Render("notty")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	for _, want := range []string{"See also", "example.com/docs", "example.com/ext"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() output missing %q:\n%s", want, out)
		}
	}
}
