package core

import "testing"

func TestExtractComponents(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantOK     bool
		wantStatus string
		wantBody   string
		wantAnchor string
	}{
		{
			name:       "open checkbox",
			line:       "- [ ] Write report",
			wantOK:     true,
			wantStatus: " ",
			wantBody:   "Write report",
		},
		{
			name:       "done lowercase",
			line:       "- [x] Ship it",
			wantOK:     true,
			wantStatus: "x",
			wantBody:   "Ship it",
		},
		{
			name:       "done uppercase preserved",
			line:       "- [X] Ship it",
			wantOK:     true,
			wantStatus: "X",
			wantBody:   "Ship it",
		},
		{
			name:       "indented star bullet",
			line:       "    * [ ] Nested task",
			wantOK:     true,
			wantStatus: " ",
			wantBody:   "Nested task",
		},
		{
			name:       "ordered list item",
			line:       "3. [ ] Numbered task",
			wantOK:     true,
			wantStatus: " ",
			wantBody:   "Numbered task",
		},
		{
			name:       "trailing block anchor stripped",
			line:       "- [ ] Write report 📅 2024-05-01 ^abc1",
			wantOK:     true,
			wantStatus: " ",
			wantBody:   "Write report 📅 2024-05-01",
			wantAnchor: "abc1",
		},
		{
			name:       "anchor with hyphens",
			line:       "- [ ] Task ^a1-b2",
			wantOK:     true,
			wantStatus: " ",
			wantBody:   "Task",
			wantAnchor: "a1-b2",
		},
		{
			name:     "bare list item has empty status",
			line:     "- just a bullet",
			wantOK:   true,
			wantBody: "just a bullet",
		},
		{
			name:   "plain text is not a list item",
			line:   "Write report",
			wantOK: false,
		},
		{
			name:   "heading is not a list item",
			line:   "## Tasks",
			wantOK: false,
		},
		{
			name:   "empty line",
			line:   "",
			wantOK: false,
		},
		{
			name:       "caret mid-line is not an anchor",
			line:       "- [ ] uses ^caret notation here",
			wantOK:     true,
			wantStatus: " ",
			wantBody:   "uses ^caret notation here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := ExtractComponents(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ExtractComponents(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if c.StatusMarker != tt.wantStatus {
				t.Errorf("status = %q, want %q", c.StatusMarker, tt.wantStatus)
			}
			if c.Body != tt.wantBody {
				t.Errorf("body = %q, want %q", c.Body, tt.wantBody)
			}
			if c.BlockAnchor != tt.wantAnchor {
				t.Errorf("anchor = %q, want %q", c.BlockAnchor, tt.wantAnchor)
			}
		})
	}
}

func TestExtractComponentsIsPure(t *testing.T) {
	line := "- [ ] Same input 📅 2024-01-02 ^zz99"
	first, ok1 := ExtractComponents(line)
	second, ok2 := ExtractComponents(line)
	if ok1 != ok2 || first != second {
		t.Fatalf("repeated extraction differed: %+v vs %+v", first, second)
	}
}
