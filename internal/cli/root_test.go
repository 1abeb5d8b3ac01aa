package cli

import "testing"

func TestCommandRegistration(t *testing.T) {
	want := []string{
		"version", "tasks", "select", "clear", "pin",
		"status", "complete", "pick", "focus", "watch", "mcp",
	}
	registered := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("expected %q command to be registered", name)
		}
	}
}

func TestSetVersionInfo(t *testing.T) {
	origVersion, origCommit, origDate := appVersion, appCommit, appDate
	defer SetVersionInfo(origVersion, origCommit, origDate)

	SetVersionInfo("1.2.3", "abcdef", "2024-05-01")
	if appVersion != "1.2.3" || appCommit != "abcdef" || appDate != "2024-05-01" {
		t.Errorf("version info: %q %q %q", appVersion, appCommit, appDate)
	}
}
