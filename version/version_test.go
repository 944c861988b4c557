package version

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" {
		t.Error("version must never be empty")
	}
}

func TestShortContainsVersion(t *testing.T) {
	if !strings.Contains(Short(), Get().Version) {
		t.Errorf("Short() = %q does not contain version %q", Short(), Get().Version)
	}
}

func TestShortWithLdflags(t *testing.T) {
	oldVersion, oldCommit := Version, GitCommit
	defer func() { Version, GitCommit = oldVersion, oldCommit }()

	Version = "v1.2.3"
	GitCommit = "abc1234"

	got := Short()
	if !strings.HasPrefix(got, "v1.2.3-abc1234") {
		t.Errorf("Short() = %q", got)
	}
}
