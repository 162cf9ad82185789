package focus

import "testing"

func TestIsIgnored(t *testing.T) {
	patterns := []string{".git/**", "node_modules/**", "*.log", "*.swp", "build/*.o"}

	tests := []struct {
		path string
		want bool
	}{
		{".git/HEAD", true},
		{".git", true},
		{"node_modules/pkg/index.js", true},
		{"logs/app.log", true},
		{".main.go.swp", true},
		{"build/x.o", true},
		{"build/sub/x.o", false},
		{"main.go", false},
		{"internal/.gitignore", false},
		{"gitlog/readme.md", false},
	}

	for _, tt := range tests {
		if got := IsIgnored(patterns, tt.path); got != tt.want {
			t.Errorf("IsIgnored(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
