package snippet

import "testing"

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()

	if len(cats) != 7 {
		t.Fatalf("len(DefaultCategories()) = %d, want 7", len(cats))
	}

	// Fixed ids must stay stable: persisted snippets reference them.
	wantIDs := []string{"personal", "work", "finance", "travel", "addresses", "social", "other"}
	for i, want := range wantIDs {
		if cats[i].ID != want {
			t.Errorf("cats[%d].ID = %q, want %q", i, cats[i].ID, want)
		}
		if cats[i].Name == "" {
			t.Errorf("cats[%d].Name is empty", i)
		}
		if cats[i].Color == "" {
			t.Errorf("cats[%d].Color is empty", i)
		}
	}

	if cats[1].Color != "#007AFF" {
		t.Errorf("work color = %q, want #007AFF", cats[1].Color)
	}
}

func TestMatches(t *testing.T) {
	s := &Snippet{
		Title:   "SSH Config",
		Content: "Host prod\n  HostName 10.0.0.1",
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"title match lowercase", "ssh", true},
		{"title match mixed case", "Ssh CoNfIg", true},
		{"content match", "hostname", true},
		{"content substring", "10.0.0", true},
		{"no match", "kubernetes", false},
		{"query longer than fields", "ssh config file for production", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Matches(tt.query); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
