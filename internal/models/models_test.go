package models

import (
	"encoding/json"
	"testing"
)

func TestBookDetail(t *testing.T) {
	t.Run("Kind", func(t *testing.T) {
		tests := []struct {
			name   string
			detail BookDetail
			want   DetailKind
		}{
			{name: "catalog only", detail: BookDetail{Book: Book{ID: 1}}, want: CatalogOnly},
			{name: "shelved", detail: BookDetail{Book: Book{ID: 1}, UserBook: &UserBook{ID: 9}}, want: Shelved},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := tt.detail.Kind(); got != tt.want {
					t.Errorf("Kind() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("decodes API payload", func(t *testing.T) {
		payload := `{
			"book": {"id": 3, "title": "Dune", "author": "Frank Herbert", "publishedDate": "1965-08-01"},
			"userBook": {"id": 12, "progress": 40, "currentPage": 8, "status": "READING", "updatedAt": "2024-03-01T10:15:30"}
		}`

		var detail BookDetail
		if err := json.Unmarshal([]byte(payload), &detail); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}

		if detail.Kind() != Shelved {
			t.Fatalf("expected shelved detail")
		}
		if detail.UserBook.CurrentPage != 8 || detail.UserBook.Status != StatusReading {
			t.Errorf("unexpected user book: %+v", detail.UserBook)
		}
		if detail.UserBook.RecordID() != "12" {
			t.Errorf("RecordID() = %q, want 12", detail.UserBook.RecordID())
		}
		if detail.Book.PublishedAt == nil || detail.Book.PublishedAt.Year() != 1965 {
			t.Errorf("published date not decoded: %+v", detail.Book.PublishedAt)
		}
		if detail.UserBook.UpdatedAt.Hour() != 10 {
			t.Errorf("updatedAt not decoded: %v", detail.UserBook.UpdatedAt)
		}
	})

	t.Run("null userBook is catalog only", func(t *testing.T) {
		var detail BookDetail
		if err := json.Unmarshal([]byte(`{"book": {"id": 3}, "userBook": null}`), &detail); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if detail.Kind() != CatalogOnly {
			t.Errorf("Kind() = %v, want catalog", detail.Kind())
		}
	})
}

func TestTimestamp(t *testing.T) {
	var ts Timestamp
	if err := ts.UnmarshalJSON([]byte(`"not a date"`)); err == nil {
		t.Error("expected error for invalid timestamp")
	}
	if err := ts.UnmarshalJSON([]byte(`null`)); err != nil {
		t.Errorf("null should decode to zero value: %v", err)
	}
	if !ts.IsZero() {
		t.Errorf("expected zero timestamp, got %v", ts)
	}
}

func TestUserHasRole(t *testing.T) {
	var u User
	if err := json.Unmarshal([]byte(`{"username": "ada", "roles": ["ROLE_USER", {"name": "admin"}]}`), &u); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	tests := []struct {
		role string
		want bool
	}{
		{"user", true},
		{"ROLE_ADMIN", true},
		{"editor", false},
	}

	for _, tt := range tests {
		if got := u.HasRole(tt.role); got != tt.want {
			t.Errorf("HasRole(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestTheme(t *testing.T) {
	t.Run("ParseTheme", func(t *testing.T) {
		for _, name := range []string{"light", "Sepia", " dark "} {
			if _, err := ParseTheme(name); err != nil {
				t.Errorf("ParseTheme(%q) unexpected error: %v", name, err)
			}
		}
		if _, err := ParseTheme("neon"); err == nil {
			t.Error("expected error for unknown theme")
		}
	})

	t.Run("Next cycles", func(t *testing.T) {
		theme := ThemeLight
		seen := []Theme{theme}
		for range len(Themes) {
			theme = theme.Next()
			seen = append(seen, theme)
		}
		want := []Theme{ThemeLight, ThemeSepia, ThemeDark, ThemeLight}
		for i := range want {
			if seen[i] != want[i] {
				t.Fatalf("cycle = %v, want %v", seen, want)
			}
		}
	})
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{in: "explain", want: ActionExplain},
		{in: "TRANSLATE", want: ActionTranslate},
		{in: "summarize", want: ActionSummary},
		{in: "summary", want: ActionSummary},
		{in: "rewrite", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAction(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseAction(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
