package snippet

import "time"

// CategoryUncategorized is the sentinel category for snippets whose category
// was never set or no longer resolves.
const CategoryUncategorized = "uncategorized"

// DefaultCategoryIcon is assigned to user-created categories.
const DefaultCategoryIcon = "folder"

// Snippet represents a saved piece of text.
// Content may carry inline markup (bold/italic/code/...); it is stored and
// returned verbatim and never interpreted here.
type Snippet struct {
	// ID is a ULID that uniquely identifies this snippet
	ID string `json:"id"`

	// Title is the user-facing name, non-empty after trimming
	Title string `json:"title"`

	// Content is the snippet body, non-empty after trimming
	Content string `json:"content"`

	// CategoryID references a Category at write time. Categories can be
	// deleted out from under old snippets in import flows, so readers must
	// treat a dangling reference as uncategorized rather than erroring.
	CategoryID string `json:"categoryId"`

	// DateCreated is set once at creation
	DateCreated time.Time `json:"dateCreated"`

	// DateModified is bumped on every field edit, but not by usage tracking
	// or favorite toggles
	DateModified time.Time `json:"dateModified"`

	// IsFavorite is an independently toggleable flag
	IsFavorite bool `json:"isFavorite"`

	// UsageCount counts copy events; it never decreases
	UsageCount int `json:"usageCount"`

	// LastUsed is the timestamp of the most recent copy event (nullable)
	LastUsed *time.Time `json:"lastUsed"`
}

// Category is a user-defined grouping for snippets.
// Color and icon are display attributes stored verbatim.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Action identifies the kind of event recorded in the activity log.
type Action string

const (
	ActionCreated Action = "created"
	ActionEdited  Action = "edited"
	ActionDeleted Action = "deleted"
	ActionCopied  Action = "copied"
)

// ActivityRecord is one entry in the append-only activity log.
// The referenced snippet may no longer exist; records are never cleaned up
// when a snippet is deleted.
type ActivityRecord struct {
	SnippetID string    `json:"snippetId"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// DefaultCategories returns the built-in category set used to seed a fresh
// store. Built-in categories carry fixed ids; they have no special deletion
// protection beyond the usual referencing-snippet rule.
func DefaultCategories() []Category {
	return []Category{
		{ID: "personal", Name: "Personal", Color: "#5856D6", Icon: "user"},
		{ID: "work", Name: "Work", Color: "#007AFF", Icon: "briefcase"},
		{ID: "finance", Name: "Finance", Color: "#34C759", Icon: "credit-card"},
		{ID: "travel", Name: "Travel", Color: "#FF9500", Icon: "map-pin"},
		{ID: "addresses", Name: "Addresses", Color: "#FF2D55", Icon: "home"},
		{ID: "social", Name: "Social", Color: "#5AC8FA", Icon: "share-2"},
		{ID: "other", Name: "Other", Color: "#8E8E93", Icon: "more-horizontal"},
	}
}
