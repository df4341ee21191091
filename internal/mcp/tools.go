package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions. Field names match the JSON layout of the stored
// collections so clients see the same shapes everywhere.

var snippetAddToolDef = mcp.NewTool("snippet_add",
	mcp.WithDescription("Add a snippet. New snippets land at the top of the list. Free tier is limited to a fixed number of snippets unless entitled."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Snippet title.")),
	mcp.WithString("content", mcp.Required(), mcp.Description("Snippet body text.")),
	mcp.WithString("categoryId", mcp.Description("Category id; omit for uncategorized.")),
	mcp.WithBoolean("isFavorite", mcp.Description("Mark as favorite on creation.")),
)

var snippetGetToolDef = mcp.NewTool("snippet_get",
	mcp.WithDescription("Fetch a single snippet by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Snippet id.")),
)

var snippetUpdateToolDef = mcp.NewTool("snippet_update",
	mcp.WithDescription("Update fields of a snippet. Omitted fields are left unchanged."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Snippet id.")),
	mcp.WithString("title", mcp.Description("New title.")),
	mcp.WithString("content", mcp.Description("New body text.")),
	mcp.WithString("categoryId", mcp.Description("New category id; empty string means uncategorized.")),
	mcp.WithBoolean("isFavorite", mcp.Description("New favorite flag.")),
)

var snippetDeleteToolDef = mcp.NewTool("snippet_delete",
	mcp.WithDescription("Delete a snippet by id. The activity log keeps its history."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Snippet id.")),
)

var snippetCopyToolDef = mcp.NewTool("snippet_copy",
	mcp.WithDescription("Record that a snippet was copied: bumps its usage count and last-used time. Unknown ids are ignored."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Snippet id.")),
)

var snippetFavoriteToolDef = mcp.NewTool("snippet_favorite",
	mcp.WithDescription("Toggle the favorite flag on a snippet."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Snippet id.")),
)

var snippetListToolDef = mcp.NewTool("snippet_list",
	mcp.WithDescription("List snippets, newest first. Optionally restrict to a category or to favorites."),
	mcp.WithString("categoryId", mcp.Description("Only snippets in this category; use \"uncategorized\" for uncategorized ones.")),
	mcp.WithBoolean("favorites", mcp.Description("Only favorite snippets.")),
)

var snippetSearchToolDef = mcp.NewTool("snippet_search",
	mcp.WithDescription("Search snippet titles and contents, case-insensitively. An empty query returns nothing."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Text to search for.")),
	mcp.WithString("categoryId", mcp.Description("Restrict matches to this category.")),
	mcp.WithString("sort", mcp.Description("Result order: relevance (default), date, or usage.")),
)

var snippetRecentToolDef = mcp.NewTool("snippet_recent",
	mcp.WithDescription("List recently copied snippets, newest copy first. A snippet copied twice appears twice."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of copy events to consider.")),
)

var categoryAddToolDef = mcp.NewTool("category_add",
	mcp.WithDescription("Create a category."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Category name.")),
	mcp.WithString("color", mcp.Description("Display color, e.g. #007AFF.")),
)

var categoryUpdateToolDef = mcp.NewTool("category_update",
	mcp.WithDescription("Update a category's name or color. Id and icon are immutable."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Category id.")),
	mcp.WithString("name", mcp.Description("New name.")),
	mcp.WithString("color", mcp.Description("New display color.")),
)

var categoryDeleteToolDef = mcp.NewTool("category_delete",
	mcp.WithDescription("Delete a category. Fails while any snippet still references it."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Category id.")),
)

var categoryListToolDef = mcp.NewTool("category_list",
	mcp.WithDescription("List all categories in their display order."),
)
