package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/snipstash/snipstash/internal/errors"
	"github.com/snipstash/snipstash/internal/query"
	"github.com/snipstash/snipstash/internal/snippet"
	"github.com/snipstash/snipstash/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	repo   *store.Repository
	engine *query.Engine
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(repo *store.Repository) *Handlers {
	return &Handlers{repo: repo, engine: query.NewEngine(repo)}
}

// Request types for each tool

// SnippetAddRequest represents the arguments for snippet_add.
type SnippetAddRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID string `json:"categoryId,omitempty"`
	IsFavorite bool   `json:"isFavorite,omitempty"`
}

// SnippetGetRequest represents the arguments for snippet_get.
type SnippetGetRequest struct {
	ID string `json:"id"`
}

// SnippetUpdateRequest represents the arguments for snippet_update.
type SnippetUpdateRequest struct {
	ID         string  `json:"id"`
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
	CategoryID *string `json:"categoryId,omitempty"`
	IsFavorite *bool   `json:"isFavorite,omitempty"`
}

// SnippetListRequest represents the arguments for snippet_list.
type SnippetListRequest struct {
	CategoryID string `json:"categoryId,omitempty"`
	Favorites  bool   `json:"favorites,omitempty"`
}

// SnippetSearchRequest represents the arguments for snippet_search.
type SnippetSearchRequest struct {
	Query      string `json:"query"`
	CategoryID string `json:"categoryId,omitempty"`
	Sort       string `json:"sort,omitempty"`
}

// SnippetRecentRequest represents the arguments for snippet_recent.
type SnippetRecentRequest struct {
	Limit int `json:"limit,omitempty"`
}

// CategoryAddRequest represents the arguments for category_add.
type CategoryAddRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// CategoryUpdateRequest represents the arguments for category_update.
type CategoryUpdateRequest struct {
	ID    string  `json:"id"`
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// Handler implementations

// HandleSnippetAdd handles the snippet_add tool call.
func (h *Handlers) HandleSnippetAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnippetAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.repo.AddSnippet(ctx, store.AddSnippetInput{
		Title:      input.Title,
		Content:    input.Content,
		CategoryID: input.CategoryID,
		IsFavorite: input.IsFavorite,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSnippetGet handles the snippet_get tool call.
func (h *Handlers) HandleSnippetGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnippetGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	s, ok := h.engine.GetByID(input.ID)
	if !ok {
		return errorResult(errors.NewSnippetNotFound(input.ID)), nil
	}

	return successResult(s)
}

// HandleSnippetUpdate handles the snippet_update tool call.
func (h *Handlers) HandleSnippetUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnippetUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.repo.UpdateSnippet(ctx, input.ID, store.UpdateSnippetInput{
		Title:      input.Title,
		Content:    input.Content,
		CategoryID: input.CategoryID,
		IsFavorite: input.IsFavorite,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSnippetDelete handles the snippet_delete tool call.
func (h *Handlers) HandleSnippetDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnippetGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if err := h.repo.DeleteSnippet(ctx, input.ID); err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"id": input.ID, "deleted": true})
}

// HandleSnippetCopy handles the snippet_copy tool call.
func (h *Handlers) HandleSnippetCopy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnippetGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	s, err := h.repo.RecordUsage(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	// A missing id is a no-op, not an error; report which it was.
	return successResult(map[string]any{"recorded": s != nil, "snippet": s})
}

// HandleSnippetFavorite handles the snippet_favorite tool call.
func (h *Handlers) HandleSnippetFavorite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnippetGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.repo.ToggleFavorite(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSnippetList handles the snippet_list tool call.
func (h *Handlers) HandleSnippetList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnippetListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var items []snippet.Snippet
	switch {
	case input.Favorites:
		items = h.engine.Favorites()
	case input.CategoryID != "":
		items = h.engine.ByCategory(input.CategoryID)
	default:
		items = h.repo.Snapshot().Snippets
	}

	return successResult(map[string]any{"snippets": items, "count": len(items)})
}

// HandleSnippetSearch handles the snippet_search tool call.
func (h *Handlers) HandleSnippetSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnippetSearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	items, err := h.engine.Search(query.SearchInput{
		Query:      input.Query,
		CategoryID: input.CategoryID,
		Sort:       query.SortMode(input.Sort),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"snippets": items, "count": len(items)})
}

// HandleSnippetRecent handles the snippet_recent tool call.
func (h *Handlers) HandleSnippetRecent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnippetRecentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	items := h.engine.RecentlyUsed(input.Limit)
	return successResult(map[string]any{"snippets": items, "count": len(items)})
}

// HandleCategoryAdd handles the category_add tool call.
func (h *Handlers) HandleCategoryAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CategoryAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.repo.AddCategory(ctx, store.AddCategoryInput{
		Name:  input.Name,
		Color: input.Color,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCategoryUpdate handles the category_update tool call.
func (h *Handlers) HandleCategoryUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CategoryUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.repo.UpdateCategory(ctx, input.ID, store.UpdateCategoryInput{
		Name:  input.Name,
		Color: input.Color,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCategoryDelete handles the category_delete tool call.
func (h *Handlers) HandleCategoryDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnippetGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if err := h.repo.DeleteCategory(ctx, input.ID); err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"id": input.ID, "deleted": true})
}

// HandleCategoryList handles the category_list tool call.
func (h *Handlers) HandleCategoryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items := h.repo.Snapshot().Categories
	return successResult(map[string]any{"categories": items, "count": len(items)})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if stashErr, ok := err.(*errors.StashError); ok {
		errorObj := map[string]any{
			"code":    stashErr.Code,
			"message": stashErr.Message,
			"status":  stashErr.Status,
		}
		if stashErr.Code != errors.ErrInternal && stashErr.Details != nil {
			errorObj["details"] = stashErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
