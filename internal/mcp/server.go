// Package mcp exposes the stash over the Model Context Protocol using
// stdio transport.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/snipstash/snipstash/internal/config"
	"github.com/snipstash/snipstash/internal/store"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"snippet_add": {
		def:     snippetAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSnippetAdd },
	},
	"snippet_get": {
		def:     snippetGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSnippetGet },
	},
	"snippet_update": {
		def:     snippetUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSnippetUpdate },
	},
	"snippet_delete": {
		def:     snippetDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSnippetDelete },
	},
	"snippet_copy": {
		def:     snippetCopyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSnippetCopy },
	},
	"snippet_favorite": {
		def:     snippetFavoriteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSnippetFavorite },
	},
	"snippet_list": {
		def:     snippetListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSnippetList },
	},
	"snippet_search": {
		def:     snippetSearchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSnippetSearch },
	},
	"snippet_recent": {
		def:     snippetRecentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSnippetRecent },
	},
	"category_add": {
		def:     categoryAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCategoryAdd },
	},
	"category_update": {
		def:     categoryUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCategoryUpdate },
	},
	"category_delete": {
		def:     categoryDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCategoryDelete },
	},
	"category_list": {
		def:     categoryListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCategoryList },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with stash tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(repo *store.Repository, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"snipstash",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(repo)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(repo *store.Repository, cfg *config.Config, version string) error {
	s := NewServer(repo, cfg, version)
	return server.ServeStdio(s)
}
