// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/mcpany/fdaclient/pkg/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultTTL is how long a fetched tool list is reused before the server is
// asked again.
const DefaultTTL = 5 * time.Minute

// maxPages bounds cursor pagination against servers that never stop returning
// a next cursor.
const maxPages = 100

// ToolLister is the part of an MCP client session the catalog needs.
type ToolLister interface {
	ListTools(ctx context.Context, params *mcp.ListToolsParams) (*mcp.ListToolsResult, error)
}

// Catalog fetches and caches the tool list of one server endpoint.
type Catalog struct {
	endpoint string
	lister   ToolLister
	cache    *ttlcache.Cache[string, []*mcp.Tool]
}

// New creates a catalog for the given endpoint. A ttl of zero or less uses
// DefaultTTL.
func New(endpoint string, lister ToolLister, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Catalog{
		endpoint: endpoint,
		lister:   lister,
		cache: ttlcache.New[string, []*mcp.Tool](
			ttlcache.WithTTL[string, []*mcp.Tool](ttl),
			ttlcache.WithDisableTouchOnHit[string, []*mcp.Tool](),
		),
	}
}

// Tools returns every tool the server advertises, following pagination
// cursors. Results are served from the cache while fresh.
func (c *Catalog) Tools(ctx context.Context) ([]*mcp.Tool, error) {
	if item := c.cache.Get(c.endpoint); item != nil {
		return item.Value(), nil
	}

	var tools []*mcp.Tool
	params := &mcp.ListToolsParams{}
	for page := 0; page < maxPages; page++ {
		res, err := c.lister.ListTools(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list tools: %w", err)
		}
		if res == nil {
			break
		}
		tools = append(tools, res.Tools...)
		if res.NextCursor == "" {
			break
		}
		params = &mcp.ListToolsParams{Cursor: res.NextCursor}
	}

	logging.GetLogger().Debug("Fetched tool catalog", "endpoint", c.endpoint, "tools", len(tools))
	c.cache.Set(c.endpoint, tools, ttlcache.DefaultTTL)
	return tools, nil
}

// Lookup finds a tool by name and parses its input schema.
func (c *Catalog) Lookup(ctx context.Context, name string) (*mcp.Tool, *ToolSchema, error) {
	tools, err := c.Tools(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, t := range tools {
		if t == nil || t.Name != name {
			continue
		}
		schema, err := ParseInputSchema(t.InputSchema)
		if err != nil {
			return t, nil, fmt.Errorf("tool %q: %w", name, err)
		}
		return t, schema, nil
	}
	return nil, nil, fmt.Errorf("tool %q is not offered by %s", name, c.endpoint)
}

// Invalidate drops the cached tool list.
func (c *Catalog) Invalidate() {
	c.cache.Delete(c.endpoint)
}
