package hcl_adapter

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/graphmodel"
)

// LoadGraph reads a graph document from disk. A missing file yields an
// empty description so a fresh session can start from nothing.
func LoadGraph(ctx context.Context, path string) (*graphmodel.Description, error) {
	src, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		ctxlog.FromContext(ctx).Info("Graph file does not exist, starting empty.", "path", path)
		return &graphmodel.Description{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading graph file %s: %w", path, err)
	}
	return ParseGraph(ctx, path, src)
}

// ParseGraph decodes a graph document.
func ParseGraph(ctx context.Context, filename string, src []byte) (*graphmodel.Description, error) {
	logger := ctxlog.FromContext(ctx)

	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse graph file %s: %w", filename, diags)
	}
	var root graphRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode graph file %s: %w", filename, diags)
	}

	d := &graphmodel.Description{
		NextNodeID: root.NextNodeID,
		NextLinkID: root.NextLinkID,
	}
	for _, n := range root.Nodes {
		rec := graphmodel.NodeRecord{
			ID:          graphmodel.NodeID(n.ID),
			Type:        n.Type,
			Enabled:     n.Enabled == nil || *n.Enabled,
			Passthrough: n.Passthrough,
			Literals:    n.Literals,
			Resources:   make(map[string][]byte, len(n.Resources)),
		}
		if rec.Literals == nil {
			rec.Literals = make(map[string]string)
		}
		for name, encoded := range n.Resources {
			blob, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return nil, fmt.Errorf("graph file %s: node %d resource %q: %w", filename, n.ID, name, err)
			}
			rec.Resources[name] = blob
		}
		d.Nodes = append(d.Nodes, rec)
	}
	for _, l := range root.Links {
		rec := graphmodel.LinkRecord{
			ID:           graphmodel.LinkID(l.ID),
			Enabled:      l.Enabled == nil || *l.Enabled,
			OutputNode:   graphmodel.NodeID(l.OutputNode),
			OutputSocket: l.OutputSocket,
			InputNode:    graphmodel.NodeID(l.InputNode),
			InputSocket:  l.InputSocket,
			Params:       l.Params,
		}
		if rec.Params == nil {
			rec.Params = make(map[string]string)
		}
		d.Links = append(d.Links, rec)
	}

	logger.Debug("Graph file decoded.", "file", filename, "nodes", len(d.Nodes), "links", len(d.Links))
	return d, nil
}
