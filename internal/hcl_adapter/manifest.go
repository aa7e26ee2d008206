package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/typelib"
)

// ParseManifest decodes the node_type blocks of one manifest file.
func ParseManifest(ctx context.Context, filename string, src []byte) ([]*typelib.NodeType, error) {
	logger := ctxlog.FromContext(ctx)

	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", filename, diags)
	}

	var root manifestRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", filename, diags)
	}

	types := make([]*typelib.NodeType, 0, len(root.NodeTypes))
	for _, block := range root.NodeTypes {
		def, err := translateNodeType(ctx, block)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %w", filename, err)
		}
		types = append(types, def)
	}

	logger.Debug("Manifest parsed.", "file", filename, "node_types", len(types))
	return types, nil
}

func translateNodeType(ctx context.Context, block *nodeTypeBlock) (*typelib.NodeType, error) {
	def := &typelib.NodeType{
		Name:        block.Name,
		Description: block.Description,
		Display:     block.Display,
	}
	for _, in := range block.Inputs {
		sock, err := translateInputSocket(ctx, in, block.Name)
		if err != nil {
			return nil, err
		}
		def.Inputs = append(def.Inputs, sock)
	}
	for _, out := range block.Outputs {
		t, err := typeExprToValueType(ctx, out.Type)
		if err != nil {
			return nil, fmt.Errorf("in node type '%s', output '%s': %w", block.Name, out.Name, err)
		}
		def.Outputs = append(def.Outputs, typelib.OutputSocket{Name: out.Name, Type: t, Editable: out.Editable})
	}
	return def, nil
}
