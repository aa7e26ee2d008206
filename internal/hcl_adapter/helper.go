package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/typelib"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// isExprDefined checks if an HCL expression was actually present in the
// source. The decoder fills omitted optional attributes with zero-width
// placeholder expressions, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	defined := r.End.Byte > r.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", defined,
	)
	return defined
}

// translateInputSocket processes one input block, resolving its type and
// turning its default into canonical text.
func translateInputSocket(ctx context.Context, in *inputBlock, nodeType string) (typelib.InputSocket, error) {
	t, err := typeExprToValueType(ctx, in.Type)
	if err != nil {
		return typelib.InputSocket{}, fmt.Errorf("in node type '%s', input '%s': %w", nodeType, in.Name, err)
	}

	sock := typelib.InputSocket{
		Name:       in.Name,
		Type:       t,
		EnumName:   in.Enum,
		MultiInput: in.Multi,
	}

	if !isExprDefined(ctx, in.Default, "default") {
		return sock, nil
	}
	val, diags := in.Default.Value(nil)
	if diags.HasErrors() {
		return sock, fmt.Errorf("invalid default value for input '%s' in node type '%s': %w", in.Name, nodeType, diags)
	}
	if val.IsNull() {
		return sock, nil
	}
	if !t.TextSettable() {
		return sock, fmt.Errorf("input '%s' in node type '%s': type %s cannot have a default", in.Name, nodeType, t)
	}
	text, err := defaultText(val, t)
	if err != nil {
		return sock, fmt.Errorf("input '%s' in node type '%s': %w", in.Name, nodeType, err)
	}
	sock.Default = text
	return sock, nil
}

// defaultText renders a manifest default in the plug text encoding.
func defaultText(val cty.Value, t typelib.ValueType) (string, error) {
	val, err := convert.Convert(val, t.CtyType())
	if err != nil {
		return "", fmt.Errorf("default is not a valid %s: %w", t, err)
	}
	switch val.Type() {
	case cty.Number:
		return val.AsBigFloat().Text('g', -1), nil
	case cty.Bool:
		if val.True() {
			return "1", nil
		}
		return "0", nil
	default:
		return val.AsString(), nil
	}
}
