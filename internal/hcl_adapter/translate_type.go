// This file parses socket type keywords such as `float` or `trigger` into
// typelib value types.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/typelib"
	"github.com/zclconf/go-cty/cty"
)

// typeExprToValueType converts a bare type keyword into its value type. An
// omitted expression means the wildcard type.
func typeExprToValueType(ctx context.Context, expr hcl.Expression) (typelib.ValueType, error) {
	logger := ctxlog.FromContext(ctx)

	if !isExprDefined(ctx, expr, "type") {
		logger.Debug("Type expression is absent, defaulting to any.")
		return typelib.TypeAny, nil
	}

	switch v := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return typelib.TypeAny, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		keyword := v.Traversal.RootName()
		logger.Debug("Parsing socket type keyword.", "keyword", keyword)
		return typelib.ParseValueType(keyword)

	case *hclsyntax.TemplateExpr:
		// Quoted keywords ("float") are accepted as well.
		if len(v.Parts) == 1 {
			if lit, ok := v.Parts[0].(*hclsyntax.LiteralValueExpr); ok && lit.Val.Type().Equals(cty.String) {
				return typelib.ParseValueType(lit.Val.AsString())
			}
		}
		return typelib.TypeAny, fmt.Errorf("type must be a keyword or a plain string")

	default:
		return typelib.TypeAny, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}
