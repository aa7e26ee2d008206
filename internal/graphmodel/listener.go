package graphmodel

import "context"

// Listener observes model mutations. Additions are announced after the
// element is in the model, removals before it is taken out. Listeners must
// not mutate the model or the elements they are handed.
type Listener interface {
	NodeAdd(ctx context.Context, n *Node)
	NodeRemove(ctx context.Context, n *Node)
	LinkAdd(ctx context.Context, l *Link)
	LinkRemove(ctx context.Context, l *Link)
	LiteralSet(ctx context.Context, n *Node, socket, value string)
	LiteralClear(ctx context.Context, n *Node, socket string)
	LinkParamSet(ctx context.Context, l *Link, name, value string)
	LinkParamClear(ctx context.Context, l *Link, name string)
}
