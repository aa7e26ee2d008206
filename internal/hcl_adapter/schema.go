package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// manifestRoot decodes every top-level block of a node type manifest.
type manifestRoot struct {
	NodeTypes []*nodeTypeBlock `hcl:"node_type,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

type nodeTypeBlock struct {
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Display     bool           `hcl:"display,optional"`
	Inputs      []*inputBlock  `hcl:"input,block"`
	Outputs     []*outputBlock `hcl:"output,block"`
}

type inputBlock struct {
	Name    string         `hcl:"name,label"`
	Type    hcl.Expression `hcl:"type,optional"`
	Default hcl.Expression `hcl:"default,optional"`
	Enum    string         `hcl:"enum,optional"`
	Multi   bool           `hcl:"multi,optional"`
}

type outputBlock struct {
	Name     string         `hcl:"name,label"`
	Type     hcl.Expression `hcl:"type"`
	Editable bool           `hcl:"editable,optional"`
}

// graphRoot decodes a graph document.
type graphRoot struct {
	NextNodeID uint64       `hcl:"next_node_id,optional"`
	NextLinkID uint64       `hcl:"next_link_id,optional"`
	Nodes      []*nodeBlock `hcl:"node,block"`
	Links      []*linkBlock `hcl:"link,block"`
}

type nodeBlock struct {
	Type        string            `hcl:"type,label"`
	ID          uint64            `hcl:"id"`
	Enabled     *bool             `hcl:"enabled,optional"`
	Passthrough bool              `hcl:"passthrough,optional"`
	Literals    map[string]string `hcl:"literals,optional"`
	// Resources holds base64-encoded blobs.
	Resources map[string]string `hcl:"resources,optional"`
}

type linkBlock struct {
	ID           uint64            `hcl:"id"`
	Enabled      *bool             `hcl:"enabled,optional"`
	OutputNode   uint64            `hcl:"output_node"`
	OutputSocket string            `hcl:"output_socket"`
	InputNode    uint64            `hcl:"input_node"`
	InputSocket  string            `hcl:"input_socket"`
	Params       map[string]string `hcl:"params,optional"`
}
