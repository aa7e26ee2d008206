package hcl_adapter

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/livegraph/internal/graphmodel"
	"github.com/zclconf/go-cty/cty"
)

// EncodeGraph renders a description as a graph document.
func EncodeGraph(d *graphmodel.Description) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	body.SetAttributeValue("next_node_id", cty.NumberUIntVal(d.NextNodeID))
	body.SetAttributeValue("next_link_id", cty.NumberUIntVal(d.NextLinkID))

	for _, n := range d.Nodes {
		body.AppendNewline()
		b := body.AppendNewBlock("node", []string{n.Type}).Body()
		b.SetAttributeValue("id", cty.NumberUIntVal(uint64(n.ID)))
		b.SetAttributeValue("enabled", cty.BoolVal(n.Enabled))
		if n.Passthrough {
			b.SetAttributeValue("passthrough", cty.True)
		}
		if len(n.Literals) > 0 {
			b.SetAttributeValue("literals", stringObject(n.Literals))
		}
		if len(n.Resources) > 0 {
			encoded := make(map[string]string, len(n.Resources))
			for name, blob := range n.Resources {
				encoded[name] = base64.StdEncoding.EncodeToString(blob)
			}
			b.SetAttributeValue("resources", stringObject(encoded))
		}
	}

	for _, l := range d.Links {
		body.AppendNewline()
		b := body.AppendNewBlock("link", nil).Body()
		b.SetAttributeValue("id", cty.NumberUIntVal(uint64(l.ID)))
		b.SetAttributeValue("enabled", cty.BoolVal(l.Enabled))
		b.SetAttributeValue("output_node", cty.NumberUIntVal(uint64(l.OutputNode)))
		b.SetAttributeValue("output_socket", cty.StringVal(l.OutputSocket))
		b.SetAttributeValue("input_node", cty.NumberUIntVal(uint64(l.InputNode)))
		b.SetAttributeValue("input_socket", cty.StringVal(l.InputSocket))
		if len(l.Params) > 0 {
			b.SetAttributeValue("params", stringObject(l.Params))
		}
	}
	return f.Bytes()
}

// SaveGraph writes a description to path, replacing the file.
func SaveGraph(path string, d *graphmodel.Description) error {
	if err := os.WriteFile(path, EncodeGraph(d), 0o644); err != nil {
		return fmt.Errorf("error writing graph file %s: %w", path, err)
	}
	return nil
}

func stringObject(m map[string]string) cty.Value {
	attrs := make(map[string]cty.Value, len(m))
	for k, v := range m {
		attrs[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(attrs)
}
