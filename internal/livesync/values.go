package livesync

import (
	"fmt"

	"github.com/specialistvlad/livegraph/internal/engine"
	"github.com/specialistvlad/livegraph/internal/graphmodel"
	"github.com/specialistvlad/livegraph/internal/node"
)

// InputSocketValue returns the canonical text of a live input's effective
// value and refreshes its liveness. Types without a text form report their
// availability, such as "[640 x 480]".
func (s *Sync) InputSocketValue(id graphmodel.NodeID, socket string) (string, error) {
	p, err := s.plug(id, socket, node.Input)
	if err != nil {
		return "", err
	}
	text, _ := p.Format()
	return text, nil
}

// SetInputSocketValue writes a live input's own storage from text. The
// model is left untouched.
func (s *Sync) SetInputSocketValue(id graphmodel.NodeID, socket, text string) error {
	p, err := s.plug(id, socket, node.Input)
	if err != nil {
		return err
	}
	return p.SetLiteral(text)
}

// OutputSocketValue returns the canonical text of a live output's value.
func (s *Sync) OutputSocketValue(id graphmodel.NodeID, socket string) (string, error) {
	p, err := s.plug(id, socket, node.Output)
	if err != nil {
		return "", err
	}
	text, _ := p.Format()
	return text, nil
}

// SetOutputSocketValue writes a live output from text. Only outputs marked
// editable accept writes.
func (s *Sync) SetOutputSocketValue(id graphmodel.NodeID, socket, text string) error {
	p, err := s.plug(id, socket, node.Output)
	if err != nil {
		return err
	}
	rt := p.Owner()
	if !rt.Type.Outputs[p.Index].Editable {
		return fmt.Errorf("node %d output %q: %w", id, socket, ErrNotEditable)
	}
	return p.SetLiteral(text)
}

func (s *Sync) plug(id graphmodel.NodeID, socket string, dir node.Direction) (*node.Plug, error) {
	rt, ok := s.graph.Node(id)
	if !ok {
		return nil, fmt.Errorf("node %d: %w", id, engine.ErrUnavailable)
	}
	var p *node.Plug
	if dir == node.Input {
		p = rt.Input(socket)
	} else {
		p = rt.Output(socket)
	}
	if p == nil {
		return nil, fmt.Errorf("node %d socket %q: %w", id, socket, engine.ErrUnresolved)
	}
	return p, nil
}
