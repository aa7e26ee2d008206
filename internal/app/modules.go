package app

import (
	"github.com/specialistvlad/livegraph/internal/registry"
	"github.com/specialistvlad/livegraph/modules/signal"
	"github.com/specialistvlad/livegraph/modules/trigger"
	"github.com/specialistvlad/livegraph/modules/wavetable"
)

// coreModules is the definitive list of all modules that are compiled into
// the livegraph binary.
var coreModules = []registry.Module{
	&signal.Module{},
	&trigger.Module{},
	&wavetable.Module{},
}
