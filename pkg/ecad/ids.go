package ecad

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Suuid is the globally unique identity of an entity. It is assigned at
// construction and never changes or gets reused.
type Suuid string

func newSuuid() Suuid {
	return Suuid(uuid.NewString())
}

// LayerID is the position of a layer in a layout's stackup.
type LayerID int

// NoLayer marks a missing or unmapped layer.
const NoLayer LayerID = -1

func (id LayerID) String() string {
	if id == NoLayer {
		return "NOLAYER"
	}
	return strconv.Itoa(int(id))
}

// NetID is the position of a net in a layout's net collection.
type NetID int

// NoNet marks a conductor without a net.
const NoNet NetID = -1

func (id NetID) String() string {
	if id == NoNet {
		return "NONET"
	}
	return strconv.Itoa(int(id))
}

// DefinitionType tags the named definitions a database owns.
type DefinitionType int

const (
	DefinitionCell DefinitionType = iota
	DefinitionLayerMap
	DefinitionPadstackDef
)

func (t DefinitionType) String() string {
	switch t {
	case DefinitionCell:
		return "cell"
	case DefinitionLayerMap:
		return "layer map"
	case DefinitionPadstackDef:
		return "padstack def"
	}
	return fmt.Sprintf("DefinitionType(%d)", int(t))
}

// nextName returns name if taken reports false for it, otherwise the first
// free name of the form name_1, name_2, ...
func nextName(name string, taken func(string) bool) string {
	if !taken(name) {
		return name
	}
	for i := 1; ; i++ {
		candidate := name + "_" + strconv.Itoa(i)
		if !taken(candidate) {
			return candidate
		}
	}
}
