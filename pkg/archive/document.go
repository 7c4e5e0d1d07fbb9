package archive

// Version is the document version written by this package.
const Version = 1

// Document is the format-neutral content of a database.
type Document struct {
	Version      int           `bson:"version" xml:"version,attr"`
	Name         string        `bson:"name" xml:"name,attr"`
	Units        Units         `bson:"units" xml:"units"`
	Cells        []Cell        `bson:"cells" xml:"cells>cell"`
	LayerMaps    []LayerMap    `bson:"layer_maps" xml:"layer_maps>layer_map"`
	PadstackDefs []PadstackDef `bson:"padstack_defs" xml:"padstack_defs>padstack_def"`
}

// Units are the meters per user unit and per database unit.
type Units struct {
	Unit      float64 `bson:"unit" xml:"unit,attr"`
	Precision float64 `bson:"precision" xml:"precision,attr"`
}

// Cell is one cell and its layout.
type Cell struct {
	Name   string `bson:"name" xml:"name,attr"`
	Type   string `bson:"type" xml:"type,attr"`
	Layout Layout `bson:"layout" xml:"layout"`
}

// Layout is the content of a layout view. Nets and layers are referenced by
// position.
type Layout struct {
	Name          string         `bson:"name" xml:"name,attr"`
	Boundary      []Point        `bson:"boundary,omitempty" xml:"boundary>pt"`
	Layers        []Layer        `bson:"layers" xml:"stackup>layer"`
	Nets          []Net          `bson:"nets" xml:"nets>net"`
	PadstackInsts []PadstackInst `bson:"padstack_insts" xml:"padstack_insts>padstack_inst"`
	CellInsts     []CellInst     `bson:"cell_insts" xml:"cell_insts>cell_inst"`
	Primitives    []Primitive    `bson:"primitives" xml:"primitives>primitive"`
}

// Layer is one stackup layer.
type Layer struct {
	Name               string  `bson:"name" xml:"name,attr"`
	Type               string  `bson:"type" xml:"type,attr"`
	Elevation          float64 `bson:"elevation" xml:"elevation,attr"`
	Thickness          float64 `bson:"thickness" xml:"thickness,attr"`
	ConductingMaterial string  `bson:"conducting_material" xml:"conducting_material,attr"`
	DielectricMaterial string  `bson:"dielectric_material" xml:"dielectric_material,attr"`
}

// Net is one net; its id is its position.
type Net struct {
	Name string `bson:"name" xml:"name,attr"`
}

// Point is a point in database units.
type Point struct {
	X int64 `bson:"x" xml:"x,attr"`
	Y int64 `bson:"y" xml:"y,attr"`
}

// Transform is a placement: mirror about the x axis, rotate, scale and
// translate, in that order.
type Transform struct {
	Scale    float64 `bson:"scale" xml:"scale,attr"`
	Rotation float64 `bson:"rotation" xml:"rotation,attr"`
	Mirror   bool    `bson:"mirror" xml:"mirror,attr"`
	OffsetX  float64 `bson:"offset_x" xml:"offset_x,attr"`
	OffsetY  float64 `bson:"offset_y" xml:"offset_y,attr"`
}

// Shape is the payload of a geometry primitive or a pad. Points hold the two
// corners of a rectangle, the center of a circle, or the vertices of a path
// or polygon.
type Shape struct {
	Type   string    `bson:"type" xml:"type,attr"`
	Width  int64     `bson:"width,omitempty" xml:"width,attr,omitempty"`
	Radius int64     `bson:"radius,omitempty" xml:"radius,attr,omitempty"`
	Div    int       `bson:"div,omitempty" xml:"div,attr,omitempty"`
	Points []Point   `bson:"points" xml:"pt"`
	Holes  []Contour `bson:"holes,omitempty" xml:"hole,omitempty"`
}

// Contour is one hole of a polygon.
type Contour struct {
	Points []Point `bson:"points" xml:"pt"`
}

// Primitive is a geometry, text or bondwire primitive, selected by Kind.
type Primitive struct {
	Kind      string     `bson:"kind" xml:"kind,attr"`
	Layer     int        `bson:"layer" xml:"layer,attr"`
	Net       int        `bson:"net" xml:"net,attr"`
	Shape     *Shape     `bson:"shape,omitempty" xml:"shape,omitempty"`
	Text      string     `bson:"text,omitempty" xml:"text,omitempty"`
	Transform *Transform `bson:"transform,omitempty" xml:"transform,omitempty"`
	Name      string     `bson:"name,omitempty" xml:"name,attr,omitempty"`
	EndLayer  int        `bson:"end_layer,omitempty" xml:"end_layer,attr,omitempty"`
	Start     *Point     `bson:"start,omitempty" xml:"start,omitempty"`
	End       *Point     `bson:"end,omitempty" xml:"end,omitempty"`
	Radius    int64      `bson:"radius,omitempty" xml:"radius,attr,omitempty"`
}

// PadstackInst places a padstack definition by name. LayerMap names a
// database layer map; InlineMap carries an unnamed one.
type PadstackInst struct {
	Name      string    `bson:"name" xml:"name,attr"`
	Def       string    `bson:"def" xml:"def,attr"`
	Net       int       `bson:"net" xml:"net,attr"`
	Top       int       `bson:"top" xml:"top,attr"`
	Bot       int       `bson:"bot" xml:"bot,attr"`
	LayerMap  string    `bson:"layer_map,omitempty" xml:"layer_map,attr,omitempty"`
	InlineMap *LayerMap `bson:"inline_map,omitempty" xml:"inline_map,omitempty"`
	Transform Transform `bson:"transform" xml:"transform"`
}

// CellInst places the layout of the named cell.
type CellInst struct {
	Name      string    `bson:"name" xml:"name,attr"`
	Def       string    `bson:"def" xml:"def,attr"`
	Transform Transform `bson:"transform" xml:"transform"`
}

// LayerMap is a named layer id translation.
type LayerMap struct {
	Name     string    `bson:"name" xml:"name,attr"`
	Mappings []Mapping `bson:"mappings" xml:"map"`
}

// Mapping is one forward entry of a layer map.
type Mapping struct {
	From int `bson:"from" xml:"from,attr"`
	To   int `bson:"to" xml:"to,attr"`
}

// PadstackDef is a padstack definition with its pads and optional via.
type PadstackDef struct {
	Name     string `bson:"name" xml:"name,attr"`
	Material string `bson:"material" xml:"material,attr"`
	Pads     []Pad  `bson:"pads" xml:"pad"`
	Via      *Via   `bson:"via,omitempty" xml:"via,omitempty"`
}

// Pad is the pad of one definition layer.
type Pad struct {
	Layer    string  `bson:"layer" xml:"layer,attr"`
	OffsetX  float64 `bson:"offset_x" xml:"offset_x,attr"`
	OffsetY  float64 `bson:"offset_y" xml:"offset_y,attr"`
	Rotation float64 `bson:"rotation" xml:"rotation,attr"`
	Shape    *Shape  `bson:"shape,omitempty" xml:"shape,omitempty"`
}

// Via is the barrel of a padstack definition.
type Via struct {
	OffsetX  float64 `bson:"offset_x" xml:"offset_x,attr"`
	OffsetY  float64 `bson:"offset_y" xml:"offset_y,attr"`
	Rotation float64 `bson:"rotation" xml:"rotation,attr"`
	Shape    *Shape  `bson:"shape,omitempty" xml:"shape,omitempty"`
}
