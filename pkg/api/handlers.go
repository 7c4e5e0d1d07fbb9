package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Draaaaaaven/ecad/pkg/ecad"
	"github.com/Draaaaaaven/ecad/pkg/errors"
	"github.com/Draaaaaaven/ecad/pkg/geom"
	"github.com/Draaaaaaven/ecad/pkg/hierarchy"
)

// =============================================================================
// Response types
// =============================================================================

type databaseSummary struct {
	Name  string `json:"name"`
	Cells int    `json:"cells"`
}

type databaseDetail struct {
	Name         string   `json:"name"`
	Suuid        string   `json:"suuid"`
	Unit         float64  `json:"unit"`
	Precision    float64  `json:"precision"`
	Threads      int      `json:"threads"`
	Cells        int      `json:"cells"`
	LayerMaps    []string `json:"layer_maps"`
	PadstackDefs []string `json:"padstack_defs"`
	TopCells     []string `json:"top_cells"`
}

type cellSummary struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type cellInstance struct {
	Name     string  `json:"name"`
	Master   string  `json:"master"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
	Mirror   bool    `json:"mirror"`
	OffsetX  float64 `json:"offset_x"`
	OffsetY  float64 `json:"offset_y"`
}

type cellDetail struct {
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	Layers        int            `json:"layers"`
	Nets          int            `json:"nets"`
	Primitives    int            `json:"primitives"`
	PadstackInsts int            `json:"padstack_insts"`
	CellInsts     []cellInstance `json:"cell_insts"`
	BBox          *geom.Box2D    `json:"bbox,omitempty"`
}

type layerInfo struct {
	ID                 ecad.LayerID `json:"id"`
	Name               string       `json:"name"`
	Type               string       `json:"type"`
	Elevation          float64      `json:"elevation"`
	Thickness          float64      `json:"thickness"`
	ConductingMaterial string       `json:"conducting_material,omitempty"`
	DielectricMaterial string       `json:"dielectric_material,omitempty"`
}

type netInfo struct {
	ID   ecad.NetID `json:"id"`
	Name string     `json:"name"`
}

type flattenResult struct {
	Cell          string  `json:"cell"`
	Primitives    int     `json:"primitives"`
	PadstackInsts int     `json:"padstack_insts"`
	DurationMS    float64 `json:"duration_ms"`
}

type netIslands struct {
	Net     string `json:"net"`
	Islands int    `json:"islands"`
	Open    bool   `json:"open"`
}

type connectivityResult struct {
	Nets     []netIslands `json:"nets"`
	Shorts   [][2]string  `json:"shorts"`
	Floating int          `json:"floating"`
}

type metalFractionResult struct {
	Region geom.Box2D           `json:"region"`
	NX     int                  `json:"nx"`
	NY     int                  `json:"ny"`
	Layers []ecad.LayerFraction `json:"layers"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) listDatabases(w http.ResponseWriter, _ *http.Request) {
	out := []databaseSummary{}
	for _, name := range s.mgr.Databases() {
		_ = s.mgr.Do(name, func(db *ecad.Database) error {
			out = append(out, databaseSummary{Name: name, Cells: db.CellCollection().Size()})
			return nil
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *server) getDatabase(w http.ResponseWriter, r *http.Request) {
	s.withDatabase(w, r, func(db *ecad.Database) (any, error) {
		units := db.CoordUnits()
		d := databaseDetail{
			Name:         db.Name(),
			Suuid:        string(db.Suuid()),
			Unit:         units.Unit,
			Precision:    units.Precision,
			Threads:      db.Threads(),
			Cells:        db.CellCollection().Size(),
			LayerMaps:    []string{},
			PadstackDefs: []string{},
			TopCells:     []string{},
		}
		for _, lm := range db.LayerMapCollection().All() {
			d.LayerMaps = append(d.LayerMaps, lm.Name())
		}
		for _, def := range db.PadstackDefCollection().All() {
			d.PadstackDefs = append(d.PadstackDefs, def.Name())
		}
		for _, c := range db.TopCells() {
			d.TopCells = append(d.TopCells, c.Name())
		}
		return d, nil
	})
}

func (s *server) getHierarchy(w http.ResponseWriter, r *http.Request) {
	var dot string
	err := s.mgr.Do(chi.URLParam(r, "db"), func(db *ecad.Database) error {
		dot = hierarchy.ToDOT(db.Hierarchy(), hierarchy.DOTOptions{Detailed: r.URL.Query().Has("detailed")})
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(dot))
}

func (s *server) listCells(w http.ResponseWriter, r *http.Request) {
	s.withDatabase(w, r, func(db *ecad.Database) (any, error) {
		out := []cellSummary{}
		for _, c := range db.CellCollection().All() {
			out = append(out, cellSummary{Name: c.Name(), Type: c.Type().String()})
		}
		return out, nil
	})
}

func (s *server) getCell(w http.ResponseWriter, r *http.Request) {
	s.withCell(w, r, func(_ *ecad.Database, c *ecad.Cell) (any, error) {
		lv := c.LayoutView()
		d := cellDetail{
			Name:          c.Name(),
			Type:          c.Type().String(),
			Layers:        lv.LayerCollection().Size(),
			Nets:          lv.NetCollection().Size(),
			Primitives:    lv.PrimitiveCollection().Size(),
			PadstackInsts: lv.PadstackInstCollection().Size(),
			CellInsts:     []cellInstance{},
		}
		for _, ci := range lv.CellInstCollection().All() {
			t := ci.Transform()
			d.CellInsts = append(d.CellInsts, cellInstance{
				Name:     ci.Name(),
				Master:   ci.DefLayoutView().Name(),
				Scale:    t.Scale(),
				Rotation: t.Rotation(),
				Mirror:   t.Mirrored(),
				OffsetX:  t.Offset().X,
				OffsetY:  t.Offset().Y,
			})
		}
		if b := lv.BBox(); b.IsValid() {
			d.BBox = &b
		}
		return d, nil
	})
}

func (s *server) listLayers(w http.ResponseWriter, r *http.Request) {
	s.withCell(w, r, func(_ *ecad.Database, c *ecad.Cell) (any, error) {
		out := []layerInfo{}
		for i, l := range c.LayoutView().StackupLayers() {
			out = append(out, layerInfo{
				ID:                 ecad.LayerID(i),
				Name:               l.Name(),
				Type:               l.Type().String(),
				Elevation:          l.Elevation(),
				Thickness:          l.Thickness(),
				ConductingMaterial: l.ConductingMaterial(),
				DielectricMaterial: l.DielectricMaterial(),
			})
		}
		return out, nil
	})
}

func (s *server) listNets(w http.ResponseWriter, r *http.Request) {
	s.withCell(w, r, func(_ *ecad.Database, c *ecad.Cell) (any, error) {
		out := []netInfo{}
		for _, n := range c.LayoutView().NetCollection().All() {
			out = append(out, netInfo{ID: n.ID(), Name: n.Name()})
		}
		return out, nil
	})
}

func (s *server) flattenCell(w http.ResponseWriter, r *http.Request) {
	s.withCell(w, r, func(db *ecad.Database, c *ecad.Cell) (any, error) {
		start := time.Now()
		flat, err := db.Flatten(r.Context(), c)
		if err != nil {
			return nil, err
		}
		return flattenResult{
			Cell:          c.Name(),
			Primitives:    flat.PrimitiveCollection().Size(),
			PadstackInsts: flat.PadstackInstCollection().Size(),
			DurationMS:    float64(time.Since(start).Microseconds()) / 1000,
		}, nil
	})
}

func (s *server) getConnectivity(w http.ResponseWriter, r *http.Request) {
	s.withCell(w, r, func(_ *ecad.Database, c *ecad.Cell) (any, error) {
		rep, err := c.LayoutView().ConnectivityExtraction()
		if err != nil {
			return nil, err
		}
		out := connectivityResult{Nets: []netIslands{}, Shorts: [][2]string{}, Floating: len(rep.Floating)}
		for _, n := range rep.View.NetCollection().All() {
			if islands, ok := rep.Islands[n.ID()]; ok {
				out.Nets = append(out.Nets, netIslands{Net: n.Name(), Islands: len(islands), Open: rep.Open(n.ID())})
			}
		}
		for _, sh := range rep.Shorts {
			out.Shorts = append(out.Shorts, [2]string{string(sh.A.Suuid()), string(sh.B.Suuid())})
		}
		return out, nil
	})
}

func (s *server) getMetalFraction(w http.ResponseWriter, r *http.Request) {
	cfg := s.mgr.Config().MetalFraction
	settings := ecad.DefaultMetalFractionMappingSettings()
	settings.Grid = cfg.Grid
	settings.MergeGeomBeforeMapping = cfg.MergeGeometry

	q := r.URL.Query()
	for i, key := range []string{"nx", "ny"} {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer, got %q", key, v))
				return
			}
			settings.Grid[i] = n
		}
	}
	settings.SelectNets = q["net"]

	s.withCell(w, r, func(_ *ecad.Database, c *ecad.Cell) (any, error) {
		mf, err := c.LayoutView().GenerateMetalFractionMapping(settings)
		if err != nil {
			return nil, err
		}
		return metalFractionResult{Region: mf.Region, NX: mf.NX, NY: mf.NY, Layers: mf.Layers}, nil
	})
}

// =============================================================================
// Helpers
// =============================================================================

func (s *server) withDatabase(w http.ResponseWriter, r *http.Request, fn func(*ecad.Database) (any, error)) {
	var out any
	err := s.mgr.Do(chi.URLParam(r, "db"), func(db *ecad.Database) error {
		var err error
		out, err = fn(db)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *server) withCell(w http.ResponseWriter, r *http.Request, fn func(*ecad.Database, *ecad.Cell) (any, error)) {
	s.withDatabase(w, r, func(db *ecad.Database) (any, error) {
		name := chi.URLParam(r, "cell")
		c := db.FindCellByName(name)
		if c == nil {
			return nil, errors.New(errors.ErrCodeNotFound, "cell %q not found", name)
		}
		return fn(db, c)
	})
}
