package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/Draaaaaaven/ecad/pkg/config"
	"github.com/Draaaaaaven/ecad/pkg/ecad"
	"github.com/Draaaaaaven/ecad/pkg/errors"
	"github.com/Draaaaaaven/ecad/pkg/geom"
	"github.com/Draaaaaaven/ecad/pkg/manager"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mgr := manager.New(config.Default(), nil, log.New(io.Discard))
	db, err := mgr.CreateDatabase("board")
	if err != nil {
		t.Fatal(err)
	}
	leaf, _ := db.CreateCircuitCell("leaf")
	top, _ := db.CreateCircuitCell("top")
	for _, c := range []*ecad.Cell{leaf, top} {
		lv := c.LayoutView()
		if _, err := lv.AppendLayers([]*ecad.StackupLayer{
			ecad.NewStackupLayer("M1", ecad.ConductingLayer),
			ecad.NewStackupLayer("D1", ecad.DielectricLayer),
		}); err != nil {
			t.Fatal(err)
		}
	}
	vdd, _ := leaf.LayoutView().CreateNet("vdd")
	_, _ = leaf.LayoutView().CreateGeometry2D(0, vdd.ID(), ecad.NewRectangle(geom.Pt(0, 0), geom.Pt(50, 100)))
	_, _ = top.LayoutView().CreateCellInst("u1", leaf.LayoutView(), geom.Identity())
	boundary := geom.NewBox(geom.Pt(0, 0), geom.Pt(100, 100)).Polygon()
	top.LayoutView().SetBoundary(&boundary)

	srv := httptest.NewServer(NewRouter(mgr, log.New(io.Discard)))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, method, path string, out any) int {
	t.Helper()
	req, _ := http.NewRequest(method, srv.URL+path, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestListEndpoints(t *testing.T) {
	srv := newTestServer(t)

	var dbs []databaseSummary
	if code := get(t, srv, http.MethodGet, "/databases", &dbs); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if diff := cmp.Diff([]databaseSummary{{Name: "board", Cells: 2}}, dbs); diff != "" {
		t.Errorf("/databases mismatch (-want +got):\n%s", diff)
	}

	var detail databaseDetail
	get(t, srv, http.MethodGet, "/databases/board", &detail)
	if diff := cmp.Diff([]string{"top"}, detail.TopCells); diff != "" {
		t.Errorf("top cells mismatch (-want +got):\n%s", diff)
	}

	var cells []cellSummary
	get(t, srv, http.MethodGet, "/databases/board/cells", &cells)
	want := []cellSummary{{Name: "leaf", Type: "circuit"}, {Name: "top", Type: "circuit"}}
	if diff := cmp.Diff(want, cells); diff != "" {
		t.Errorf("/cells mismatch (-want +got):\n%s", diff)
	}

	var layers []layerInfo
	get(t, srv, http.MethodGet, "/databases/board/cells/top/layers", &layers)
	if len(layers) != 2 || layers[1].Name != "D1" || layers[1].Type != ecad.DielectricLayer.String() {
		t.Errorf("/layers = %+v", layers)
	}

	var nets []netInfo
	get(t, srv, http.MethodGet, "/databases/board/cells/leaf/nets", &nets)
	if diff := cmp.Diff([]netInfo{{ID: 0, Name: "vdd"}}, nets); diff != "" {
		t.Errorf("/nets mismatch (-want +got):\n%s", diff)
	}

	var cell cellDetail
	get(t, srv, http.MethodGet, "/databases/board/cells/top", &cell)
	if len(cell.CellInsts) != 1 || cell.CellInsts[0].Master != "leaf" {
		t.Errorf("cell insts = %+v", cell.CellInsts)
	}
}

func TestAlgorithms(t *testing.T) {
	srv := newTestServer(t)

	var flat flattenResult
	if code := get(t, srv, http.MethodPost, "/databases/board/cells/top/flatten", &flat); code != http.StatusOK {
		t.Fatalf("flatten status = %d", code)
	}
	if flat.Primitives != 1 {
		t.Errorf("flattened primitives = %d, want 1", flat.Primitives)
	}

	var mf metalFractionResult
	if code := get(t, srv, http.MethodGet, "/databases/board/cells/top/metal-fraction?nx=2&ny=1", &mf); code != http.StatusOK {
		t.Fatalf("metal-fraction status = %d", code)
	}
	if mf.NX != 2 || len(mf.Layers) != 2 {
		t.Fatalf("metal fraction = %+v", mf)
	}
	if got := mf.Layers[0].Values; got[0] < 0.99 || got[1] > 0.01 {
		t.Errorf("M1 values = %v, want [1 0]", got)
	}

	var conn connectivityResult
	get(t, srv, http.MethodGet, "/databases/board/cells/top/connectivity", &conn)
	if len(conn.Nets) != 1 || conn.Nets[0].Islands != 1 || conn.Nets[0].Open {
		t.Errorf("connectivity = %+v", conn)
	}
}

func TestHierarchyDOT(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/databases/board/hierarchy")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "digraph") || !strings.Contains(string(body), `"top" -> "leaf"`) {
		t.Errorf("hierarchy body = %q", body)
	}
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		path   string
		status int
		code   errors.Code
	}{
		{"/databases/nope", http.StatusNotFound, errors.ErrCodeNotFound},
		{"/databases/board/cells/nope", http.StatusNotFound, errors.ErrCodeNotFound},
		{"/databases/board/cells/leaf/metal-fraction", http.StatusUnprocessableEntity, errors.ErrCodeInvalidState},
		{"/databases/board/cells/top/metal-fraction?nx=x", http.StatusUnprocessableEntity, errors.ErrCodeInvalidInput},
		{"/databases/board/cells/top/metal-fraction?nx=0", http.StatusUnprocessableEntity, errors.ErrCodeInvalidInput},
		{"/databases/board/cells/top/metal-fraction?nx=1000000000&ny=1000000000", http.StatusUnprocessableEntity, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var body errorBody
			if code := get(t, srv, http.MethodGet, tt.path, &body); code != tt.status {
				t.Errorf("status = %d, want %d", code, tt.status)
			}
			if body.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Code, tt.code)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[errors.Code]int{
		errors.ErrCodeDuplicateName: http.StatusConflict,
		errors.ErrCodeCyclic:        http.StatusUnprocessableEntity,
		errors.ErrCodeIO:            http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := statusFor(code); got != want {
			t.Errorf("statusFor(%s) = %d, want %d", code, got, want)
		}
	}
}
