package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Draaaaaaven/ecad/pkg/archive"
	"github.com/Draaaaaaven/ecad/pkg/config"
	"github.com/Draaaaaaven/ecad/pkg/ecad"
	"github.com/Draaaaaaven/ecad/pkg/errors"
	"github.com/Draaaaaaven/ecad/pkg/geom"
)

// writeFixture saves a design with top -> {mid -> leaf, leaf} to dir.
func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	db := ecad.NewDatabase("board")
	leaf, _ := db.CreateCircuitCell("leaf")
	mid, _ := db.CreateCircuitCell("mid")
	top, _ := db.CreateCircuitCell("top")
	for _, c := range []*ecad.Cell{leaf, mid, top} {
		if _, err := c.LayoutView().AppendLayer(ecad.NewStackupLayer("M1", ecad.ConductingLayer)); err != nil {
			t.Fatal(err)
		}
	}
	gnd, _ := leaf.LayoutView().CreateNet("gnd")
	_, _ = leaf.LayoutView().CreateGeometry2D(0, gnd.ID(), ecad.NewRectangle(geom.Pt(0, 0), geom.Pt(10, 10)))
	_, _ = mid.LayoutView().CreateCellInst("l1", leaf.LayoutView(), geom.Translation(20, 0))
	_, _ = top.LayoutView().CreateCellInst("m1", mid.LayoutView(), geom.Identity())
	_, _ = top.LayoutView().CreateCellInst("l2", leaf.LayoutView(), geom.Identity())
	boundary := geom.NewBox(geom.Pt(0, 0), geom.Pt(40, 10)).Polygon()
	top.LayoutView().SetBoundary(&boundary)

	path := filepath.Join(dir, "board.ecad")
	if err := db.Save(path, archive.FormatBIN); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the CLI with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.SetOutput(&out, io.Discard)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInfo(t *testing.T) {
	path := writeFixture(t, t.TempDir())
	out, err := execute(t, "info", path)
	if err != nil {
		t.Fatalf("info error = %v", err)
	}
	for _, want := range []string{"board", "top cells", "top", "leaf", "Primitives"} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir)
	xmlPath := filepath.Join(dir, "board.xml")

	if _, err := execute(t, "convert", path, xmlPath); err != nil {
		t.Fatalf("convert error = %v", err)
	}
	data, err := os.ReadFile(xmlPath)
	if err != nil {
		t.Fatal(err)
	}
	if f, err := archive.Sniff(data); err != nil || f != archive.FormatXML {
		t.Errorf("Sniff(converted) = %q, %v; want xml", f, err)
	}

	db := ecad.NewDatabase("board")
	if err := db.Load(xmlPath, archive.FormatXML); err != nil {
		t.Fatalf("Load(converted) error = %v", err)
	}
	if db.CellCollection().Size() != 3 {
		t.Errorf("converted cells = %d, want 3", db.CellCollection().Size())
	}
}

func TestFlattenOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir)
	out := filepath.Join(dir, "flat.ecad")

	stdout, err := execute(t, "flatten", path, "--threads", "2", "-o", out)
	if err != nil {
		t.Fatalf("flatten error = %v", err)
	}
	if !strings.Contains(stdout, "Flattened top") {
		t.Errorf("flatten output = %q", stdout)
	}

	db := ecad.NewDatabase("flat")
	if err := db.Load(out, archive.FormatBIN); err != nil {
		t.Fatal(err)
	}
	top := db.FindCellByName("top").LayoutView()
	if top.CellInstCollection().Size() != 0 || top.PrimitiveCollection().Size() != 2 {
		t.Errorf("flattened top has %d instances and %d primitives, want 0 and 2",
			top.CellInstCollection().Size(), top.PrimitiveCollection().Size())
	}
}

func TestHierarchyDOT(t *testing.T) {
	path := writeFixture(t, t.TempDir())
	out, err := execute(t, "hierarchy", path, "--detailed")
	if err != nil {
		t.Fatal(err)
	}
	for _, edge := range []string{`"top" -> "mid"`, `"mid" -> "leaf"`, `"top" -> "leaf"`} {
		if !strings.Contains(out, edge) {
			t.Errorf("DOT missing %s:\n%s", edge, out)
		}
	}
	if _, err := execute(t, "hierarchy", path, "--as", "png"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("--as png error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestMetalFraction(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir)
	report := filepath.Join(dir, "mf.txt")

	out, err := execute(t, "metal-fraction", path, "--grid", "4x1", "-o", report)
	if err != nil {
		t.Fatalf("metal-fraction error = %v", err)
	}
	if !strings.Contains(out, "4x1 grid") {
		t.Errorf("output = %q", out)
	}
	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatal(err)
	}
	// leaf at x 0..10 and x 20..30 of a 40 wide region
	if !strings.Contains(string(data), "1.000000 0.000000 1.000000 0.000000") {
		t.Errorf("report rows:\n%s", data)
	}

	if _, err := execute(t, "metal-fraction", path, "--cell", "leaf"); !errors.Is(err, errors.ErrCodeInvalidState) {
		t.Errorf("metal-fraction without boundary error = %v, want %s", err, errors.ErrCodeInvalidState)
	}
	if _, err := execute(t, "metal-fraction", path, "--ext", "1,2"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("--ext with two values error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestMergePolygons(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir)
	report := filepath.Join(dir, "merged.txt")
	out := filepath.Join(dir, "merged.ecad")

	if _, err := execute(t, "merge-polygons", path, "--flatten", "--report", report, "-o", out); err != nil {
		t.Fatalf("merge-polygons error = %v", err)
	}
	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatal(err)
	}
	// leaf at x 0..10 twice and at x 20..30
	if !strings.Contains(string(data), "layer 0 M1 net gnd polygons 2") {
		t.Errorf("report:\n%s", data)
	}

	db := ecad.NewDatabase("")
	if err := db.Load(out, archive.FormatBIN); err != nil {
		t.Fatal(err)
	}
	top := db.FindCellByName("top").LayoutView()
	if n := top.CellInstCollection().Size(); n != 0 {
		t.Errorf("instances after --flatten = %d, want 0", n)
	}
	if n := top.PrimitiveCollection().Size(); n != 2 {
		t.Errorf("primitives = %d, want 2", n)
	}

	if _, err := execute(t, "merge-polygons", path, "--cell", "nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown cell error = %v, want %s", err, errors.ErrCodeNotFound)
	}
}

func TestConnectivity(t *testing.T) {
	path := writeFixture(t, t.TempDir())
	out, err := execute(t, "connectivity", path)
	if err != nil {
		t.Fatal(err)
	}
	// the two leaf copies do not touch, so gnd is open
	if !strings.Contains(out, "open") || !strings.Contains(out, "1 open nets, 0 shorts") {
		t.Errorf("connectivity output:\n%s", out)
	}
}

func TestMissingInput(t *testing.T) {
	_, err := execute(t, "info", filepath.Join(t.TempDir(), "none.ecad"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("info(missing) error = %v, want %s", err, errors.ErrCodeNotFound)
	}
}

func TestPickCell(t *testing.T) {
	db := ecad.NewDatabase("db")
	if _, err := pickCell(db, ""); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("pickCell(empty db) error = %v", err)
	}
	a, _ := db.CreateCircuitCell("a")
	if got, err := pickCell(db, ""); err != nil || got != a {
		t.Errorf("pickCell(single top) = %v, %v", got, err)
	}
	_, _ = db.CreateCircuitCell("b")
	if _, err := pickCell(db, ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("pickCell(two tops) error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	if _, err := pickCell(db, "zzz"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("pickCell(unknown) error = %v, want %s", err, errors.ErrCodeNotFound)
	}
}

func TestParseGrid(t *testing.T) {
	tests := []struct {
		in      string
		want    [2]int
		wantErr bool
	}{
		{"4x2", [2]int{4, 2}, false},
		{"10X10", [2]int{10, 10}, false},
		{"4", [2]int{}, true},
		{"ax2", [2]int{}, true},
	}
	for _, tt := range tests {
		got, err := parseGrid(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseGrid(%q) = %v, %v; want %v, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestDatabaseName(t *testing.T) {
	tests := map[string]string{
		"/tmp/board.ecad": "board",
		"design.xml":      "design",
		"noext":           "noext",
	}
	for in, want := range tests {
		if got := databaseName(in); got != want {
			t.Errorf("databaseName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if dir, _ := configDir(); dir != filepath.Join("/xdg", "ecad") {
		t.Errorf("configDir() = %q, want /xdg/ecad", dir)
	}
	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	if dir, _ := configDir(); dir != filepath.Join(home, ".config", "ecad") {
		t.Errorf("configDir() = %q, want under %s/.config", dir, home)
	}
}

func TestAutosave(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.AutosaveDir = dir
	if got, _ := autosaveDir(cfg); got != dir {
		t.Errorf("autosaveDir() = %q, want %q", got, dir)
	}

	files, err := autosaveFiles(filepath.Join(dir, "missing"))
	if err != nil || len(files) != 0 {
		t.Errorf("autosaveFiles(missing) = %v, %v; want none", files, err)
	}

	writeFixture(t, dir)
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	files, err = autosaveFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Name() != "board.ecad" || files[0].size == 0 {
		t.Errorf("autosaveFiles() = %+v, want board.ecad only", files)
	}

	out, err := execute(t, "autosave", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), filepath.Join("ecad", "autosave")) {
		t.Errorf("autosave path = %q", out)
	}
}
