package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/trim/pkg/diag"
)

const exampleFile = "../examples/baseboard.lisp"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, selectPath, featureName, splitAt = "", "", "", ""
	jsonOut, verbose, showBounds, meshGeometry = false, false, false, false
	t.Cleanup(func() { diag.SetLogger(nil) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestNamesText(t *testing.T) {
	out, err := run(t, "names", exampleFile)
	require.NoError(t, err)
	assert.Contains(t, out, "baseboard (")
	assert.Contains(t, out, "    1-0\n")
	assert.Contains(t, out, "    5-1\n")
	assert.Contains(t, out, "    cap-start\n")
	assert.Contains(t, out, "    1-0>1-1>0\n")
}

func TestNamesJSONSelect(t *testing.T) {
	out, err := run(t, "names", exampleFile, "--json", "--select", "$.features[*].name")
	require.NoError(t, err)

	v, err := oj.ParseString(out)
	require.NoError(t, err)
	assert.Equal(t, []any{"baseboard", "return"}, v)
}

func TestNamesBoundsForOneFeature(t *testing.T) {
	out, err := run(t, "names", exampleFile, "--feature", "baseboard", "--bounds", "--json")
	require.NoError(t, err)

	v, err := oj.ParseString(out)
	require.NoError(t, err)
	features := v.(map[string]any)["features"].([]any)
	require.Len(t, features, 1)
	f := features[0].(map[string]any)
	assert.NotContains(t, f, "error")
	assert.Contains(t, f, "bounds")
	assert.Contains(t, f["faces"], "2-1")
}

func TestChainsJSON(t *testing.T) {
	out, err := run(t, "chains", exampleFile, "--json")
	require.NoError(t, err)

	v, err := oj.ParseString(out)
	require.NoError(t, err)
	features := v.(map[string]any)["features"].([]any)
	require.Len(t, features, 2)

	board := features[0].(map[string]any)
	chains := board["chains"].([]any)
	require.Len(t, chains, 1)
	assert.Equal(t, "0 1", chains[0].(map[string]any)["tags"])

	ret := features[1].(map[string]any)
	assert.Equal(t, true, ret["in_wall"])
	assert.EqualValues(t, 1, ret["segments"], "the borrowed door segment is dropped after the offset")
}

func TestSplit(t *testing.T) {
	out, err := run(t, "split", exampleFile, "--feature", "baseboard", "--at", "2000,0")
	require.NoError(t, err)
	assert.Contains(t, out, "baseboard: 2 parts")
	assert.Contains(t, out, "    0 [0, 0.5]")
	assert.Contains(t, out, "    0 [0.5, 1]")
	assert.Contains(t, out, "    1 [0, 1]")
}

func TestMesh(t *testing.T) {
	out, err := run(t, "mesh", exampleFile, "--feature", "baseboard", "--json", "--select", "$.features[0].faces[*].face")
	require.NoError(t, err)
	v, err := oj.ParseString(out)
	require.NoError(t, err)
	assert.Contains(t, v, "1-0")
	assert.Contains(t, v, "cap-start")

	out, err = run(t, "mesh", exampleFile, "--feature", "baseboard", "--json", "--geometry")
	require.NoError(t, err)
	v, err = oj.ParseString(out)
	require.NoError(t, err)
	face := v.(map[string]any)["features"].([]any)[0].(map[string]any)["faces"].([]any)[0].(map[string]any)
	assert.Len(t, face["positions"], 3*int(face["vertices"].(int64)))
	assert.Len(t, face["indices"], 3*int(face["triangles"].(int64)))

	out, err = run(t, "mesh", exampleFile)
	require.NoError(t, err)
	assert.Contains(t, out, "triangles")
}

func TestErrors(t *testing.T) {
	_, err := run(t, "names", exampleFile, "--feature", "crown")
	assert.ErrorContains(t, err, `no feature named "crown"`)

	_, err = run(t, "names", filepath.Join(t.TempDir(), "missing.lisp"))
	assert.Error(t, err)

	_, err = run(t, "split", exampleFile, "--at", "one,two")
	assert.ErrorContains(t, err, "point")

	bad := filepath.Join(t.TempDir(), "trim.hcl")
	require.NoError(t, os.WriteFile(bad, []byte(`log_level = "loud"`), 0o644))
	_, err = run(t, "chains", exampleFile, "--config", bad)
	assert.ErrorContains(t, err, "log_level")

	src := filepath.Join(t.TempDir(), "broken.lisp")
	require.NoError(t, os.WriteFile(src, []byte(`(feature "f")`), 0o644))
	_, err = run(t, "chains", src)
	assert.ErrorContains(t, err, "profile is required")
}

func TestConfigFileIsApplied(t *testing.T) {
	_, err := run(t, "chains", exampleFile, "--config", "../trim.hcl")
	require.NoError(t, err)
	assert.Equal(t, "4>5", cfg.Rules().BoundaryPrefix)
}

func TestParseVec(t *testing.T) {
	tests := []struct {
		in      string
		want    [3]float64
		wantErr bool
	}{
		{"1,2", [3]float64{1, 2, 0}, false},
		{" 1.5, -2 , 3", [3]float64{1.5, -2, 3}, false},
		{"1", [3]float64{}, true},
		{"1,2,3,4", [3]float64{}, true},
		{"a,b", [3]float64{}, true},
	}
	for _, tt := range tests {
		v, err := parseVec(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, [3]float64{v.X, v.Y, v.Z}, tt.in)
	}
}
