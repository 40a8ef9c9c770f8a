package cli

import (
	"reflect"
	"testing"

	"github.com/spf13/cobra"

	"github.com/qmatter/hofstadter/pkg/pipeline"
)

func newFlagsCommand(withFlux bool) (*cobra.Command, *modelFlags) {
	var mf modelFlags
	cmd := &cobra.Command{Use: "test"}
	mf.register(cmd, withFlux)
	return cmd, &mf
}

func TestModelFlagsUnsetKeepConfig(t *testing.T) {
	cmd, mf := newFlagsCommand(true)
	opts := pipeline.Options{Lattice: "kagome", P: 1, Q: 3, T: []float64{1}, Formats: []string{"png"}}
	want := opts

	if err := mf.apply(cmd, &opts); err != nil {
		t.Fatalf("apply() error: %v", err)
	}
	if !reflect.DeepEqual(opts, want) {
		t.Errorf("apply() without flags changed options: got %+v, want %+v", opts, want)
	}
}

func TestModelFlagsOverride(t *testing.T) {
	cmd, mf := newFlagsCommand(true)
	set := map[string]string{
		"lattice": "honeycomb",
		"t":       "1,0.25",
		"a0":      "2",
		"nphi":    "2,7",
		"workers": "3",
		"format":  "svg,PNG",
		"output":  "out",
		"refresh": "true",
	}
	for name, value := range set {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set --%s: %v", name, err)
		}
	}

	opts := pipeline.Options{Lattice: "square", P: 1, Q: 4, T: []float64{1}}
	if err := mf.apply(cmd, &opts); err != nil {
		t.Fatalf("apply() error: %v", err)
	}

	if opts.Lattice != "honeycomb" || opts.A0 != 2 || opts.Workers != 3 || opts.OutDir != "out" || !opts.Refresh {
		t.Errorf("apply() = %+v", opts)
	}
	if opts.P != 2 || opts.Q != 7 {
		t.Errorf("flux = %d/%d, want 2/7", opts.P, opts.Q)
	}
	if !reflect.DeepEqual(opts.T, []float64{1, 0.25}) {
		t.Errorf("T = %v, want [1 0.25]", opts.T)
	}
	if !reflect.DeepEqual(opts.Formats, []string{"svg", "png"}) {
		t.Errorf("Formats = %v, want [svg png]", opts.Formats)
	}
}

func TestModelFlagsBadFlux(t *testing.T) {
	cmd, mf := newFlagsCommand(true)
	if err := cmd.Flags().Set("nphi", "1,2,3"); err != nil {
		t.Fatal(err)
	}
	var opts pipeline.Options
	if err := mf.apply(cmd, &opts); err == nil {
		t.Error("apply() accepted three flux integers")
	}
}

func TestModelFlagsWithoutFlux(t *testing.T) {
	cmd, _ := newFlagsCommand(false)
	if cmd.Flags().Lookup("nphi") != nil {
		t.Error("--nphi registered on a command without flux")
	}
}

func TestStringFlag(t *testing.T) {
	var color string
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&color, "color", "", "")

	dst := "none"
	stringFlag(cmd, "color", color, &dst)
	if dst != "none" {
		t.Errorf("unset flag overwrote dst with %q", dst)
	}

	if err := cmd.Flags().Set("color", "avron"); err != nil {
		t.Fatal(err)
	}
	stringFlag(cmd, "color", color, &dst)
	if dst != "avron" {
		t.Errorf("dst = %q, want avron", dst)
	}
}
