package converter

import (
	"reflect"
	"testing"
)

func TestResizeArgs(t *testing.T) {
	cases := []struct {
		op   ResizeOp
		want []string
	}{
		{ResizeOp{Kind: ResizeFitSquare, Size: 60}, []string{"-Z", "60"}},
		{ResizeOp{Kind: ResizeStretch, Width: 200, Height: 100}, []string{"-z", "100", "200"}},
		{ResizeOp{Kind: ResampleWidth, Width: 320}, []string{"--resampleWidth", "320"}},
		{ResizeOp{Kind: ResampleHeight, Height: 240}, []string{"--resampleHeight", "240"}},
	}
	for _, tc := range cases {
		if got := resizeArgs(tc.op); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("resizeArgs(%+v) = %v, want %v", tc.op, got, tc.want)
		}
	}
}

func TestFormatArgs(t *testing.T) {
	jpeg, _ := LookupFormat("jpg")
	if got := formatArgs(jpeg, 85); !reflect.DeepEqual(got, []string{"-s", "format", "jpeg", "-s", "formatOptions", "85"}) {
		t.Errorf("Unexpected jpeg args: %v", got)
	}

	png, _ := LookupFormat("png")
	if got := formatArgs(png, 85); !reflect.DeepEqual(got, []string{"-s", "format", "png"}) {
		t.Errorf("Quality must be omitted for png: %v", got)
	}
}

func TestParseDimensions(t *testing.T) {
	out := "/tmp/a.png\n  pixelWidth: 640\n  pixelHeight: 480\n"
	d, ok := parseDimensions(out)
	if !ok || d != (Dimensions{Width: 640, Height: 480}) {
		t.Errorf("Expected 640x480, got %v (ok=%v)", d, ok)
	}

	for _, bad := range []string{"", "pixelWidth: 10", "pixelWidth: 0\npixelHeight: 5", "Error: unsupported"} {
		if _, ok := parseDimensions(bad); ok {
			t.Errorf("Expected %q to be unknown", bad)
		}
	}
}

func TestFormatLookup(t *testing.T) {
	f, ok := LookupFormat("TIF")
	if !ok || f.Name != "tiff" || f.Extension != "tiff" {
		t.Errorf("Expected tif alias to resolve to tiff, got %+v", f)
	}
	if _, ok := LookupFormat("webp"); ok {
		t.Error("webp is not an output format")
	}
	if len(FormatNames()) != 6 {
		t.Errorf("Expected 6 formats, got %v", FormatNames())
	}
}
