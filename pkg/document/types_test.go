package document

import (
	"testing"
)

func TestTrimName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "trailing padding", raw: "Face\x00\x00\x00", want: "Face"},
		{name: "leading padding", raw: "\x00Face", want: "Face"},
		{name: "no padding", raw: "Face Shadows", want: "Face Shadows"},
		{name: "only padding", raw: "\x00\x00", want: ""},
		{name: "inner NUL kept", raw: "Fa\x00ce\x00", want: "Fa\x00ce"},
		{name: "spaces untouched", raw: " Face \x00", want: " Face "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimName(tt.raw); got != tt.want {
				t.Errorf("TrimName(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorMode
		wantErr bool
	}{
		{in: "rgb", want: RGB},
		{in: "RGB", want: RGB},
		{in: " cmyk ", want: CMYK},
		{in: "grayscale", want: Grayscale},
		{in: "hsv", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColorMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColorMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseColorMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMemory_Order(t *testing.T) {
	doc := NewMemory(4, 4, RGB).
		AddGroup(Group{ID: 7, Name: "B"}).
		AddGroup(Group{ID: 3, Name: "A", Parent: Ref(7)}).
		AddLayer(Layer{Name: "one"}).
		AddLayer(Layer{Name: "two", Parent: Ref(3)})

	ids := doc.GroupIDs()
	if len(ids) != 2 || ids[0] != 7 || ids[1] != 3 {
		t.Fatalf("GroupIDs() = %v, want [7 3]", ids)
	}

	layers := doc.Layers()
	for i, l := range layers {
		if l.Index != i {
			t.Errorf("layer %q Index = %d, want %d", l.Name, l.Index, i)
		}
	}

	g, ok := doc.Group(3)
	if !ok {
		t.Fatal("Group(3) not found")
	}
	if parent, ok := g.ParentID(); !ok || parent != 7 {
		t.Errorf("Group(3).ParentID() = %d, %v, want 7, true", parent, ok)
	}

	if _, ok := layers[0].ParentID(); ok {
		t.Error("root layer reports a parent")
	}
}

func TestLayer_RGBA(t *testing.T) {
	pix := []byte{1, 2, 3, 4}
	l := Layer{Name: "x", Pixels: StaticPixels(pix)}

	got, err := l.RGBA()
	if err != nil {
		t.Fatalf("RGBA() error = %v", err)
	}
	got[0] = 99
	again, _ := l.RGBA()
	if again[0] != 1 {
		t.Error("StaticPixels handed out a shared buffer")
	}

	if _, err := (Layer{Name: "empty\x00"}).RGBA(); err == nil {
		t.Error("RGBA() on a layer without a pixel source should fail")
	}
}
