package onnx

import "testing"

func TestDetectLayout(t *testing.T) {
	tests := []struct {
		name    string
		shape   []int64
		want    Layout
		wantErr bool
	}{
		{name: "classic NHWC", shape: []int64{1, 224, 224, 3}, want: LayoutNHWC},
		{name: "classic NCHW", shape: []int64{1, 3, 224, 224}, want: LayoutNCHW},
		{name: "small NHWC", shape: []int64{1, 32, 32, 3}, want: LayoutNHWC},
		{name: "ambiguous resolves NHWC", shape: []int64{1, 3, 3, 3}, want: LayoutNHWC},
		{name: "no channel axis", shape: []int64{1, 224, 224, 4}, wantErr: true},
		{name: "wrong rank", shape: []int64{1, 224, 224}, wantErr: true},
		{name: "dynamic dims", shape: []int64{-1, 224, 224, 3}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectLayout(tt.shape)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectLayout() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("DetectLayout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImageDims(t *testing.T) {
	h, w, c, err := ImageDims([]int64{1, 224, 320, 3}, LayoutNHWC)
	if err != nil {
		t.Fatalf("ImageDims error: %v", err)
	}
	if h != 224 || w != 320 || c != 3 {
		t.Errorf("NHWC dims = (%d,%d,%d), want (224,320,3)", h, w, c)
	}

	h, w, c, err = ImageDims([]int64{1, 3, 224, 320}, LayoutNCHW)
	if err != nil {
		t.Fatalf("ImageDims error: %v", err)
	}
	if h != 224 || w != 320 || c != 3 {
		t.Errorf("NCHW dims = (%d,%d,%d), want (224,320,3)", h, w, c)
	}

	if _, _, _, err := ImageDims([]int64{1, 224}, LayoutNHWC); err == nil {
		t.Error("expected error for wrong rank")
	}
}

func TestLayoutString(t *testing.T) {
	if LayoutNHWC.String() != "NHWC" || LayoutNCHW.String() != "NCHW" {
		t.Errorf("unexpected layout strings: %s, %s", LayoutNHWC, LayoutNCHW)
	}
}
