package render

import "testing"

func TestPlaceImage(t *testing.T) {
	tests := []struct {
		name         string
		imgW, imgH   int
		cols, rows   int
		want         placement
		wantCellRows int
	}{
		{"small image keeps size", 4, 4, 80, 20, placement{x: 38, y: 9, width: 4, height: 4}, 2},
		{"wide image fills columns", 1600, 400, 80, 20, placement{x: 0, y: 5, width: 80, height: 20}, 10},
		{"tall image fills rows", 300, 1200, 80, 20, placement{x: 35, y: 0, width: 10, height: 40}, 20},
		{"odd pixel height rounds up cells", 3, 3, 10, 10, placement{x: 3, y: 4, width: 3, height: 3}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := placeImage(tt.imgW, tt.imgH, tt.cols, tt.rows)
			if !ok {
				t.Fatal("expected placement")
			}
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
			if got.cellRows() != tt.wantCellRows {
				t.Fatalf("expected %d cell rows, got %d", tt.wantCellRows, got.cellRows())
			}
		})
	}
}

func TestPlaceImageRejectsEmptyArea(t *testing.T) {
	if _, ok := placeImage(10, 10, 0, 5); ok {
		t.Fatal("expected no placement for zero columns")
	}
	if _, ok := placeImage(0, 10, 10, 5); ok {
		t.Fatal("expected no placement for empty image")
	}
}
