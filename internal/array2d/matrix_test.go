package array2d

import "testing"

func TestMatrixRowIsContiguousView(t *testing.T) {
	m := New(3, 4)
	row := m.Row(1)
	row[2] = 9
	if got := m.At(1, 2); got != 9 {
		t.Errorf("expected write through row view, got %v", got)
	}
}

func TestMatrixColStride(t *testing.T) {
	m := New(3, 4)
	for r := 0; r < 3; r++ {
		m.Set(r, 1, float64(r+1))
	}
	col := m.Col(1)
	if col.Len() != 3 {
		t.Fatalf("expected column length 3, got %d", col.Len())
	}
	for r := 0; r < 3; r++ {
		if got := col.AtVec(r); got != float64(r+1) {
			t.Errorf("col[%d] = %v, want %v", r, got, r+1)
		}
	}
}

func TestNewFilled(t *testing.T) {
	m := NewFilled(2, 2, -100)
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			if got := m.At(r, c); got != -100 {
				t.Errorf("At(%d,%d) = %v, want -100", r, c, got)
			}
		}
	}
}

func TestByteMatrixRowAndCol(t *testing.T) {
	m := NewByte(2, 3)
	m.Set(0, 0, 1)
	m.Set(1, 0, 1)

	row := m.Row(0)
	if row[0] != 1 || row[1] != 0 {
		t.Errorf("unexpected row contents: %v", row)
	}

	col := m.Col(0)
	if col.Len() != 2 {
		t.Fatalf("expected column length 2, got %d", col.Len())
	}
	if col.At(0) != 1 || col.At(1) != 1 {
		t.Errorf("unexpected column contents")
	}
}

func TestByteMatrixEqual(t *testing.T) {
	a := NewByteFilled(2, 2, 1)
	b := NewByteFilled(2, 2, 1)
	if !a.Equal(b) {
		t.Error("expected equal byte matrices")
	}
	b.Set(0, 0, 0)
	if a.Equal(b) {
		t.Error("expected byte matrices to differ")
	}
}
