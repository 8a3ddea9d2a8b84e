package tensor

import "testing"

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	if !raw.Shape().Equal(Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", raw.Shape())
	}
	if raw.DType() != Float32 {
		t.Errorf("DType() = %v, want Float32", raw.DType())
	}
	if raw.NumElements() != 6 {
		t.Errorf("NumElements() = %d, want 6", raw.NumElements())
	}
	if len(raw.Data()) != 6*4 {
		t.Errorf("Data() length = %d, want 24", len(raw.Data()))
	}
}

func TestNewRaw_InvalidShape(t *testing.T) {
	if _, err := NewRaw(Shape{2, 0}, Float32, CPU); err == nil {
		t.Error("NewRaw with zero dimension should fail")
	}
}

func TestRawTensor_TypedViews(t *testing.T) {
	raw, _ := NewRaw(Shape{4}, Float32, CPU)

	view := raw.AsFloat32()
	view[2] = 1.5
	if raw.AsFloat32()[2] != 1.5 {
		t.Error("typed view should write through to the buffer")
	}

	defer func() {
		if recover() == nil {
			t.Error("AsInt32 on a float32 tensor should panic")
		}
	}()
	raw.AsInt32()
}

func TestRawTensor_CloneSharesBuffer(t *testing.T) {
	raw, _ := NewRaw(Shape{3}, Float32, CPU)
	raw.AsFloat32()[0] = 7

	clone := raw.Clone()
	if clone.AsFloat32()[0] != 7 {
		t.Error("clone should see the original's data")
	}
	if raw.IsUnique() || clone.IsUnique() {
		t.Error("neither tensor should be unique after Clone")
	}

	clone.AsFloat32()[1] = 9
	if raw.AsFloat32()[1] != 9 {
		t.Error("clone writes should be visible through the original")
	}

	clone.Release()
	if !raw.IsUnique() {
		t.Error("original should be unique again after the clone is released")
	}
}

func TestRawTensor_CloneHasIndependentShape(t *testing.T) {
	raw, _ := NewRaw(Shape{2, 3}, Float32, CPU)
	clone := raw.Clone()
	clone.Shape()[0] = 99
	if raw.Shape()[0] != 2 {
		t.Error("clone shape should not share storage")
	}
}

func TestRawTensor_ForceNonUnique(t *testing.T) {
	raw, _ := NewRaw(Shape{2}, Float32, CPU)
	if !raw.IsUnique() {
		t.Fatal("fresh tensor should be unique")
	}

	restore := raw.ForceNonUnique()
	if raw.IsUnique() {
		t.Error("tensor should not report unique while pinned")
	}

	restore()
	if !raw.IsUnique() {
		t.Error("tensor should be unique again after restore")
	}
}

func TestDataTypeSizeAndString(t *testing.T) {
	cases := []struct {
		dtype DataType
		size  int
		name  string
	}{
		{Float32, 4, "float32"},
		{Float64, 8, "float64"},
		{Int32, 4, "int32"},
		{Uint8, 1, "uint8"},
	}
	for _, c := range cases {
		if c.dtype.Size() != c.size {
			t.Errorf("%s Size() = %d, want %d", c.name, c.dtype.Size(), c.size)
		}
		if c.dtype.String() != c.name {
			t.Errorf("String() = %q, want %q", c.dtype.String(), c.name)
		}
	}
}
