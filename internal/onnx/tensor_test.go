package onnx

import (
	"reflect"
	"strings"
	"testing"
)

func TestNewTensor(t *testing.T) {
	t.Run("float32 ok", func(t *testing.T) {
		tt, err := NewTensor([]float32{1, 2, 3, 4}, []int64{2, 2})
		if err != nil {
			t.Fatalf("NewTensor failed: %v", err)
		}

		if tt.DType() != DTypeFloat32 {
			t.Fatalf("expected dtype float32, got %s", tt.DType())
		}

		if !reflect.DeepEqual(tt.Shape(), []int64{2, 2}) {
			t.Fatalf("unexpected shape: %v", tt.Shape())
		}

		got, err := tt.Float32s()
		if err != nil {
			t.Fatalf("Float32s failed: %v", err)
		}

		if !reflect.DeepEqual(got, []float32{1, 2, 3, 4}) {
			t.Fatalf("unexpected data: %v", got)
		}
	})

	t.Run("int64 ok", func(t *testing.T) {
		tt, err := NewTensor([]int64{0, 43, 0}, []int64{1, 3})
		if err != nil {
			t.Fatalf("NewTensor failed: %v", err)
		}

		got, err := tt.Int64s()
		if err != nil {
			t.Fatalf("Int64s failed: %v", err)
		}

		if !reflect.DeepEqual(got, []int64{0, 43, 0}) {
			t.Fatalf("unexpected data: %v", got)
		}

		if _, err := tt.Float32s(); err == nil {
			t.Fatal("expected dtype mismatch error")
		}
	})

	t.Run("scalar shape", func(t *testing.T) {
		if _, err := NewTensor([]float32{1}, nil); err != nil {
			t.Fatalf("NewTensor failed: %v", err)
		}
	})

	t.Run("shape mismatch", func(t *testing.T) {
		_, err := NewTensor([]int64{1, 2, 3}, []int64{2, 2})
		if err == nil {
			t.Fatal("expected shape mismatch error")
		}

		if !strings.Contains(err.Error(), "expects 4 elements, got 3") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("non-positive dim", func(t *testing.T) {
		_, err := NewTensor([]float32{}, []int64{1, 0})
		if err == nil || !strings.Contains(err.Error(), "not positive") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestTensorAccessorsCopy(t *testing.T) {
	tt, err := NewTensor([]float32{1, 2}, []int64{2})
	if err != nil {
		t.Fatalf("NewTensor failed: %v", err)
	}

	shape := tt.Shape()
	shape[0] = 99
	data := tt.Data().([]float32)
	data[0] = 99

	if tt.Shape()[0] != 2 {
		t.Fatal("Shape() exposed internal slice")
	}

	got, _ := tt.Float32s()
	if got[0] != 1 {
		t.Fatal("Data() exposed internal slice")
	}
}

func TestNilTensorAccessors(t *testing.T) {
	var tt *Tensor
	if _, err := tt.Float32s(); err == nil {
		t.Fatal("expected error for nil tensor")
	}
	if _, err := tt.Int64s(); err == nil {
		t.Fatal("expected error for nil tensor")
	}
}
