package classifier

import (
	"errors"
	"testing"
)

func demoFactory() Factory {
	return func() (Classifier, error) {
		return NewLinear("demo", [][]float64{{1, 0}, {0, 1}}, []float64{0, 0}, demoMeta())
	}
}

func TestRegisterAndResolve(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	if err := Register("demo", demoFactory()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	c, err := Resolve("demo")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if c.Name() != "demo" {
		t.Fatalf("name got=%s want=demo", c.Name())
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	if err := Register("demo", demoFactory()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := Register("demo", demoFactory()); !errors.Is(err, ErrExists) {
		t.Fatalf("duplicate register error got=%v want=%v", err, ErrExists)
	}
}

func TestRegisterValidation(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	if err := Register("", demoFactory()); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := Register("demo", nil); err == nil {
		t.Fatalf("expected error for nil factory")
	}
}

func TestResolveUnknown(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	if _, err := Resolve("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown resolve error got=%v want=%v", err, ErrNotFound)
	}
}

func TestNamesSorted(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := Register(name, demoFactory()); err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}

	names := Names()
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("names length got=%d want=%d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names[%d] got=%s want=%s", i, names[i], want[i])
		}
	}
}
