package enhance

import (
	"errors"
	"reflect"
	"testing"
)

func TestRegisteredMethods(t *testing.T) {
	manager := NewManager()

	want := []string{"clahe", "power_law", "thresholding"}
	if got := manager.GetAvailableMethods(); !reflect.DeepEqual(got, want) {
		t.Errorf("GetAvailableMethods() = %v, want %v", got, want)
	}

	for _, name := range want {
		method, err := manager.GetMethod(name)
		if err != nil {
			t.Errorf("GetMethod(%q) failed: %v", name, err)
			continue
		}
		if method.GetName() != name {
			t.Errorf("method registered under %q reports name %q", name, method.GetName())
		}
	}
}

func TestUnknownMethod(t *testing.T) {
	manager := NewManager()

	_, err := manager.GetMethod("histogram_stretch")
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestGetParametersReturnsCopy(t *testing.T) {
	manager := NewManager()

	first := manager.GetParameters("power_law")
	first["gamma"] = 99.0

	second := manager.GetParameters("power_law")
	if second["gamma"] == 99.0 {
		t.Error("GetParameters leaked internal parameter map")
	}
}

func TestSetParameter(t *testing.T) {
	manager := NewManager()

	if err := manager.SetParameter("power_law", "gamma", 0.8); err != nil {
		t.Fatalf("SetParameter failed: %v", err)
	}

	if got := manager.GetParameters("power_law")["gamma"]; got != 0.8 {
		t.Errorf("gamma = %v, want 0.8", got)
	}

	if err := manager.SetParameter("no_such_method", "gamma", 0.8); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for unknown method, got %v", err)
	}
}
