package tdl

import (
	"reflect"
	"testing"
)

type examplePoint struct {
	X int32
	Y int32
}

func TestToTDLType_Primitives(t *testing.T) {
	tests := []struct {
		value any
		want  Kind
	}{
		{true, KindBool},
		{int8(1), KindInt8},
		{int16(1), KindInt16},
		{int32(1), KindInt32},
		{int64(1), KindInt64},
		{float32(1), KindFloat},
		{float64(1), KindDouble},
		{[]byte("x"), KindBytes},
	}
	for _, tt := range tests {
		got, err := ToTDLType(reflect.TypeOf(tt.value))
		if err != nil {
			t.Fatalf("ToTDLType(%T): unexpected error: %v", tt.value, err)
		}
		if got.Kind != tt.want {
			t.Errorf("ToTDLType(%T).Kind = %v, want %v", tt.value, got.Kind, tt.want)
		}
	}
}

func TestToTDLType_RejectsAmbiguousWidths(t *testing.T) {
	bad := []any{int(1), uint(1), "a string", complex64(1)}
	for _, v := range bad {
		if _, err := ToTDLType(reflect.TypeOf(v)); err == nil {
			t.Errorf("ToTDLType(%T): expected an error", v)
		}
	}
}

func TestToTDLType_ListAndMap(t *testing.T) {
	listType, err := ToTDLType(reflect.TypeOf([]int32{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listType.String() != "List<int32>" {
		t.Errorf("got %s", listType)
	}

	mapType, err := ToTDLType(reflect.TypeOf(map[int64][]byte{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mapType.String() != "Map<int64,bytes>" {
		t.Errorf("got %s", mapType)
	}
}

func TestToTDLType_Struct(t *testing.T) {
	typ, err := ToTDLType(reflect.TypeOf(examplePoint{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typ.Kind != KindClass {
		t.Fatalf("expected KindClass, got %v", typ.Kind)
	}
	want := ClassName(reflect.TypeOf(examplePoint{}))
	if typ.ClassName != want {
		t.Errorf("ClassName = %q, want %q", typ.ClassName, want)
	}
}

func TestRegisterAndResolveClass(t *testing.T) {
	name := ClassName(reflect.TypeOf(examplePoint{}))
	Register(name, examplePoint{})

	resolved, err := ResolveClass(name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != reflect.TypeOf(examplePoint{}) {
		t.Errorf("resolved type mismatch: %v", resolved)
	}
}

func TestResolveClass_UnknownName(t *testing.T) {
	if _, err := ResolveClass("does.not.Exist"); err == nil {
		t.Error("expected an error for an unregistered class name")
	}
}
