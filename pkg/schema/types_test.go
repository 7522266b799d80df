package schema

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestStringType(t *testing.T) {
	st := String()

	if st.Name() != "string" {
		t.Errorf("Name() = %s, want string", st.Name())
	}
	if err := st.Validate("hello"); err != nil {
		t.Errorf("Validate(string) error = %v, want nil", err)
	}
	if err := st.Validate(42); err == nil {
		t.Error("Validate(int) should return error")
	}

	got, err := st.Coerce(35)
	if err != nil || got != "35" {
		t.Errorf("Coerce(35) = %v, %v; want \"35\", nil", got, err)
	}
	got, err = st.Coerce(nil)
	if err != nil || got != nil {
		t.Errorf("Coerce(nil) = %v, %v; want nil, nil", got, err)
	}
	got, _ = st.Coerce("")
	if got != "" {
		t.Errorf("Coerce(\"\") = %v; blank strings stay strings", got)
	}
}

func TestIntType_Coerce(t *testing.T) {
	it := Int()

	tests := []struct {
		name    string
		in      any
		want    any
		wantErr bool
	}{
		{"string", "20", 20, false},
		{"padded string", " 35 ", 35, false},
		{"leading zero is decimal", "020", 20, false},
		{"int passthrough", 13, 13, false},
		{"whole float", 30.0, 30, false},
		{"json number", json.Number("42"), 42, false},
		{"beyond float precision", "9007199254740993", 9007199254740993, false},
		{"json number beyond float precision", json.Number("9007199254740993"), 9007199254740993, false},
		{"exponent", "1e3", 1000, false},
		{"overflow", "99999999999999999999", "99999999999999999999", true},
		{"json fraction", json.Number("2.5"), "2.5", true},
		{"blank", "", nil, false},
		{"nil", nil, nil, false},
		{"fraction", "3.5", "3.5", true},
		{"garbage", "abc", "abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := it.Coerce(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Coerce(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Coerce(%v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIntType_Validate(t *testing.T) {
	it := Int()
	for _, v := range []any{42, int64(1), 42.0} {
		if err := it.Validate(v); err != nil {
			t.Errorf("Validate(%v) error = %v, want nil", v, err)
		}
	}
	for _, v := range []any{42.5, "42"} {
		if err := it.Validate(v); err == nil {
			t.Errorf("Validate(%v) should return error", v)
		}
	}
}

func TestFloatType(t *testing.T) {
	ft := Float()

	got, err := ft.Coerce("30.5")
	if err != nil || got != 30.5 {
		t.Errorf("Coerce(\"30.5\") = %v, %v", got, err)
	}
	if err := ft.Validate(3); err != nil {
		t.Errorf("Validate(int) error = %v, want nil", err)
	}
	if err := ft.Validate("3"); err == nil {
		t.Error("Validate(string) should return error")
	}
}

func TestBoolType(t *testing.T) {
	bt := Bool()

	for in, want := range map[string]bool{"true": true, "1": true, "false": false, "0": false} {
		got, err := bt.Coerce(in)
		if err != nil || got != want {
			t.Errorf("Coerce(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := bt.Coerce("maybe"); err == nil {
		t.Error("Coerce(\"maybe\") should return error")
	}
	if got, _ := bt.Coerce(" "); got != nil {
		t.Errorf("Coerce(blank) = %v, want nil", got)
	}
}

func TestSliceType(t *testing.T) {
	st := Slice(Int())

	if st.Name() != "[int]" {
		t.Errorf("Name() = %s, want [int]", st.Name())
	}

	got, err := st.Coerce([]string{"1", "2"})
	if err != nil {
		t.Fatalf("Coerce error = %v", err)
	}
	items := got.([]any)
	if len(items) != 2 || items[0] != 1 || items[1] != 2 {
		t.Errorf("Coerce = %#v, want [1 2]", items)
	}
	if err := st.Validate(items); err != nil {
		t.Errorf("Validate(coerced) error = %v", err)
	}
	if err := st.Validate([]any{"x"}); err == nil {
		t.Error("Validate([x]) should return error")
	}
	if _, err := st.Coerce([]string{"x"}); err == nil {
		t.Error("Coerce([x]) should return error")
	}
}

func TestCustomType(t *testing.T) {
	postcode := Custom("postcode", func(v any) error {
		s, ok := v.(string)
		if !ok || len(s) < 5 {
			return errors.New("not a postcode")
		}
		return nil
	})

	if postcode.Name() != "postcode" {
		t.Errorf("Name() = %s", postcode.Name())
	}
	if err := postcode.Validate("TE571NG"); err != nil {
		t.Errorf("Validate error = %v", err)
	}
	if got, _ := postcode.Coerce(12); got != 12 {
		t.Errorf("custom types do not coerce, got %v", got)
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"string", "string", false},
		{"", "string", false},
		{"int", "int", false},
		{"integer", "int", false},
		{"float", "float", false},
		{"bool", "bool", false},
		{"[string]", "[string]", false},
		{"[int]", "[int]", false},
		{"date", "", true},
		{"[date]", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got.Name() != tt.want {
				t.Errorf("ParseType(%q) = %s, want %s", tt.input, got.Name(), tt.want)
			}
		})
	}
}
