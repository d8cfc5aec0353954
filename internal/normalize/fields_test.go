package normalize

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFieldsMergePromotesToList(t *testing.T) {
	f := NewFields()
	f.Add("A", "1")

	v, _ := f.Get("A")
	if v.IsList() {
		t.Fatal("single value should stay scalar")
	}

	f.Add("A", "2")
	v, _ = f.Get("A")
	if !v.IsList() {
		t.Fatal("repeated key should promote to list")
	}
	if !reflect.DeepEqual(v.Values(), []string{"1", "2"}) {
		t.Fatalf("values=%v", v.Values())
	}

	f.Add("A", "3")
	v, _ = f.Get("A")
	if !reflect.DeepEqual(v.Values(), []string{"1", "2", "3"}) {
		t.Fatalf("values=%v", v.Values())
	}
}

func TestFieldsKeyOrder(t *testing.T) {
	f := NewFields()
	f.Add("z", "1")
	f.Add("a", "2")
	f.Add("m", "3")
	f.Add("a", "4")

	if !reflect.DeepEqual(f.Keys(), []string{"z", "a", "m"}) {
		t.Fatalf("keys=%v", f.Keys())
	}

	blob, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"z":"1","a":["2","4"],"m":"3"}`
	if string(blob) != want {
		t.Fatalf("got %s want %s", blob, want)
	}
}

func TestFieldsJSONRoundTrip(t *testing.T) {
	f := NewFields()
	f.Add("Owner", "SMITH JOHN")
	f.Add("Exemption", "Homestead")
	f.Add("Exemption", "Over 65")

	blob, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}

	var back Fields
	if err := json.Unmarshal(blob, &back); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(&back, f) {
		t.Fatalf("round trip mismatch: %+v vs %+v", &back, f)
	}

	again, err := json.Marshal(&back)
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != string(blob) {
		t.Fatalf("second marshal differs: %s vs %s", again, blob)
	}
}

func TestFieldValueRejectsNonString(t *testing.T) {
	var v FieldValue
	if err := json.Unmarshal([]byte(`42`), &v); err == nil {
		t.Fatal("expected error for numeric value")
	}
}

func TestNilFieldsAccessors(t *testing.T) {
	var f *Fields
	if f.Len() != 0 {
		t.Fatal("nil Fields should have zero length")
	}
	if keys := f.Keys(); keys != nil {
		t.Fatalf("keys=%v", keys)
	}
	if _, ok := f.Get("x"); ok {
		t.Fatal("nil Fields should not contain keys")
	}
}
