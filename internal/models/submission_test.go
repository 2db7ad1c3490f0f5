package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFieldValueString(t *testing.T) {
	if got := ScalarValue("hello").String(); got != "hello" {
		t.Errorf("scalar String() = %q", got)
	}
	if got := ListValue([]string{"a", "b", "c"}).String(); got != "a, b, c" {
		t.Errorf("list String() = %q", got)
	}
	if got := ListValue(nil).String(); got != "" {
		t.Errorf("empty list String() = %q", got)
	}
}

func TestFieldValueJSON(t *testing.T) {
	raw, err := json.Marshal(ScalarValue("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `"hello"` {
		t.Errorf("scalar marshals as %s, want bare string", raw)
	}

	raw, err = json.Marshal(ListValue([]string{"a", "b"}))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `["a","b"]` {
		t.Errorf("list marshals as %s, want array", raw)
	}

	raw, err = json.Marshal(ListValue(nil))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `[]` {
		t.Errorf("nil list marshals as %s, want empty array", raw)
	}

	var v FieldValue
	if err := json.Unmarshal([]byte(`"hello"`), &v); err != nil {
		t.Fatal(err)
	}
	if v.IsList || v.Scalar != "hello" {
		t.Errorf("string unmarshals as %+v", v)
	}

	if err := json.Unmarshal([]byte(`["a","b"]`), &v); err != nil {
		t.Fatal(err)
	}
	if !v.IsList || !reflect.DeepEqual(v.List, []string{"a", "b"}) {
		t.Errorf("array unmarshals as %+v", v)
	}

	if err := json.Unmarshal([]byte(`42`), &v); err == nil {
		t.Error("numbers must not unmarshal into a field value")
	}
}

func TestValueMapColumnRoundTrip(t *testing.T) {
	m := ValueMap{
		"Name":   ScalarValue("Ann"),
		"Topics": ListValue([]string{"News", "Sports"}),
	}

	col, err := m.Value()
	if err != nil {
		t.Fatal(err)
	}

	var back ValueMap
	if err := back.Scan(col); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, m) {
		t.Errorf("Column round trip mismatch:\n got %+v\nwant %+v", back, m)
	}
}

func TestScanJSONSources(t *testing.T) {
	var l FieldList
	if err := l.Scan([]byte(`[{"label":"Name","type":"text"}]`)); err != nil {
		t.Fatalf("Scan bytes: %v", err)
	}
	if len(l) != 1 || l[0].Label != "Name" || l[0].Kind != FieldText {
		t.Errorf("Scanned %+v", l)
	}

	var l2 FieldList
	if err := l2.Scan(`[{"label":"Email","type":"email"}]`); err != nil {
		t.Fatalf("Scan string: %v", err)
	}
	if len(l2) != 1 || l2[0].Kind != FieldEmail {
		t.Errorf("Scanned %+v", l2)
	}

	var l3 FieldList
	if err := l3.Scan(nil); err != nil {
		t.Fatalf("Scan nil: %v", err)
	}
	if l3 != nil {
		t.Errorf("nil column must leave the list nil, got %+v", l3)
	}

	if err := l3.Scan(42); err == nil {
		t.Error("unsupported column types must error")
	}
}
