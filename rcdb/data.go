package rcdb

import "time"

// Value is a single decoded condition reading, tagged by the owning
// condition type's declared ValueType.
type Value struct {
	valueType ValueType
	text      *string
	i64       int64
	f64       float64
	boolean   bool
	t         time.Time
}

func textValue(vt ValueType, text *string) Value { return Value{valueType: vt, text: text} }
func intValue(v int64) Value                     { return Value{valueType: ValueInt, i64: v} }
func floatValue(v float64) Value                 { return Value{valueType: ValueFloat, f64: v} }
func boolValue(v bool) Value                     { return Value{valueType: ValueBool, boolean: v} }
func timeValue(v time.Time) Value                { return Value{valueType: ValueTime, t: v} }

// Type reports which accessor is valid for this value.
func (v Value) Type() ValueType { return v.valueType }

// AsString returns the value's text payload if it is textual
// (string/json/blob); the bool is false for a SQL NULL or a non-textual
// type.
func (v Value) AsString() (string, bool) {
	if !v.valueType.isTextual() || v.text == nil {
		return "", false
	}
	return *v.text, true
}

// AsInt returns the value as int64 if Type() == ValueInt.
func (v Value) AsInt() (int64, bool) {
	if v.valueType != ValueInt {
		return 0, false
	}
	return v.i64, true
}

// AsFloat returns the value as float64 if Type() == ValueFloat.
func (v Value) AsFloat() (float64, bool) {
	if v.valueType != ValueFloat {
		return 0, false
	}
	return v.f64, true
}

// AsBool returns the value as bool if Type() == ValueBool.
func (v Value) AsBool() (bool, bool) {
	if v.valueType != ValueBool {
		return false, false
	}
	return v.boolean, true
}

// AsTime returns the value as a time.Time if Type() == ValueTime.
func (v Value) AsTime() (time.Time, bool) {
	if v.valueType != ValueTime {
		return time.Time{}, false
	}
	return v.t, true
}
