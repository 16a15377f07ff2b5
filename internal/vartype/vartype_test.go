// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package vartype

import (
	"encoding/json"
	"testing"
)

func TestNewVariable(t *testing.T) {
	v := NewVariable(12.5)
	if !v.IsSet() {
		t.Error("expected variable to be set")
	}
	if v.Value() != 12.5 {
		t.Errorf("expected value to be 12.5, got %f", v.Value())
	}
	v.Reset()
	if v.IsSet() {
		t.Error("expected variable to be unset after reset")
	}
	if v.Value() != 0 {
		t.Errorf("expected value to be zero after reset, got %f", v.Value())
	}
}

func TestVariable_String(t *testing.T) {
	var v VarInt
	if v.String() != "Not provided by weather provider" {
		t.Errorf("unexpected placeholder for unset variable: %q", v.String())
	}
	v.Set(42)
	if v.String() != "42" {
		t.Errorf("expected string to be %q, got %q", "42", v.String())
	}
}

func TestVariable_UnmarshalJSON(t *testing.T) {
	type payload struct {
		Temp VarFloat64 `json:"temp"`
		Deg  VarInt     `json:"deg"`
		Icon VarString  `json:"icon"`
	}
	tests := []struct {
		name     string
		data     string
		tempSet  bool
		degSet   bool
		iconSet  bool
		wantFail bool
	}{
		{"all keys present", `{"temp":21.3,"deg":180,"icon":"01d"}`, true, true, true, false},
		{"missing key stays unset", `{"temp":21.3,"icon":"01d"}`, true, false, true, false},
		{"null counts as missing", `{"temp":null,"deg":0,"icon":""}`, false, true, true, false},
		{"zero values are set", `{"temp":0,"deg":0,"icon":""}`, true, true, true, false},
		{"wrong type fails", `{"temp":"warm"}`, false, false, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var p payload
			err := json.Unmarshal([]byte(tc.data), &p)
			if tc.wantFail {
				if err == nil {
					t.Fatal("expected unmarshal to fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("failed to unmarshal: %s", err)
			}
			if p.Temp.IsSet() != tc.tempSet {
				t.Errorf("temp: expected isset %t, got %t", tc.tempSet, p.Temp.IsSet())
			}
			if p.Deg.IsSet() != tc.degSet {
				t.Errorf("deg: expected isset %t, got %t", tc.degSet, p.Deg.IsSet())
			}
			if p.Icon.IsSet() != tc.iconSet {
				t.Errorf("icon: expected isset %t, got %t", tc.iconSet, p.Icon.IsSet())
			}
		})
	}
}
