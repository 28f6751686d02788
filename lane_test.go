package junction

import (
	"encoding/json"
	"testing"
)

func TestLane_AxisPairing(t *testing.T) {
	testCases := []struct {
		lane Lane
		axis Axis
	}{
		{Left, LeftRight},
		{Right, LeftRight},
		{Top, TopBottom},
		{Bottom, TopBottom},
	}

	for _, tc := range testCases {
		if tc.lane.Axis() != tc.axis {
			t.Errorf("Expected %s to belong to %s, got %s", tc.lane, tc.axis, tc.lane.Axis())
		}

		found := false
		for _, lane := range tc.axis.Lanes() {
			if lane == tc.lane {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected %s lanes to include %s", tc.axis, tc.lane)
		}
	}
}

func TestAxis_Other(t *testing.T) {
	if LeftRight.Other() != TopBottom {
		t.Errorf("Expected opposite of left-right to be top-bottom")
	}
	if TopBottom.Other() != LeftRight {
		t.Errorf("Expected opposite of top-bottom to be left-right")
	}
}

func TestParseLane(t *testing.T) {
	for _, lane := range Lanes {
		parsed, err := ParseLane(lane.String())
		if err != nil {
			t.Fatalf("Expected no error parsing %q, got: %v", lane.String(), err)
		}
		if parsed != lane {
			t.Errorf("Expected %s, got %s", lane, parsed)
		}
	}

	parsed, err := ParseLane("  TOP ")
	if err != nil || parsed != Top {
		t.Errorf("Expected case and space insensitive parse to give top, got %s (%v)", parsed, err)
	}

	_, err = ParseLane("diagonal")
	if !IsLaneError(err) {
		t.Errorf("Expected lane error for unknown lane, got %v", err)
	}
}

func TestParseAxis(t *testing.T) {
	testCases := map[string]Axis{
		"left-right": LeftRight,
		"left_right": LeftRight,
		"top-bottom": TopBottom,
		"TOP_BOTTOM": TopBottom,
	}

	for name, want := range testCases {
		got, err := ParseAxis(name)
		if err != nil {
			t.Errorf("Expected no error parsing %q, got: %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("Expected %q to parse as %s, got %s", name, want, got)
		}
	}

	if _, err := ParseAxis("north-south"); GetErrorCode(err) != ErrCodeUnknownLane {
		t.Errorf("Expected unknown lane code, got %v", GetErrorCode(err))
	}
}

func TestSignalState_GreenAxis(t *testing.T) {
	if _, ok := allRed().GreenAxis(); ok {
		t.Error("Expected no green axis while all red")
	}

	for _, axis := range Axes {
		signals := greenFor(axis)
		got, ok := signals.GreenAxis()
		if !ok || got != axis {
			t.Errorf("Expected %s green, got %s (ok=%v)", axis, got, ok)
		}
		for _, lane := range axis.Other().Lanes() {
			if signals.Color(lane) != Red {
				t.Errorf("Expected %s to be red while %s is green", lane, axis)
			}
		}
		if !signals.Consistent() {
			t.Errorf("Expected signals for %s to be consistent", axis)
		}
	}
}

func TestSignalState_Consistent(t *testing.T) {
	split := SignalState{Left: Green, Right: Red, Top: Red, Bottom: Red}
	if split.Consistent() {
		t.Error("Expected split axis to be inconsistent")
	}

	allGreen := SignalState{Green, Green, Green, Green}
	if allGreen.Consistent() {
		t.Error("Expected all green to be inconsistent")
	}
}

func TestSignalState_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(greenFor(TopBottom))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got: %v", err)
	}

	if decoded["top"] != "green" || decoded["bottom"] != "green" {
		t.Errorf("Expected top and bottom green, got %v", decoded)
	}
	if decoded["left"] != "red" || decoded["right"] != "red" {
		t.Errorf("Expected left and right red, got %v", decoded)
	}
}

func TestSignalState_UnmarshalJSON(t *testing.T) {
	var signals SignalState
	if err := json.Unmarshal([]byte(`{"left":"green","right":"GREEN"}`), &signals); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if signals != greenFor(LeftRight) {
		t.Errorf("Expected left-right green, got %v", signals)
	}

	if err := json.Unmarshal([]byte(`{"left":"amber"}`), &signals); err == nil {
		t.Error("Expected error for unknown color")
	}
	if err := json.Unmarshal([]byte(`{"north":"red"}`), &signals); err == nil {
		t.Error("Expected error for unknown lane")
	}
}
