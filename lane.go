package junction

import (
	"encoding/json"
	"strings"
)

// Lane identifies one approach of the intersection
type Lane int

const (
	// Left is the western approach
	Left Lane = iota
	// Right is the eastern approach
	Right
	// Top is the northern approach
	Top
	// Bottom is the southern approach
	Bottom
)

// NumLanes is the fixed number of approaches
const NumLanes = 4

// Lanes lists every lane in draw order
var Lanes = [NumLanes]Lane{Left, Right, Top, Bottom}

var laneNames = [NumLanes]string{"left", "right", "top", "bottom"}

func (l Lane) String() string {
	if !l.Valid() {
		return "unknown"
	}
	return laneNames[l]
}

// Valid reports whether l is one of the four lanes
func (l Lane) Valid() bool {
	return l >= Left && l <= Bottom
}

// Axis returns the axis this lane belongs to
func (l Lane) Axis() Axis {
	if l == Top || l == Bottom {
		return TopBottom
	}
	return LeftRight
}

// MarshalText encodes the lane by name
func (l Lane) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, NewLaneError("lane", l.String())
	}
	return []byte(l.String()), nil
}

// UnmarshalText decodes a lane name
func (l *Lane) UnmarshalText(text []byte) error {
	parsed, err := ParseLane(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLane converts a lane name into a Lane
func ParseLane(name string) (Lane, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i, n := range laneNames {
		if n == normalized {
			return Lane(i), nil
		}
	}
	return Left, NewLaneError("lane", name)
}

// Axis is a pair of opposing lanes that share right-of-way
type Axis int

const (
	// LeftRight pairs the left and right lanes
	LeftRight Axis = iota
	// TopBottom pairs the top and bottom lanes
	TopBottom
)

// Axes lists both axes
var Axes = [2]Axis{LeftRight, TopBottom}

func (a Axis) String() string {
	switch a {
	case LeftRight:
		return "left-right"
	case TopBottom:
		return "top-bottom"
	default:
		return "unknown"
	}
}

// Lanes returns the two lanes of the axis
func (a Axis) Lanes() [2]Lane {
	if a == TopBottom {
		return [2]Lane{Top, Bottom}
	}
	return [2]Lane{Left, Right}
}

// Other returns the opposing axis
func (a Axis) Other() Axis {
	if a == TopBottom {
		return LeftRight
	}
	return TopBottom
}

// MarshalText encodes the axis by name
func (a Axis) MarshalText() ([]byte, error) {
	if a != LeftRight && a != TopBottom {
		return nil, NewLaneError("axis", a.String())
	}
	return []byte(a.String()), nil
}

// UnmarshalText decodes an axis name
func (a *Axis) UnmarshalText(text []byte) error {
	parsed, err := ParseAxis(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAxis converts an axis name into an Axis. Underscores are accepted
// in place of the hyphen.
func ParseAxis(name string) (Axis, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for _, a := range Axes {
		if a.String() == normalized {
			return a, nil
		}
	}
	return LeftRight, NewLaneError("axis", name)
}

// Color is the signal aspect shown to a lane
type Color int

const (
	// Red holds traffic
	Red Color = iota
	// Green releases traffic
	Green
)

func (c Color) String() string {
	if c == Green {
		return "green"
	}
	return "red"
}

// MarshalText encodes the color by name
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a color name
func (c *Color) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "green":
		*c = Green
	case "red":
		*c = Red
	default:
		return NewLaneError("color", string(text))
	}
	return nil
}

// SignalState holds the color shown to each lane
type SignalState [NumLanes]Color

// Color returns the color shown to lane
func (s SignalState) Color(lane Lane) Color {
	return s[lane]
}

// GreenAxis returns the axis whose lanes are both green. The second value
// is false before the first phase, when every lane is red.
func (s SignalState) GreenAxis() (Axis, bool) {
	for _, a := range Axes {
		lanes := a.Lanes()
		if s[lanes[0]] == Green && s[lanes[1]] == Green {
			return a, true
		}
	}
	return LeftRight, false
}

// Consistent reports whether the signals show at most one green axis with
// both of its lanes sharing the same color
func (s SignalState) Consistent() bool {
	greens := 0
	for _, a := range Axes {
		lanes := a.Lanes()
		if s[lanes[0]] != s[lanes[1]] {
			return false
		}
		if s[lanes[0]] == Green {
			greens++
		}
	}
	return greens <= 1
}

// MarshalJSON encodes the signals as an object keyed by lane name
func (s SignalState) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, NumLanes)
	for _, lane := range Lanes {
		out[lane.String()] = s[lane].String()
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an object keyed by lane name. Missing lanes are red.
func (s *SignalState) UnmarshalJSON(data []byte) error {
	var in map[string]Color
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := allRed()
	for name, color := range in {
		lane, err := ParseLane(name)
		if err != nil {
			return err
		}
		out[lane] = color
	}
	*s = out
	return nil
}

// allRed returns the construction state of the signals
func allRed() SignalState {
	return SignalState{Red, Red, Red, Red}
}

// greenFor resets every lane to red, then turns the axis lanes green
func greenFor(axis Axis) SignalState {
	signals := allRed()
	for _, lane := range axis.Lanes() {
		signals[lane] = Green
	}
	return signals
}
