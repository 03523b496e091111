package timeline

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

type ValueKind string

const (
	KindInt    ValueKind = "int"
	KindFloat  ValueKind = "float"
	KindString ValueKind = "string"
)

// Value is an effect parameter or keyframe value. Kind says which field is
// meaningful.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Str   string
}

func IntValue(v int64) Value { return Value{Kind: KindInt, Int: v} }
func FloatValue(v float64) Value { return Value{Kind: KindFloat, Float: v} }
func StringValue(v string) Value { return Value{Kind: KindString, Str: v} }

// AsFloat widens numeric kinds. Strings are parsed, falling back to zero.
func (v Value) AsFloat() float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.Int)
	case KindFloat:
		return v.Float
	default:
		f, _ := strconv.ParseFloat(v.Str, 64)
		return f
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return v.Str
	}
}

type valueJSON struct {
	Kind  ValueKind       `json:"kind"`
	Value json.RawMessage `json:"value"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	var raw any
	switch v.Kind {
	case KindInt:
		raw = v.Int
	case KindFloat:
		raw = v.Float
	case KindString:
		raw = v.Str
	default:
		return nil, fmt.Errorf("unknown value kind %q", v.Kind)
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(valueJSON{Kind: v.Kind, Value: payload})
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var in valueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := Value{Kind: in.Kind}
	var err error
	switch in.Kind {
	case KindInt:
		err = json.Unmarshal(in.Value, &out.Int)
	case KindFloat:
		err = json.Unmarshal(in.Value, &out.Float)
	case KindString:
		err = json.Unmarshal(in.Value, &out.Str)
	default:
		return fmt.Errorf("unknown value kind %q", in.Kind)
	}
	if err != nil {
		return fmt.Errorf("decode %s value: %w", in.Kind, err)
	}
	*v = out
	return nil
}

type Effect struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Params map[string]Value `json:"params,omitempty"`
}

func (e *Effect) Clone() *Effect {
	out := *e
	if e.Params != nil {
		out.Params = make(map[string]Value, len(e.Params))
		for k, v := range e.Params {
			out.Params[k] = v
		}
	}
	return &out
}

type Keyframe struct {
	Frame int   `json:"frame"`
	Value Value `json:"value"`
}

// KeyframeTrack animates one parameter. Frames are clip-relative and kept
// sorted.
type KeyframeTrack struct {
	Param string     `json:"param"`
	Keys  []Keyframe `json:"keys"`
}

func (k *KeyframeTrack) Clone() *KeyframeTrack {
	out := *k
	out.Keys = append([]Keyframe(nil), k.Keys...)
	return &out
}

// Set inserts or replaces the keyframe at frame.
func (k *KeyframeTrack) Set(frame int, v Value) {
	i := sort.Search(len(k.Keys), func(i int) bool { return k.Keys[i].Frame >= frame })
	if i < len(k.Keys) && k.Keys[i].Frame == frame {
		k.Keys[i].Value = v
		return
	}
	k.Keys = append(k.Keys, Keyframe{})
	copy(k.Keys[i+1:], k.Keys[i:])
	k.Keys[i] = Keyframe{Frame: frame, Value: v}
}

// ValueAt interpolates linearly between float keys and holds the previous
// key for ints and strings. ok is false when the track has no keys.
func (k *KeyframeTrack) ValueAt(frame int) (Value, bool) {
	if len(k.Keys) == 0 {
		return Value{}, false
	}
	if frame <= k.Keys[0].Frame {
		return k.Keys[0].Value, true
	}
	last := k.Keys[len(k.Keys)-1]
	if frame >= last.Frame {
		return last.Value, true
	}
	i := sort.Search(len(k.Keys), func(i int) bool { return k.Keys[i].Frame > frame })
	prev, next := k.Keys[i-1], k.Keys[i]
	if prev.Value.Kind != KindFloat || next.Value.Kind != KindFloat {
		return prev.Value, true
	}
	t := float64(frame-prev.Frame) / float64(next.Frame-prev.Frame)
	return FloatValue(prev.Value.Float + t*(next.Value.Float-prev.Value.Float)), true
}
