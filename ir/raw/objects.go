package raw

// Name object
type NameObj struct{ Val string }

func (n NameObj) Type() string  { return "name" }
func (n NameObj) Value() string { return n.Val }

// Number object
type NumberObj struct {
	I     int64
	F     float64
	IsInt bool
}

func (n NumberObj) Type() string { return "number" }
func (n NumberObj) Float() float64 {
	if n.IsInt {
		return float64(n.I)
	}
	return n.F
}

// Boolean object
type BoolObj struct{ V bool }

func (b BoolObj) Type() string { return "boolean" }

// String object. Hex strings are written as <...>.
type StringObj struct {
	Bytes []byte
	Hex   bool
}

func (s StringObj) Type() string { return "string" }

// Array object
type ArrayObj struct{ Items []Object }

func (a *ArrayObj) Type() string    { return "array" }
func (a *ArrayObj) Len() int        { return len(a.Items) }
func (a *ArrayObj) Append(o Object) { a.Items = append(a.Items, o) }

// Dictionary object
type DictObj struct{ KV map[string]Object }

func (d *DictObj) Type() string { return "dict" }
func (d *DictObj) Get(key string) (Object, bool) {
	o, ok := d.KV[key]
	return o, ok
}

// Set stores value under key and returns d for chaining.
func (d *DictObj) Set(key string, value Object) *DictObj {
	if d.KV == nil {
		d.KV = make(map[string]Object)
	}
	d.KV[key] = value
	return d
}
func (d *DictObj) Len() int { return len(d.KV) }

// Stream object. Data is written as-is; /Length is filled in by the writer.
type StreamObj struct {
	Dict *DictObj
	Data []byte
}

func (s *StreamObj) Type() string { return "stream" }

// Reference object
type RefObj struct{ R ObjectRef }

func (r RefObj) Type() string { return "ref" }

// Helpers
func NameLiteral(v string) NameObj                    { return NameObj{Val: v} }
func NumberInt(i int64) NumberObj                     { return NumberObj{I: i, IsInt: true} }
func NumberFloat(f float64) NumberObj                 { return NumberObj{F: f} }
func Bool(v bool) BoolObj                             { return BoolObj{V: v} }
func Str(bytes []byte) StringObj                      { return StringObj{Bytes: bytes} }
func HexStr(bytes []byte) StringObj                   { return StringObj{Bytes: bytes, Hex: true} }
func NewArray(items ...Object) *ArrayObj              { return &ArrayObj{Items: items} }
func Dict() *DictObj                                  { return &DictObj{KV: make(map[string]Object)} }
func NewStream(dict *DictObj, data []byte) *StreamObj { return &StreamObj{Dict: dict, Data: data} }
func Ref(r ObjectRef) RefObj                          { return RefObj{R: r} }
