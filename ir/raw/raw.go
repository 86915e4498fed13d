// Package raw is the PDF object graph handed to the serializer.
package raw

import (
	"fmt"
	"sort"
)

// ObjectRef uniquely identifies an indirect PDF object.
type ObjectRef struct {
	Num int
	Gen int
}

func (r ObjectRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// Object is the base interface for all raw PDF objects.
type Object interface {
	Type() string
}

// Document is the set of indirect objects making up one file, plus the
// trailer entries that point into it.
type Document struct {
	Version string // e.g. "1.4"
	Objects map[ObjectRef]Object
	Root    ObjectRef
	Info    *ObjectRef
	next    int
}

// NewDocument returns an empty document for the given header version.
func NewDocument(version string) *Document {
	return &Document{Version: version, Objects: make(map[ObjectRef]Object)}
}

// Alloc reserves the next object number.
func (d *Document) Alloc() ObjectRef {
	d.next++
	return ObjectRef{Num: d.next}
}

// Add allocates a number for o and stores it.
func (d *Document) Add(o Object) ObjectRef {
	ref := d.Alloc()
	d.Objects[ref] = o
	return ref
}

// Set stores o under a reference obtained from Alloc.
func (d *Document) Set(ref ObjectRef, o Object) { d.Objects[ref] = o }

// Refs lists the stored references in object number order.
func (d *Document) Refs() []ObjectRef {
	refs := make([]ObjectRef, 0, len(d.Objects))
	for r := range d.Objects {
		refs = append(refs, r)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Num < refs[j].Num })
	return refs
}

// Size is the trailer /Size value: highest object number plus one.
func (d *Document) Size() int { return d.next + 1 }
