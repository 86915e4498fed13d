package raw

import "testing"

func TestDocumentAllocation(t *testing.T) {
	doc := NewDocument("1.4")
	pages := doc.Alloc()
	catalog := doc.Add(Dict().Set("Type", NameLiteral("Catalog")).Set("Pages", Ref(pages)))
	doc.Set(pages, Dict().Set("Type", NameLiteral("Pages")).Set("Kids", NewArray()))

	if pages.Num != 1 || catalog.Num != 2 {
		t.Fatalf("unexpected numbering: pages=%v catalog=%v", pages, catalog)
	}
	if doc.Size() != 3 {
		t.Fatalf("Size = %d, want 3", doc.Size())
	}
	refs := doc.Refs()
	if len(refs) != 2 || refs[0] != pages || refs[1] != catalog {
		t.Fatalf("Refs = %v", refs)
	}
	if catalog.String() != "2 0 R" {
		t.Fatalf("String = %q", catalog.String())
	}
}

func TestDictSetGet(t *testing.T) {
	var d DictObj
	d.Set("Count", NumberInt(3))
	o, ok := d.Get("Count")
	if !ok || o.(NumberObj).Float() != 3 {
		t.Fatalf("Get = %v, %v", o, ok)
	}
	if _, ok := d.Get("Missing"); ok {
		t.Fatalf("unexpected key")
	}
	if d.Len() != 1 {
		t.Fatalf("Len = %d", d.Len())
	}
}
