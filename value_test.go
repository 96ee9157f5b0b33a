package jsonyx

import "testing"

func TestObjectGetAndAppend(t *testing.T) {
	t.Parallel()

	one, two := bi(1), bi(2)
	o := NewObject()
	o.Append(NewKey("a"), one)
	o.Append(NewKey("b"), two)

	if o.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", o.Len())
	}
	if v, ok := o.Get("a"); !ok || v != Value(one) {
		t.Errorf("Get(a) = %#v, %v, want Int(1), true", v, ok)
	}
	if _, ok := o.Get("missing"); ok {
		t.Error("Get(missing) ok = true, want false")
	}
}

func TestObjectGetNeverMatchesDuplicateKey(t *testing.T) {
	t.Parallel()

	one, two := bi(1), bi(2)
	o := NewObject()
	o.Append(NewKey("a"), one)
	o.Append(NewDuplicateKey("a"), two)

	v, ok := o.Get("a")
	if !ok || v != Value(one) {
		t.Errorf("Get(a) = %#v, %v, want the first occurrence", v, ok)
	}
	if o.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (both occurrences kept)", o.Len())
	}
}

func TestDuplicateKeyIdentityEquality(t *testing.T) {
	t.Parallel()

	k1 := NewDuplicateKey("x")
	k2 := NewDuplicateKey("x")

	if Key(k1) == Key(k2) {
		t.Error("two distinct *DuplicateKey values with equal text compared equal, want distinct identities")
	}
	if k1.Text() != "x" || k2.Text() != "x" {
		t.Errorf("Text() = %q/%q, want both %q", k1.Text(), k2.Text(), "x")
	}
}
