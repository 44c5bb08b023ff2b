package delta

import (
	"encoding/json"
	"testing"

	"github.com/foliodoc/collabdoc/internal/attrs"
	"github.com/foliodoc/collabdoc/internal/blocktype"
)

func TestPayloadLength(t *testing.T) {
	if got := NewText("hello").Length(); got != 5 {
		t.Fatalf("Length() = %d, want 5", got)
	}
	if got := NewBlock(blocktype.Paragraph).Length(); got != 1 {
		t.Fatalf("Length() = %d, want 1", got)
	}
}

func TestSequenceLength(t *testing.T) {
	s := Sequence{
		{Payload: NewBlock(blocktype.Paragraph)},
		{Payload: NewText("hello")},
	}
	if got := s.Length(); got != 6 {
		t.Fatalf("Sequence.Length() = %d, want 6", got)
	}
}

func TestEntryJSONRoundTripText(t *testing.T) {
	e := Entry{Payload: NewText("hi"), Attributes: attrs.Attributes{Bold: attrs.BoolPtr(true)}}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Entry
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Payload.Equal(e.Payload) {
		t.Fatalf("round-trip payload = %+v, want %+v", got.Payload, e.Payload)
	}
	if got.Attributes.Bold == nil || *got.Attributes.Bold != true {
		t.Fatalf("round-trip Bold = %v, want true", got.Attributes.Bold)
	}
}

func TestEntryJSONRoundTripBlock(t *testing.T) {
	e := Entry{Payload: NewBlock(blocktype.UnorderedList)}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Entry
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Payload.IsBlock() || *got.Payload.Block != blocktype.UnorderedList {
		t.Fatalf("round-trip block = %+v, want %v", got.Payload, blocktype.UnorderedList)
	}
}

func TestOpJSONRoundTripRetainWithAttributes(t *testing.T) {
	op := RetainFormat(4, attrs.Attributes{Bold: attrs.BoolPtr(true)})
	b, err := json.Marshal(op)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Op
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Kind != OpRetain || got.Count != 4 {
		t.Fatalf("round-trip = %+v, want Retain(4)", got)
	}
	if got.Attributes.Bold == nil || !*got.Attributes.Bold {
		t.Fatalf("round-trip Bold = %v, want true", got.Attributes.Bold)
	}
}

func TestOpJSONRoundTripPlainRetainOmitsAttributes(t *testing.T) {
	op := Retain(3)
	b, err := json.Marshal(op)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("Unmarshal raw: %v", err)
	}
	if _, ok := raw["attributes"]; ok {
		t.Fatalf("wire form = %s, want no attributes key", b)
	}
}

func TestOpJSONRoundTripInsertBlock(t *testing.T) {
	op := InsertBlock(blocktype.Blockquote, attrs.Attributes{})
	b, err := json.Marshal(op)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Op
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Kind != OpInsert || !got.Payload.IsBlock() || *got.Payload.Block != blocktype.Blockquote {
		t.Fatalf("round-trip = %+v, want Insert(Block(blockquote))", got)
	}
}

func TestOpJSONRoundTripDelete(t *testing.T) {
	op := Delete(7)
	b, err := json.Marshal(op)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Op
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Kind != OpDelete || got.Count != 7 {
		t.Fatalf("round-trip = %+v, want Delete(7)", got)
	}
}

func TestOpsJSONRoundTrip(t *testing.T) {
	ops := Ops{Retain(5), InsertText("hi", attrs.Attributes{}), Delete(2)}
	b, err := json.Marshal(ops)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Ops
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got) != 3 || got[0].Kind != OpRetain || got[1].Kind != OpInsert || got[2].Kind != OpDelete {
		t.Fatalf("round-trip = %+v", got)
	}
}

func TestCloneIndependence(t *testing.T) {
	s := Sequence{{Payload: NewText("a")}}
	clone := s.Clone()
	clone[0] = Entry{Payload: NewText("b")}
	if *s[0].Payload.Text != "a" {
		t.Fatalf("Clone mutated original: %v", *s[0].Payload.Text)
	}
}
