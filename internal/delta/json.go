package delta

import (
	"encoding/json"
	"errors"

	"github.com/foliodoc/collabdoc/internal/attrs"
	"github.com/foliodoc/collabdoc/internal/blocktype"
)

// wireBlock is the on-the-wire shape of a block insert: {"block": "paragraph"}.
type wireBlock struct {
	Block blocktype.BlockType `json:"block"`
}

// MarshalJSON renders the entry the way the document's wire format expects:
// a text insert is a bare JSON string, a block insert is {"block": "..."}.
func (e Entry) MarshalJSON() ([]byte, error) {
	var insert json.RawMessage
	var err error
	switch {
	case e.Payload.IsText():
		insert, err = json.Marshal(*e.Payload.Text)
	case e.Payload.IsBlock():
		insert, err = json.Marshal(wireBlock{Block: *e.Payload.Block})
	default:
		return nil, errors.New("delta: entry has neither text nor block payload")
	}
	if err != nil {
		return nil, err
	}

	attrJSON, err := json.Marshal(e.Attributes)
	if err != nil {
		return nil, err
	}
	lengthJSON, err := json.Marshal(e.Payload.Length())
	if err != nil {
		return nil, err
	}
	merged := map[string]json.RawMessage{"insert": insert, "length": lengthJSON}
	var attrFields map[string]json.RawMessage
	if err := json.Unmarshal(attrJSON, &attrFields); err != nil {
		return nil, err
	}
	for k, v := range attrFields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// UnmarshalJSON parses an entry back from its wire shape.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var raw struct {
		Insert json.RawMessage `json:"insert"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var asText string
	if err := json.Unmarshal(raw.Insert, &asText); err == nil {
		e.Payload = NewText(asText)
	} else {
		var asBlock wireBlock
		if err := json.Unmarshal(raw.Insert, &asBlock); err != nil {
			return err
		}
		if !blocktype.Valid(asBlock.Block) {
			return errors.New("delta: unrecognized block type " + string(asBlock.Block))
		}
		e.Payload = NewBlock(asBlock.Block)
	}

	var a attrs.Attributes
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	e.Attributes = a
	return nil
}

// wireOp is the on-the-wire shape of an operation list entry:
// {insert|retain|delete|swap, attributes?}. No length key is written or read.
type wireOp struct {
	Insert     json.RawMessage   `json:"insert,omitempty"`
	Retain     *int              `json:"retain,omitempty"`
	Delete     *int              `json:"delete,omitempty"`
	Swap       json.RawMessage   `json:"swap,omitempty"`
	Attributes *attrs.Attributes `json:"attributes,omitempty"`
}

// MarshalJSON renders an Op as one tagged wire object, keyed by its kind.
func (o Op) MarshalJSON() ([]byte, error) {
	var w wireOp
	switch o.Kind {
	case OpInsert, OpSwap:
		var raw json.RawMessage
		var err error
		if o.Payload.IsText() {
			raw, err = json.Marshal(*o.Payload.Text)
		} else {
			raw, err = json.Marshal(wireBlock{Block: *o.Payload.Block})
		}
		if err != nil {
			return nil, err
		}
		if o.Kind == OpInsert {
			w.Insert = raw
		} else {
			w.Swap = raw
		}
		if !o.Attributes.IsEmpty() {
			w.Attributes = &o.Attributes
		}
	case OpRetain:
		n := o.Count
		w.Retain = &n
		if !o.Attributes.IsEmpty() {
			w.Attributes = &o.Attributes
		}
	case OpDelete:
		n := o.Count
		w.Delete = &n
	default:
		return nil, errors.New("delta: unknown op kind " + string(o.Kind))
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses an Op back from its wire shape.
func (o *Op) UnmarshalJSON(b []byte) error {
	var w wireOp
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	switch {
	case w.Retain != nil:
		o.Kind = OpRetain
		o.Count = *w.Retain
		if w.Attributes != nil {
			o.Attributes = *w.Attributes
		}
	case w.Delete != nil:
		o.Kind = OpDelete
		o.Count = *w.Delete
	case len(w.Insert) > 0:
		o.Kind = OpInsert
		p, err := unmarshalPayload(w.Insert)
		if err != nil {
			return err
		}
		o.Payload = p
		if w.Attributes != nil {
			o.Attributes = *w.Attributes
		}
	case len(w.Swap) > 0:
		o.Kind = OpSwap
		p, err := unmarshalPayload(w.Swap)
		if err != nil {
			return err
		}
		o.Payload = p
		if w.Attributes != nil {
			o.Attributes = *w.Attributes
		}
	default:
		return errors.New("delta: operation carries none of insert/retain/delete/swap")
	}
	return nil
}

func unmarshalPayload(raw json.RawMessage) (Payload, error) {
	var asText string
	if err := json.Unmarshal(raw, &asText); err == nil {
		return NewText(asText), nil
	}
	var asBlock wireBlock
	if err := json.Unmarshal(raw, &asBlock); err != nil {
		return Payload{}, err
	}
	if !blocktype.Valid(asBlock.Block) {
		return Payload{}, errors.New("delta: unrecognized block type " + string(asBlock.Block))
	}
	return NewBlock(asBlock.Block), nil
}
