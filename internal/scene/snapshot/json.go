package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrMalformed is returned when the input is not valid JSON.
var ErrMalformed = errors.New("snapshot: malformed document")

// ToJSON renders the snapshot as a wire document. Only sets that are
// present (non-nil) are emitted, so a delta patch stays sparse on the
// wire as well.
func ToJSON(s *Snapshot) ([]byte, error) {
	out := []byte(`{}`)
	out, err := sjson.SetBytes(out, "version", s.Version)
	if err != nil {
		return nil, fmt.Errorf("encode version: %w", err)
	}
	if s.Delta {
		if out, err = sjson.SetBytes(out, "is_delta", true); err != nil {
			return nil, fmt.Errorf("encode is_delta: %w", err)
		}
	}
	if out, err = setRaw(out, "elements", s.Elements); err != nil {
		return nil, err
	}
	if s.Hidden != nil {
		if out, err = setRaw(out, "hidden", s.Hidden); err != nil {
			return nil, err
		}
	}
	if s.Locked != nil {
		if out, err = setRaw(out, "locked", s.Locked); err != nil {
			return nil, err
		}
	}
	if s.Copies != nil {
		if out, err = setRaw(out, "copies", s.Copies); err != nil {
			return nil, err
		}
	}
	if s.DisplayNames != nil {
		if out, err = setRaw(out, "display_names", s.DisplayNames); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func setRaw(doc []byte, key string, v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	out, err := sjson.SetRawBytes(doc, key, raw)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	return out, nil
}

// ParseJSON decodes a wire document into a snapshot. Wrong-typed or
// absent sets come back nil, malformed entries are dropped, and only
// an unparseable document is an error. Version is recorded but not
// enforced.
func ParseJSON(data []byte) (*Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformed
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, ErrMalformed
	}

	s := &Snapshot{
		Version: int(doc.Get("version").Int()),
		Delta:   doc.Get("is_delta").Bool(),
	}
	if s.Version == 0 {
		s.Version = 1
	}

	if v := doc.Get("elements"); v.IsObject() {
		s.Elements = make(map[string]Fields)
		v.ForEach(func(key, val gjson.Result) bool {
			if m, ok := val.Value().(map[string]any); ok {
				s.Elements[key.String()] = Fields(m)
			}
			return true
		})
	}
	if v := doc.Get("hidden"); v.IsArray() {
		s.Hidden = stringList(v)
	}
	if v := doc.Get("locked"); v.IsArray() {
		s.Locked = stringList(v)
	}
	if v := doc.Get("copies"); v.IsArray() {
		s.Copies = []Copy{}
		for _, item := range v.Array() {
			c := Copy{
				Path:       item.Get("path").String(),
				SourcePath: item.Get("source").String(),
				Kind:       item.Get("kind").String(),
				Category:   item.Get("category").String(),
			}
			if c.Path == "" || c.SourcePath == "" {
				continue
			}
			s.Copies = append(s.Copies, c)
		}
	}
	if v := doc.Get("display_names"); v.IsObject() {
		s.DisplayNames = make(map[string]string)
		v.ForEach(func(key, val gjson.Result) bool {
			s.DisplayNames[key.String()] = val.String()
			return true
		})
	}
	return s, nil
}

func stringList(v gjson.Result) []string {
	out := []string{}
	for _, item := range v.Array() {
		if item.Type == gjson.String {
			out = append(out, item.String())
		}
	}
	return out
}
