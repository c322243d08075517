// Package block implements the ordered, typed content list used as the value
// of rich form fields. A block is either a text paragraph or an attached
// image; the list order is meaningful and is preserved all the way into the
// merged document.
package block

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Kind discriminates the block union.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Block is one unit of content inside a block-list field. Exactly one of the
// text or image payloads is meaningful depending on Kind. IDs are assigned at
// creation and stay stable across edits and reorders.
type Block struct {
	ID        string
	Kind      Kind
	Text      string
	ImageData string
	ImageName string
}

// NewText returns a text block with a fresh identifier.
func NewText(text string) Block {
	return Block{ID: uuid.NewString(), Kind: KindText, Text: text}
}

// NewImage returns an image block with a fresh identifier.
func NewImage(imageData, imageName string) Block {
	return Block{ID: uuid.NewString(), Kind: KindImage, ImageData: imageData, ImageName: imageName}
}

// blockJSON is the persisted wire shape. The "image" key is a legacy alias
// for "imageData" accepted on read and never written.
type blockJSON struct {
	ID          string `json:"id,omitempty"`
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	ImageData   string `json:"imageData,omitempty"`
	LegacyImage string `json:"image,omitempty"`
	ImageName   string `json:"imageName,omitempty"`
}

// MarshalJSON writes the canonical persisted shape.
func (b Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(blockJSON{
		ID:        b.ID,
		Type:      string(b.Kind),
		Text:      b.Text,
		ImageData: b.ImageData,
		ImageName: b.ImageName,
	})
}

// UnmarshalJSON accepts both the canonical shape and the legacy "image"
// alias for the image payload.
func (b *Block) UnmarshalJSON(data []byte) error {
	var raw blockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("block: unmarshal: %w", err)
	}
	imageData := raw.ImageData
	if imageData == "" {
		imageData = raw.LegacyImage
	}
	*b = Block{
		ID:        raw.ID,
		Kind:      Kind(raw.Type),
		Text:      raw.Text,
		ImageData: imageData,
		ImageName: raw.ImageName,
	}
	return nil
}

// View is a permissive read of one element of a raw block list. Unlike
// Normalize it retains elements whose type discriminator is missing or
// unknown (Kind is left empty) so callers applying fallback rules can still
// inspect their content.
type View struct {
	ID        string
	Kind      Kind
	Text      string
	ImageData string
	ImageName string
}

// Views extracts a permissive view of each element of a raw block-list
// value. Accepted inputs are []Block, []View, []any or []map[string]any with
// JSON-shaped elements; anything else yields an empty slice.
func Views(raw any) []View {
	switch value := raw.(type) {
	case nil:
		return nil
	case []View:
		out := make([]View, len(value))
		copy(out, value)
		return out
	case []Block:
		out := make([]View, 0, len(value))
		for _, b := range value {
			out = append(out, View{ID: b.ID, Kind: b.Kind, Text: b.Text, ImageData: b.ImageData, ImageName: b.ImageName})
		}
		return out
	case []map[string]any:
		out := make([]View, 0, len(value))
		for _, element := range value {
			out = append(out, viewFromMap(element))
		}
		return out
	case []any:
		out := make([]View, 0, len(value))
		for _, element := range value {
			switch typed := element.(type) {
			case Block:
				out = append(out, View{ID: typed.ID, Kind: typed.Kind, Text: typed.Text, ImageData: typed.ImageData, ImageName: typed.ImageName})
			case map[string]any:
				out = append(out, viewFromMap(typed))
			default:
				out = append(out, View{})
			}
		}
		return out
	default:
		return nil
	}
}

func viewFromMap(element map[string]any) View {
	imageData := coerceString(element["imageData"])
	if imageData == "" {
		imageData = coerceString(element["image"])
	}
	return View{
		ID:        coerceString(element["id"]),
		Kind:      Kind(coerceString(element["type"])),
		Text:      coerceString(element["text"]),
		ImageData: imageData,
		ImageName: coerceString(element["imageName"]),
	}
}

// Normalize coerces an arbitrary stored or in-flight value into a well-formed
// block list. Non-sequence input yields an empty list. Elements that do not
// carry a recognized type discriminator are dropped; the relative order of
// the surviving elements is preserved. Missing IDs are backfilled.
func Normalize(raw any) []Block {
	views := Views(raw)
	out := make([]Block, 0, len(views))
	for _, v := range views {
		if v.Kind != KindText && v.Kind != KindImage {
			continue
		}
		id := v.ID
		if id == "" {
			id = uuid.NewString()
		}
		b := Block{ID: id, Kind: v.Kind}
		switch v.Kind {
		case KindText:
			b.Text = v.Text
		case KindImage:
			b.ImageData = v.ImageData
			b.ImageName = v.ImageName
		}
		out = append(out, b)
	}
	return out
}

func coerceString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	default:
		return fmt.Sprintf("%v", value)
	}
}
