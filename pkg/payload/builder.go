// Package payload flattens raw form state into the exact key/value shape the
// document merge step consumes. Block-list fields expand into ordered record
// lists; everything else is stringified. The result is a one-shot projection
// built fresh for every generation attempt and never mutated afterwards.
package payload

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-docgen/pkg/block"
)

// Default field names carrying the two rich transforms.
const (
	DefaultAnalysisField = "analise"
	DefaultStepField     = "passoapasso"
)

// Payload is the flat mapping handed to the merge engine.
type Payload map[string]any

// AnalysisRecord is one entry of the expanded analysis block list. JSON tags
// match the template tag names inside the DOCX templates.
type AnalysisRecord struct {
	Ordem     int    `json:"ordem"`
	Type      string `json:"type"`
	HasText   bool   `json:"hasText"`
	HasImage  bool   `json:"hasImage"`
	Text      string `json:"text"`
	Image     string `json:"image"`
	ImageName string `json:"imageName"`
}

// StepRecord is one entry of the expanded step-by-step list; only image
// content survives the transform.
type StepRecord struct {
	Ordem int    `json:"ordem"`
	Image string `json:"image"`
}

// Option customises a Builder.
type Option func(*Builder)

// WithAnalysisFields overrides the field names receiving the analysis
// transform.
func WithAnalysisFields(names ...string) Option {
	return func(b *Builder) {
		b.analysisFields = toSet(names)
	}
}

// WithStepFields overrides the field names receiving the step-by-step
// transform.
func WithStepFields(names ...string) Option {
	return func(b *Builder) {
		b.stepFields = toSet(names)
	}
}

// Builder produces normalized payloads from raw form state.
type Builder struct {
	analysisFields map[string]struct{}
	stepFields     map[string]struct{}
}

// NewBuilder constructs a Builder with the default designated field names.
func NewBuilder(options ...Option) *Builder {
	b := &Builder{
		analysisFields: toSet([]string{DefaultAnalysisField}),
		stepFields:     toSet([]string{DefaultStepField}),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// Build flattens the values mapping into a merge payload.
func (b *Builder) Build(values map[string]any) Payload {
	out := make(Payload, len(values))
	for name, value := range values {
		switch {
		case b.isAnalysisField(name) && isBlockList(value):
			out[name] = AnalysisRecords(value)
		case b.isStepField(name) && isBlockList(value):
			out[name] = StepRecords(value)
		default:
			out[name] = stringify(value)
		}
	}
	return out
}

// AnalysisRecords expands a raw block list into ordered analysis records.
// Blocks with neither text nor image content are dropped, and the surviving
// records are renumbered from 1.
func AnalysisRecords(value any) []AnalysisRecord {
	views := block.Views(value)
	out := make([]AnalysisRecord, 0, len(views))
	for _, v := range views {
		text := strings.TrimSpace(v.Text)
		image := strings.TrimSpace(v.ImageData)
		imageName := strings.TrimSpace(v.ImageName)

		isText := v.Kind == block.KindText || (v.Kind == "" && text != "")
		isImage := v.Kind == block.KindImage || (v.Kind == "" && image != "")
		if !isText && !isImage {
			continue
		}

		ordem := len(out) + 1
		recordType := string(block.KindImage)
		if isText {
			recordType = string(block.KindText)
		}
		if imageName == "" {
			imageName = fmt.Sprintf("imagem-%d", ordem)
		}

		out = append(out, AnalysisRecord{
			Ordem:     ordem,
			Type:      recordType,
			HasText:   isText,
			HasImage:  isImage,
			Text:      text,
			Image:     image,
			ImageName: imageName,
		})
	}
	return out
}

// StepRecords expands a raw block list into ordered step records, retaining
// only image blocks (or untyped blocks carrying image data) with non-empty
// data.
func StepRecords(value any) []StepRecord {
	views := block.Views(value)
	out := make([]StepRecord, 0, len(views))
	for _, v := range views {
		if v.Kind != "" && v.Kind != block.KindImage {
			continue
		}
		image := strings.TrimSpace(v.ImageData)
		if image == "" {
			continue
		}
		out = append(out, StepRecord{Ordem: len(out) + 1, Image: image})
	}
	return out
}

// ContainsEmbeddedImage reports whether any block-derived record list in the
// payload carries at least one record with non-empty image data. The merge
// step only engages its image-embedding module when this is true.
func ContainsEmbeddedImage(p Payload) bool {
	for _, value := range p {
		switch records := value.(type) {
		case []AnalysisRecord:
			for _, r := range records {
				if strings.TrimSpace(r.Image) != "" {
					return true
				}
			}
		case []StepRecord:
			for _, r := range records {
				if strings.TrimSpace(r.Image) != "" {
					return true
				}
			}
		}
	}
	return false
}

func (b *Builder) isAnalysisField(name string) bool {
	_, ok := b.analysisFields[name]
	return ok
}

func (b *Builder) isStepField(name string) bool {
	_, ok := b.stepFields[name]
	return ok
}

func isBlockList(value any) bool {
	switch value.(type) {
	case []block.Block, []block.View, []any, []map[string]any:
		return true
	default:
		return false
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
