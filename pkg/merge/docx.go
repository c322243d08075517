package merge

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	documentEntry     = "word/document.xml"
	relationshipEntry = "word/_rels/document.xml.rels"
	contentTypesEntry = "[Content_Types].xml"
)

// DocxEngine merges payloads into DOCX templates by rewriting the document
// part of the archive. It implements Engine.
type DocxEngine struct{}

var _ Engine = (*DocxEngine)(nil)

// NewDocxEngine returns the default DOCX merge engine.
func NewDocxEngine() *DocxEngine {
	return &DocxEngine{}
}

// Render merges data into the template archive and returns the new document
// bytes. The input template is never modified.
func (e *DocxEngine) Render(template []byte, data map[string]any, opts RenderOptions) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("%w: open template archive: %v", ErrRender, err)
	}

	document, err := readEntry(reader, documentEntry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	scope, err := normalizeData(data)
	if err != nil {
		return nil, err
	}

	state := &renderState{opts: opts}
	rendered, err := renderScope(coalescePlaceholders(string(document)), scopeStack{scope}, state)
	if err != nil {
		return nil, err
	}

	return writeArchive(reader, rendered, state)
}

// normalizeData flattens typed payload values (record structs, slices) into
// the JSON object model tag resolution operates on.
func normalizeData(data map[string]any) (map[string]any, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %v", ErrRender, err)
	}
	var scope map[string]any
	if err := json.Unmarshal(encoded, &scope); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", ErrRender, err)
	}
	return scope, nil
}

type mediaFile struct {
	name  string
	relID string
	data  []byte
}

type renderState struct {
	opts  RenderOptions
	media []mediaFile
	docPr int
}

// resolveImage validates and registers one embedded image, returning the XML
// splice that replaces the image tag inside its text run. Image tags resolve
// to nothing when embedding is not engaged.
func (st *renderState) resolveImage(scopes scopeStack, name string) (string, error) {
	if !st.opts.EmbedImages {
		return "", nil
	}

	value, _ := scopes.resolve(name)
	encoded, _ := value.(string)
	data, err := decodeCanonicalPNG(encoded)
	if err != nil {
		return "", err
	}

	index := len(st.media) + 1
	media := mediaFile{
		name:  fmt.Sprintf("word/media/docgen-image%d.png", index),
		relID: fmt.Sprintf("rIdDocgen%d", index),
		data:  data,
	}
	st.media = append(st.media, media)
	st.docPr++

	width, height := imageSize(st.opts.ContainerWidth)
	return drawingXML(media.relID, st.docPr, width*emuPerPixel, height*emuPerPixel), nil
}

// decodeCanonicalPNG strictly validates the canonical PNG data-URI shape: a
// fixed prefix check (optional "data:" marker, case-insensitive) followed by
// well-formed base64.
func decodeCanonicalPNG(encoded string) ([]byte, error) {
	const marker = "image/png;base64,"

	trimmed := strings.TrimSpace(encoded)
	lower := strings.ToLower(trimmed)
	lower = strings.TrimPrefix(lower, "data:")
	if !strings.HasPrefix(lower, marker) {
		return nil, fmt.Errorf("%w: reattach the image to convert it to PNG", ErrInvalidImageFormat)
	}

	payload := trimmed[len(trimmed)-len(lower)+len(marker):]
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 payload", ErrInvalidImageFormat)
	}
	return data, nil
}

// drawingXML produces an inline picture element. Namespaces are declared on
// the elements themselves so minimal documents merge cleanly. The splice
// closes the current text run and opens a new one after the drawing.
func drawingXML(relID string, docPr, cx, cy int) string {
	drawing := fmt.Sprintf(
		`<w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0" xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing">`+
			`<wp:extent cx="%[2]d" cy="%[3]d"/>`+
			`<wp:docPr id="%[4]d" name="Imagem %[4]d"/>`+
			`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
			`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
			`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
			`<pic:nvPicPr><pic:cNvPr id="%[4]d" name="Imagem %[4]d"/><pic:cNvPicPr/></pic:nvPicPr>`+
			`<pic:blipFill><a:blip r:embed="%[1]s" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
			`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[2]d" cy="%[3]d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
			`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>`,
		relID, cx, cy, docPr,
	)
	return `</w:t></w:r><w:r>` + drawing + `</w:r><w:r><w:t xml:space="preserve">`
}

func readEntry(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %v", name, err)
		}
		defer func() {
			_ = rc.Close()
		}()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}

func writeArchive(reader *zip.Reader, document string, state *renderState) ([]byte, error) {
	var out bytes.Buffer
	writer := zip.NewWriter(&out)

	relsSeen := false
	for _, file := range reader.File {
		var content []byte
		switch file.Name {
		case documentEntry:
			content = []byte(document)
		case relationshipEntry:
			relsSeen = true
			original, err := readEntry(reader, file.Name)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRender, err)
			}
			content = patchRelationships(original, state.media)
		case contentTypesEntry:
			original, err := readEntry(reader, file.Name)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRender, err)
			}
			content = patchContentTypes(original, state.media)
		default:
			original, err := readEntry(reader, file.Name)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRender, err)
			}
			content = original
		}

		if err := writeEntry(writer, file.Name, content); err != nil {
			return nil, err
		}
	}

	if !relsSeen && len(state.media) > 0 {
		content := patchRelationships(nil, state.media)
		if err := writeEntry(writer, relationshipEntry, content); err != nil {
			return nil, err
		}
	}
	for _, media := range state.media {
		if err := writeEntry(writer, media.name, media.data); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: finalize archive: %v", ErrRender, err)
	}
	return out.Bytes(), nil
}

func writeEntry(writer *zip.Writer, name string, content []byte) error {
	w, err := writer.Create(name)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrRender, name, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrRender, name, err)
	}
	return nil
}

const imageRelationshipType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

func patchRelationships(original []byte, media []mediaFile) []byte {
	if len(media) == 0 {
		return original
	}

	var entries strings.Builder
	for _, m := range media {
		target := strings.TrimPrefix(m.name, "word/")
		entries.WriteString(fmt.Sprintf(`<Relationship Id="%s" Type="%s" Target="%s"/>`, m.relID, imageRelationshipType, target))
	}

	document := string(original)
	if document == "" {
		return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			entries.String() + `</Relationships>`)
	}
	return []byte(strings.Replace(document, "</Relationships>", entries.String()+"</Relationships>", 1))
}

func patchContentTypes(original []byte, media []mediaFile) []byte {
	if len(media) == 0 {
		return original
	}
	document := string(original)
	if strings.Contains(document, `Extension="png"`) {
		return original
	}
	return []byte(strings.Replace(document, "</Types>", `<Default Extension="png" ContentType="image/png"/></Types>`, 1))
}
