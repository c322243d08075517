// Generates a minimal DOCX model with merge tags so the CLI and the example
// program can run without a hand-made template. The output matches the entry
// registered in config/templates.json.
package main

import (
	"archive/zip"
	"bytes"
	"flag"
	"log"
	"os"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>{nomeDFT}</w:t></w:r></w:p>
<w:p><w:r><w:t>Analista: {nomeAnalista} - {data}</w:t></w:r></w:p>
<w:p><w:r><w:t>{mesAtual} {anoAtual}</w:t></w:r></w:p>
<w:p><w:r><w:t>{#analise}</w:t></w:r></w:p>
<w:p><w:r><w:t>{ordem}. {text}</w:t></w:r></w:p>
<w:p><w:r><w:t>{%image}</w:t></w:r></w:p>
<w:p><w:r><w:t>{/analise}</w:t></w:r></w:p>
<w:p><w:r><w:t>{#passoapasso}</w:t></w:r></w:p>
<w:p><w:r><w:t>Passo {ordem}: {%image}</w:t></w:r></w:p>
<w:p><w:r><w:t>{/passoapasso}</w:t></w:r></w:p>
</w:body></w:document>`

func main() {
	output := flag.String("output", "config/modelo-dft.docx", "where to write the sample model")
	flag.Parse()

	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)

	entries := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", rootRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/document.xml", documentXML},
	}
	for _, entry := range entries {
		file, err := archive.Create(entry.name)
		if err != nil {
			log.Fatalf("create %s: %v", entry.name, err)
		}
		if _, err := file.Write([]byte(entry.body)); err != nil {
			log.Fatalf("write %s: %v", entry.name, err)
		}
	}
	if err := archive.Close(); err != nil {
		log.Fatalf("close archive: %v", err)
	}

	if err := os.WriteFile(*output, buf.Bytes(), 0o644); err != nil {
		log.Fatalf("write %s: %v", *output, err)
	}
	log.Printf("sample model written to %s", *output)
}
