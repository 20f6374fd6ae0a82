package docx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
	"github.com/klauspost/compress/zip"
)

const (
	documentPart = "word/document.xml"
	maxPartSize  = 64 * 1024 * 1024
)

var (
	ErrNotPackage   = errors.New("not a wordprocessing package")
	ErrPartTooLarge = errors.New("package part too large")
)

type part struct {
	name   string
	method uint16
	data   []byte
}

// Document is an opened .docx package. Only word/document.xml is parsed;
// every other part is carried through Save untouched.
type Document struct {
	parts []part
	tree  *etree.Document
	body  *etree.Element
}

func Open(path string) (*Document, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrNotPackage, path)
		}
		return nil, err
	}
	defer reader.Close()

	doc := &Document{}
	var documentXML []byte
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		data, err := readPart(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file.Name, err)
		}
		if file.Name == documentPart {
			documentXML = data
		}
		doc.parts = append(doc.parts, part{name: file.Name, method: file.Method, data: data})
	}
	if documentXML == nil {
		return nil, fmt.Errorf("%w: %s has no %s", ErrNotPackage, path, documentPart)
	}
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(documentXML); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrNotPackage, documentPart, err)
	}
	if err := doc.attach(tree); err != nil {
		return nil, err
	}
	return doc, nil
}

// New returns an empty document with a body and default section properties.
func New() *Document {
	doc := &Document{}
	for _, name := range templateOrder {
		if name == documentPart {
			continue
		}
		doc.parts = append(doc.parts, part{name: name, method: zip.Deflate, data: []byte(templateParts[name])})
	}
	doc.parts = append(doc.parts, part{name: documentPart, method: zip.Deflate})
	tree := etree.NewDocument()
	if err := tree.ReadFromString(templateParts[documentPart]); err != nil {
		panic(fmt.Sprintf("docx: invalid document template: %v", err))
	}
	if err := doc.attach(tree); err != nil {
		panic(fmt.Sprintf("docx: invalid document template: %v", err))
	}
	return doc
}

func (d *Document) attach(tree *etree.Document) error {
	root := tree.Root()
	if root == nil || !IsW(root, "document") {
		return fmt.Errorf("%w: missing w:document root", ErrNotPackage)
	}
	body := findW(root, "body")
	if body == nil {
		return fmt.Errorf("%w: document has no body", ErrNotPackage)
	}
	d.tree = tree
	d.body = body
	return nil
}

// Body is the w:body element whose children are the document's blocks.
func (d *Document) Body() *etree.Element {
	return d.body
}

func (d *Document) Save(path string) error {
	documentXML, err := d.tree.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serialize %s: %w", documentPart, err)
	}
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for _, p := range d.parts {
		data := p.data
		if p.name == documentPart {
			data = documentXML
		}
		header := &zip.FileHeader{Name: p.name, Method: p.method}
		w, err := writer.CreateHeader(header)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return atomicWrite(path, buf.Bytes())
}

func readPart(file *zip.File) ([]byte, error) {
	if file.UncompressedSize64 > maxPartSize {
		return nil, ErrPartTooLarge
	}
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxPartSize {
		return nil, ErrPartTooLarge
	}
	return data, nil
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".docxbench-*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name)
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		return err
	}
	return os.Rename(name, path)
}
