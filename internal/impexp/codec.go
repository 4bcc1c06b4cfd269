package impexp

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
)

// Format names a supported serialization
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts a format name or a file extension in any letter case
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	if name == "yml" {
		name = string(FormatYAML)
	}
	f := Format(name)
	if _, ok := codecs[f]; !ok {
		return "", shared.Invalid(shared.RuleMalformedInput, "unsupported format %q", s)
	}
	return f, nil
}

// ContentType is the media type used when serving the format over HTTP
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatCSV:
		return "text/csv"
	default:
		return "application/json"
	}
}

type codec interface {
	encode(w io.Writer, doc document) error
	decode(r io.Reader) (document, error)
}

var codecs = map[Format]codec{
	FormatJSON: jsonCodec{},
	FormatYAML: yamlCodec{},
	FormatCSV:  csvCodec{},
}

type jsonCodec struct{}

func (jsonCodec) encode(w io.Writer, doc document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func (jsonCodec) decode(r io.Reader) (document, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	err := dec.Decode(&doc)
	return doc, err
}

type yamlCodec struct{}

func (yamlCodec) encode(w io.Writer, doc document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func (yamlCodec) decode(r io.Reader) (document, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return doc, err
	}
	return doc, nil
}

var csvHeader = []string{"id", "type", "account_id", "category_id", "amount", "date", "description"}

// csvCodec carries operations only
type csvCodec struct{}

func (csvCodec) encode(w io.Writer, doc document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, op := range doc.Operations {
		row := []string{op.ID, op.Type, op.AccountID, op.CategoryID, op.Amount, op.Date, op.Description}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (csvCodec) decode(r io.Reader) (document, error) {
	var doc document
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		return doc, err
	}
	for i, name := range csvHeader {
		if strings.TrimSpace(header[i]) != name {
			return doc, fmt.Errorf("unexpected csv header %q in column %d, want %q", header[i], i+1, name)
		}
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		if err != nil {
			return doc, err
		}
		doc.Operations = append(doc.Operations, operationRecord{
			ID:          row[0],
			Type:        row[1],
			AccountID:   row[2],
			CategoryID:  row[3],
			Amount:      row[4],
			Date:        row[5],
			Description: row[6],
		})
	}
}
