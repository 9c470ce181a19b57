package models

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Book is a row of the books table. ID and Title are required columns;
// any other column is kept in Fields so the manifest carries the book's
// full metadata without the exporter knowing every column up front.
type Book struct {
	ID     int64
	Title  string
	Fields map[string]any
}

// MarshalJSON flattens Fields next to id and title. Keys come out sorted,
// which keeps the manifest byte-stable between runs.
func (b Book) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Fields)+2)
	for k, v := range b.Fields {
		out[k] = v
	}
	out["id"] = b.ID
	out["title"] = b.Title
	return json.Marshal(out)
}

func (b *Book) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	idNum, ok := raw["id"].(json.Number)
	if !ok {
		return fmt.Errorf("book: missing numeric id")
	}
	id, err := idNum.Int64()
	if err != nil {
		return fmt.Errorf("book: id: %w", err)
	}
	title, _ := raw["title"].(string)
	delete(raw, "id")
	delete(raw, "title")

	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				v = i
			} else if f, err := n.Float64(); err == nil {
				v = f
			}
		}
		fields[k] = v
	}

	*b = Book{ID: id, Title: title, Fields: fields}
	return nil
}
