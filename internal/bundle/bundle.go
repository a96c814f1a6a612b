// Package bundle defines the canonical on-disk record for a processed
// document: page texts, page image references, and the obligation list.
// Everything downstream consumes this one record type; conversion from
// whatever the upstream analysis produced happens exactly once, here.
package bundle

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/legalease/docanchor/internal/anchor"
)

// Obligation is one extracted obligation or clause.
type Obligation struct {
	Text          string `json:"text"`
	Negotiable    bool   `json:"negotiable,omitempty"`
	Benchmarkable bool   `json:"benchmarkable,omitempty"`
}

// Bundle is the document record.
type Bundle struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename,omitempty"`
	Pages       []string     `json:"pages"`
	PageImages  []string     `json:"page_images,omitempty"`
	Obligations []Obligation `json:"obligations,omitempty"`
}

// Document converts the bundle into the locate input.
func (b *Bundle) Document() anchor.Document {
	return anchor.Document{
		ID:         b.ID,
		Pages:      b.Pages,
		PageImages: b.PageImages,
	}
}

// ObligationTexts returns the obligation strings in order, skipping empties.
func (b *Bundle) ObligationTexts() []string {
	var out []string
	for _, o := range b.Obligations {
		if o.Text != "" {
			out = append(out, o.Text)
		}
	}
	return out
}

// bundleSchema is the validation contract for bundle files. Page images may
// be data URIs, URLs, or empty strings for pages without an image.
const bundleSchema = `{
  "type": "object",
  "required": ["id", "pages"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "filename": {"type": "string"},
    "pages": {
      "type": "array",
      "items": {"type": "string"}
    },
    "page_images": {
      "type": "array",
      "items": {"type": "string"}
    },
    "obligations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["text"],
        "properties": {
          "text": {"type": "string"},
          "negotiable": {"type": "boolean"},
          "benchmarkable": {"type": "boolean"}
        }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("bundle.json", bundleSchema)

// Parse validates raw JSON against the bundle schema and decodes it.
func Parse(data []byte) (*Bundle, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid bundle JSON: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("bundle does not match schema: %w", err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	if len(b.PageImages) > 0 && len(b.PageImages) != len(b.Pages) {
		return nil, fmt.Errorf("bundle has %d pages but %d page images", len(b.Pages), len(b.PageImages))
	}
	return &b, nil
}

// Load reads and parses a bundle file.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Save writes a bundle as indented JSON.
func (b *Bundle) Save(path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode bundle: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	return nil
}
