package rightmove

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"hackermove/models"
)

// DefaultMarker is the script variable the results page assigns its JSON model to.
const DefaultMarker = "window.jsonModel"

// Extractor locates the embedded JSON payload in a results page.
type Extractor struct {
	Marker string
}

// NewExtractor returns an Extractor for marker, or DefaultMarker when empty.
func NewExtractor(marker string) *Extractor {
	if marker == "" {
		marker = DefaultMarker
	}
	return &Extractor{Marker: marker}
}

type pageModel struct {
	Properties *[]models.RawRecord `json:"properties"`
	Pagination struct {
		Options []struct {
			Value json.RawMessage `json:"value"`
		} `json:"options"`
	} `json:"pagination"`
}

// Extract returns the page tokens beyond the first page and the raw property
// records of body. Failures are *models.ExtractionError.
func (e *Extractor) Extract(body string) (models.PaginationDescriptor, []models.RawRecord, error) {
	var desc models.PaginationDescriptor

	raw, err := e.payload(body)
	if err != nil {
		return desc, nil, err
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var pm pageModel
	if err := dec.Decode(&pm); err != nil {
		return desc, nil, &models.ExtractionError{Reason: "payload is not valid JSON", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("trailing data after payload")
		}
		return desc, nil, &models.ExtractionError{Reason: "payload is not valid JSON", Err: err}
	}
	if pm.Properties == nil {
		return desc, nil, &models.ExtractionError{Reason: "payload has no properties array"}
	}

	// The first option is the page we are on.
	if len(pm.Pagination.Options) > 1 {
		for i, opt := range pm.Pagination.Options[1:] {
			tok := optionToken(opt.Value)
			if tok == "" {
				return models.PaginationDescriptor{}, nil, &models.ExtractionError{
					Reason: fmt.Sprintf("pagination option %d has no value", i+1),
				}
			}
			desc.Tokens = append(desc.Tokens, tok)
		}
	}

	return desc, *pm.Properties, nil
}

// payload returns the text following the marker in the first script block
// that contains it.
func (e *Extractor) payload(body string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", &models.ExtractionError{Reason: "page is not parseable HTML", Err: err}
	}

	var script string
	found := false
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if idx := strings.Index(text, e.Marker); idx >= 0 {
			script = text[idx+len(e.Marker):]
			found = true
			return false
		}
		return true
	})
	if !found {
		return "", &models.ExtractionError{Reason: "marker " + e.Marker + " not found"}
	}

	script = strings.TrimSpace(script)
	script = strings.TrimPrefix(script, "=")
	script = strings.TrimSpace(script)
	script = strings.TrimRight(script, "; \t\r\n")
	return script, nil
}

func optionToken(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || string(v) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(v)
}
