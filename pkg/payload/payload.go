// Package payload handles the JSON/XML payload conventions shared by
// all platform adapters: format sniffing on raw strings, encoding of
// structured mappings, and decoding of device responses.
package payload

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Format tags the apparent format of a raw payload string.
type Format int

const (
	PlainText Format = iota
	JSON
	XML
)

// String returns the format name
func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case XML:
		return "xml"
	default:
		return "text"
	}
}

// ContentType returns the MIME type matching the format.
func (f Format) ContentType() string {
	switch f {
	case JSON:
		return "application/json"
	case XML:
		return "application/xml"
	default:
		return "text/plain"
	}
}

// Sniff classifies a raw payload string by its first non-whitespace
// character: '{' or '[' means JSON, '<' means XML, anything else is
// plain text. The heuristic is deterministic and part of the
// contract; no parse is attempted.
func Sniff(raw string) Format {
	trimmed := strings.TrimLeft(raw, " \t\r\n")
	if trimmed == "" {
		return PlainText
	}
	switch trimmed[0] {
	case '{', '[':
		return JSON
	case '<':
		return XML
	default:
		return PlainText
	}
}

// Encode turns a verb payload into wire bytes plus the matching
// content type. Structured mappings encode as JSON unless forceXML is
// set; strings pass through unmodified after sniffing their format.
func Encode(payload any, forceXML bool) ([]byte, string, error) {
	switch p := payload.(type) {
	case nil:
		return nil, "", nil
	case string:
		return []byte(p), Sniff(p).ContentType(), nil
	case []byte:
		return p, Sniff(string(p)).ContentType(), nil
	default:
		if forceXML {
			m, ok := payload.(map[string]any)
			if !ok {
				return nil, "", fmt.Errorf("xml encoding requires a string or map payload, got %T", payload)
			}
			return []byte(encodeXML(m)), XML.ContentType(), nil
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, "", fmt.Errorf("encoding payload: %w", err)
		}
		return data, JSON.ContentType(), nil
	}
}

// Decode parses a response body according to its content type,
// falling back to sniffing when the device omits or mislabels it.
// JSON decodes into a structured value, XML into a parsed tree, and
// anything else is returned as a string. Empty bodies decode to nil.
func Decode(body []byte, contentType string) (any, error) {
	if len(body) == 0 {
		return nil, nil
	}
	format := fromContentType(contentType)
	if format == PlainText {
		format = Sniff(string(body))
	}
	switch format {
	case JSON:
		var out any
		if err := json.Unmarshal(body, &out); err != nil {
			// Devices occasionally label plain text as JSON.
			return string(body), nil
		}
		return out, nil
	case XML:
		doc, err := xmlquery.Parse(strings.NewReader(string(body)))
		if err != nil {
			return string(body), nil
		}
		return doc, nil
	default:
		return string(body), nil
	}
}

// fromContentType maps a Content-Type header to a Format.
func fromContentType(contentType string) Format {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return JSON
	case strings.Contains(ct, "xml"):
		return XML
	default:
		return PlainText
	}
}

// encodeXML renders a nested mapping as an XML fragment. Keys are
// emitted in sorted order so output is stable. Only the shapes the
// RESTCONF platforms accept are supported: nested maps, slices, and
// scalars.
func encodeXML(m map[string]any) string {
	var b strings.Builder
	writeXML(&b, m)
	return b.String()
}

func writeXML(b *strings.Builder, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeElement(b, k, m[k])
	}
}

func writeElement(b *strings.Builder, tag string, v any) {
	switch val := v.(type) {
	case map[string]any:
		fmt.Fprintf(b, "<%s>", tag)
		writeXML(b, val)
		fmt.Fprintf(b, "</%s>", tag)
	case []any:
		for _, item := range val {
			writeElement(b, tag, item)
		}
	default:
		fmt.Fprintf(b, "<%s>%s</%s>", tag, escapeXML(fmt.Sprintf("%v", val)), tag)
	}
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
