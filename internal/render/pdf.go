// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Page geometry in millimetres.
const (
	marginLeft   = 20.0
	marginRight  = 20.0
	marginTop    = 25.0
	marginBottom = 20.0
)

// ptToMM converts typographic points to millimetres.
const ptToMM = 25.4 / 72

type rgb struct{ r, g, b int }

var (
	navy = rgb{0x0b, 0x3d, 0x91}
	grey = rgb{0x80, 0x80, 0x80}
	ink  = rgb{0, 0, 0}
)

// paragraphStyle is the font and leading of one Style.
type paragraphStyle struct {
	family  string
	weight  string
	size    float64
	leading float64
	color   rgb
}

var paragraphStyles = map[Style]paragraphStyle{
	StyleTitle:    {family: "Helvetica", weight: "B", size: 22, leading: 26, color: navy},
	StyleSubtitle: {family: "Helvetica", size: 10, leading: 12, color: grey},
	StyleSection:  {family: "Helvetica", weight: "B", size: 13, leading: 16, color: navy},
	StyleBody:     {family: "Helvetica", size: 11, leading: 14, color: ink},
}

// Renderer writes PDF documents.
type Renderer struct {
	// Compress enables stream compression. Uncompressed output keeps the
	// page text searchable in the raw bytes.
	Compress bool
}

var defaultRenderer = Renderer{Compress: true}

// PDF renders the pitch as an A4 document with the default Renderer.
func PDF(name, pitch, subtitle string) ([]byte, error) {
	return defaultRenderer.PDF(name, pitch, subtitle)
}

// PDF renders the pitch as an A4 document: the name as title, the optional
// subtitle, then every extracted section with its heading.
func (r Renderer) PDF(name, pitch, subtitle string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.Compress)
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetTitle(name, true)
	pdf.SetCreator("pitchcrew", true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, b := range Story(name, pitch, subtitle) {
		if b.Style == StyleSpacer {
			pdf.Ln(b.Space * ptToMM)
			continue
		}
		st, ok := paragraphStyles[b.Style]
		if !ok {
			return nil, fmt.Errorf("rendering pdf: unknown style %q", b.Style)
		}
		pdf.SetFont(st.family, st.weight, st.size)
		pdf.SetTextColor(st.color.r, st.color.g, st.color.b)
		pdf.MultiCell(0, st.leading*ptToMM, tr(Decode(b.Markup)), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName returns the download file name for a pitch document.
func FileName(name string) string {
	base := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	if base == "" {
		base = "startup"
	}
	return base + "_pitch.pdf"
}
