package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log"

	"github.com/go-pdf/fpdf"

	"github.com/abstract-tutoring/card-crafter/models"
)

// Layout in points on a US Letter page.
const (
	marginLeft   = 40.0
	textWidth    = 500.0
	imageX       = 100.0
	imageWidth   = 400.0
	imageHeight  = 250.0
	titleY       = 50.0
	groupImageY  = 80.0
	descriptionY = 360.0
	termY        = 40.0
	termImageGap = 80.0
)

// Document is one generated PDF. It is rendered once, so the same document can
// be sent as a download and inline for printing.
type Document struct {
	pdf      *fpdf.Fpdf
	rendered []byte
}

func (d *Document) Pages() int {
	return d.pdf.PageCount()
}

// Bytes renders the document on first use and returns the cached PDF after that.
func (d *Document) Bytes() ([]byte, error) {
	if d.rendered != nil {
		return d.rendered, nil
	}
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	d.rendered = buf.Bytes()
	return d.rendered, nil
}

func (d *Document) Output(w io.Writer) error {
	raw, err := d.Bytes()
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

type Exporter struct {
	images *ImageLoader
}

func NewExporter(images *ImageLoader) *Exporter {
	return &Exporter{images: images}
}

// Export lays out the group on page one and each term on its own page after it.
// Images that cannot be loaded or decoded are skipped.
func (e *Exporter) Export(ctx context.Context, group models.FlashcardGroup) (*Document, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(marginLeft, termY, marginLeft)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(group.Group, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetXY(marginLeft, titleY-12)
	pdf.CellFormat(0, 28, tr(group.Group), "", 1, "C", false, 0, "")

	if group.Image != "" {
		e.placeImage(ctx, pdf, "group", group.Image, groupImageY)
	}

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetXY(marginLeft, descriptionY)
	pdf.MultiCell(textWidth, 18, tr(group.Description), "", "J", false)

	for i, term := range group.Terms {
		pdf.AddPage()

		pdf.SetFont("Helvetica", "B", 16)
		pdf.SetXY(marginLeft, termY)
		pdf.MultiCell(textWidth, 20, tr(fmt.Sprintf("Term %d: %s", i+1, term.Term)), "", "L", false)

		pdf.SetFont("Helvetica", "", 12)
		pdf.SetXY(marginLeft, pdf.GetY()+4)
		pdf.MultiCell(textWidth, 15, tr(term.Definition), "", "L", false)

		_, pageHeight := pdf.GetPageSize()
		if pdf.GetY() > pageHeight-termY {
			log.Printf("Definition of term %d runs past the page and is clipped", i+1)
		}

		if term.Image != "" {
			name := fmt.Sprintf("term-%d", i)
			y, fits := termImageY(pdf.GetY(), pageHeight)
			if !fits {
				log.Printf("Skipping %s image in export: no room below the definition", name)
				continue
			}
			e.placeImage(ctx, pdf, name, term.Image, y)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return &Document{pdf: pdf}, nil
}

// termImageY puts a term image at its usual offset, or 10pt below the definition
// when the text reaches further. It reports false when the image would cross the
// bottom margin.
func termImageY(textBottom, pageHeight float64) (float64, bool) {
	y := termY + termImageGap
	if next := textBottom + 10; next > y {
		y = next
	}
	return y, y+imageHeight <= pageHeight-termY
}

func (e *Exporter) placeImage(ctx context.Context, pdf *fpdf.Fpdf, name, src string, y float64) {
	uri, err := e.images.Resolve(ctx, src)
	if err != nil {
		log.Printf("Skipping %s image in export: %v", name, err)
		return
	}
	_, data, err := DecodeDataURI(uri)
	if err != nil {
		log.Printf("Skipping %s image in export: %v", name, err)
		return
	}
	jpg, err := flattenToJPEG(data)
	if err != nil {
		log.Printf("Skipping %s image in export: %v", name, err)
		return
	}

	opts := fpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(jpg))
	if pdf.Err() {
		log.Printf("Skipping %s image in export: %v", name, pdf.Error())
		pdf.ClearError()
		return
	}
	pdf.ImageOptions(name, imageX, y, imageWidth, imageHeight, false, opts, 0, "")
}

// flattenToJPEG decodes any supported image and re-encodes it as a baseline
// JPEG on a white background, the one format fpdf always accepts.
func flattenToJPEG(data []byte) ([]byte, error) {
	if err := checkDimensions(data); err != nil {
		return nil, err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := src.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), src, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
