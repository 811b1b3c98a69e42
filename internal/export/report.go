// Package export writes one-page PDF reports of an annotated scan.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"

	"scan-annotator/internal/api"
)

// maxImageWidth is the printable width on an A4 portrait page in mm.
const maxImageWidth = 180.0

// WriteReport renders a single-page PDF with the composited annotated image
// and the scan's key metadata.
func WriteReport(path string, scan *api.Scan, annotated image.Image) error {
	p := gofpdf.New("P", "mm", "A4", "")
	p.AddPage()

	p.SetFont("Helvetica", "B", 16)
	p.Cell(0, 10, "Scan Annotation Report")
	p.Ln(12)

	p.SetFont("Helvetica", "", 11)
	writeField(p, "Scan", scan.Label())
	writeField(p, "Capture", scan.CaptureID)
	if scan.FarmName != "" {
		writeField(p, "Farm", scan.FarmName)
	}
	if scan.DeviceLabel != "" {
		writeField(p, "Device", scan.DeviceLabel)
	} else if scan.DeviceCode != "" {
		writeField(p, "Device", scan.DeviceCode)
	}
	if scan.CapturedAt != nil {
		writeField(p, "Captured", scan.CapturedAt.Format("2006-01-02 15:04"))
	}
	writeField(p, "Status", string(scan.Status))
	p.Ln(4)

	// Fit the image to the printable width, preserving aspect ratio. This
	// is a print-only downscale; the stored mask rasters are untouched.
	fitted := imaging.Fit(annotated, 1600, 1600, imaging.Lanczos)
	var buf bytes.Buffer
	if err := png.Encode(&buf, fitted); err != nil {
		return fmt.Errorf("encode report image: %w", err)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("annotated", opts, &buf)
	p.ImageOptions("annotated", 15, p.GetY(), maxImageWidth, 0, false, opts, 0, "")

	if err := p.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func writeField(p *gofpdf.Fpdf, label, value string) {
	p.SetFont("Helvetica", "B", 11)
	p.Cell(30, 6, label)
	p.SetFont("Helvetica", "", 11)
	p.Cell(0, 6, value)
	p.Ln(6)
}
