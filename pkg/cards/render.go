package cards

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/itops/staffdesk/pkg/api"
	"github.com/itops/staffdesk/pkg/logger"
	"github.com/jung-kurt/gofpdf"
)

// PhotoFunc returns the photo bytes for an employee, or nil when there is none.
type PhotoFunc func(employeeID string) []byte

// Options configures rendering
type Options struct {
	Orientation Orientation
	Company     string
	Photos      PhotoFunc
}

// Render writes a PDF with one card per employee.
func Render(w io.Writer, emps []api.Employee, opts Options) error {
	if opts.Orientation == "" {
		opts.Orientation = Vertical
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Employee ID cards", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range Layout(len(emps), opts.Orientation) {
		pdf.AddPage()
		for _, slot := range page.Slots {
			drawCard(pdf, tr, slot, emps[slot.Index], opts)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render cards: %w", err)
	}
	return nil
}

func drawCard(pdf *gofpdf.Fpdf, tr func(string) string, s Slot, e api.Employee, opts Options) {
	pdf.SetDrawColor(120, 120, 120)
	pdf.SetLineWidth(0.2)
	pdf.Rect(s.X, s.Y, s.W, s.H, "D")

	// header band
	pdf.SetFillColor(20, 70, 140)
	pdf.Rect(s.X, s.Y, s.W, 9, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(s.X, s.Y+1.5)
	pdf.CellFormat(s.W, 6, tr(opts.Company), "", 0, "C", false, 0, "")

	var photoX, photoY, photoW, photoH, textX, textY, textW float64
	if opts.Orientation == Horizontal {
		photoW, photoH = 22, 28
		photoX, photoY = s.X+4, s.Y+13
		textX, textY, textW = photoX+photoW+3, s.Y+14, s.W-photoW-10
	} else {
		photoW, photoH = 26, 33
		photoX, photoY = s.X+(s.W-photoW)/2, s.Y+13
		textX, textY, textW = s.X+2, photoY+photoH+3, s.W-4
	}

	if !drawPhoto(pdf, e.EmployeeID, opts.Photos, photoX, photoY, photoW, photoH) {
		pdf.SetDrawColor(180, 180, 180)
		pdf.Rect(photoX, photoY, photoW, photoH, "D")
	}

	align := "C"
	if opts.Orientation == Horizontal {
		align = "L"
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(textX, textY)
	pdf.CellFormat(textW, 5, tr(strings.ToUpper(e.EmployeeName)), "", 2, align, false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(textW, 4.5, tr(e.EmployeeID), "", 2, align, false, 0, "")
	pdf.CellFormat(textW, 4.5, tr(e.EmployeeDepartment), "", 2, align, false, 0, "")
	pdf.CellFormat(textW, 4.5, tr(e.EmployeePosition), "", 2, align, false, 0, "")
}

func drawPhoto(pdf *gofpdf.Fpdf, id string, photos PhotoFunc, x, y, w, h float64) bool {
	if photos == nil {
		return false
	}
	data := photos(id)
	if len(data) == 0 {
		return false
	}

	var imgType string
	switch http.DetectContentType(data) {
	case "image/jpeg":
		imgType = "JPG"
	case "image/png":
		imgType = "PNG"
	default:
		logger.Debug("Unsupported photo format", "employee_id", id)
		return false
	}

	name := "photo-" + id
	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: imgType}, bytes.NewReader(data))
	if pdf.Err() {
		logger.Warn("Photo could not be embedded", "employee_id", id, "err", pdf.Error())
		pdf.ClearError()
		return false
	}
	pdf.ImageOptions(name, x, y, w, h, false, gofpdf.ImageOptions{ImageType: imgType}, 0, "")
	return true
}
