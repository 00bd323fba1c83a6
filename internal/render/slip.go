// Package render draws the voter slip, as a printable PDF and as a PNG for
// sharing.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"voterroll/internal/utils"
	"voterroll/pkg/types"

	"github.com/go-pdf/fpdf"
)

const (
	slipWidth    = 116.0
	slipHeight   = 150.0
	slipMargin   = 4.0
	posterHeight = 26.0
	labelHeight  = 4.0
	valueHeight  = 8.0

	notAvailable = "N/A"
	votingHours  = "Voting hours: 7.30 am to 5.30 pm"
)

// slipCell is one labelled value. A slipRow holds one cell, or two drawn
// side by side.
type slipCell struct {
	label string
	value string
}

type slipRow []slipCell

func slipRows(voter *types.Voter) []slipRow {
	return []slipRow{
		{{"Part No", value(voter.WardNo)}, {"Serial No", value(voter.SerialNo)}},
		{{"Name", strings.ToUpper(value(voter.FullName))}},
		{{"EPIC No", strings.ToUpper(voter.EpicNo)}},
		{{"Age", value(voter.Age)}, {"Gender", value(voter.Gender)}},
		{{"Address", value(voter.NewAddress)}},
		{{"Polling station", value(voter.BoothNo)}},
	}
}

var posterTypes = map[string]string{
	".jpg":  "JPG",
	".jpeg": "JPG",
	".png":  "PNG",
	".gif":  "GIF",
}

// VoterSlip writes a single page PDF slip for voter to w. posterPath is drawn
// across the top when it names a readable jpg, png or gif; otherwise the
// slip is drawn without it.
func VoterSlip(w io.Writer, voter *types.Voter, posterPath string) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: slipWidth, Ht: slipHeight},
	})
	pdf.SetMargins(slipMargin, slipMargin, slipMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Voter Slip - "+value(voter.FullName), true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	inner := slipWidth - 2*slipMargin
	half := inner / 2

	if imageType, ok := posterType(posterPath); ok {
		pdf.ImageOptions(posterPath, slipMargin, slipMargin, inner, posterHeight, false, fpdf.ImageOptions{ImageType: imageType}, 0, "")
		pdf.SetY(slipMargin + posterHeight)
	}

	pdf.SetLineWidth(0.5)

	pair := func(leftLabel, leftValue, rightLabel, rightValue string) {
		x, y := pdf.GetXY()
		pdf.Rect(x, y, half, labelHeight+valueHeight, "D")
		pdf.Rect(x+half, y, half, labelHeight+valueHeight, "D")

		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(half, labelHeight, tr(leftLabel), "", 0, "L", false, 0, "")
		pdf.CellFormat(half, labelHeight, tr(rightLabel), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(half, valueHeight, tr(leftValue), "", 0, "L", false, 0, "")
		pdf.CellFormat(half, valueHeight, tr(rightValue), "", 1, "L", false, 0, "")
	}

	full := func(label, val string) {
		x, y := pdf.GetXY()
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(inner, labelHeight, tr(label), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(inner, valueHeight-2, tr(val), "", "L", false)
		pdf.Rect(x, y, inner, pdf.GetY()-y, "D")
	}

	for _, row := range slipRows(voter) {
		if len(row) == 2 {
			pair(row[0].label, row[0].value, row[1].label, row[1].value)
			continue
		}
		full(row[0].label, row[0].value)
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(inner, 7, votingHours, "1", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render voter slip for %s: %w", voter.EpicNo, err)
	}

	return nil
}

// SlipFilename is the download name for a voter's slip.
func SlipFilename(voter *types.Voter) string {
	return fmt.Sprintf("voter-slip-%s.pdf", voter.EpicNo)
}

func value(s *string) string {
	if v := strings.TrimSpace(utils.PtrString(s)); v != "" {
		return v
	}
	return notAvailable
}

func posterType(path string) (string, bool) {
	if path == "" {
		return "", false
	}

	imageType, ok := posterTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", false
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}

	return imageType, true
}
