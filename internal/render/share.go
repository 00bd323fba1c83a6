package render

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"

	"voterroll/pkg/types"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

const (
	shareWidth        = 500
	shareBorder       = 2
	sharePadding      = 8
	sharePosterHeight = 100
	shareLabelHeight  = 16
	shareValueHeight  = 20
	shareFooterHeight = 30
)

var (
	shareLabelFace font.Face = basicfont.Face7x13
	shareValueFace font.Face = inconsolata.Bold8x16
)

// VoterShareImage writes the voter slip to w as a PNG sized for sharing. The
// poster, when posterPath names a readable jpg, png or gif, is scaled across
// the top.
func VoterShareImage(w io.Writer, voter *types.Voter, posterPath string) error {
	poster := loadPoster(posterPath)
	rows := slipRows(voter)

	height := shareBorder
	if poster != nil {
		height += sharePosterHeight
	}
	lines := make([][][]string, len(rows))
	for i, row := range rows {
		lines[i] = wrapRow(row)
		height += rowHeight(lines[i]) + shareBorder
	}
	height += shareFooterHeight + shareBorder

	img := image.NewRGBA(image.Rect(0, 0, shareWidth, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	y := 0
	fill(img, image.Rect(0, y, shareWidth, y+shareBorder))
	y += shareBorder

	if poster != nil {
		draw.CatmullRom.Scale(img, image.Rect(shareBorder, y, shareWidth-shareBorder, y+sharePosterHeight), poster, poster.Bounds(), draw.Over, nil)
		y += sharePosterHeight
	}

	for i, row := range rows {
		h := rowHeight(lines[i])
		cellWidth := shareWidth / len(row)

		for c, cell := range row {
			x := c * cellWidth
			text(img, shareLabelFace, x+sharePadding, y+sharePadding, cell.label)
			for l, line := range lines[i][c] {
				text(img, shareValueFace, x+sharePadding, y+sharePadding+shareLabelHeight+l*shareValueHeight, line)
			}
			if c > 0 {
				fill(img, image.Rect(x-shareBorder/2, y, x+shareBorder/2, y+h))
			}
		}

		y += h
		fill(img, image.Rect(0, y, shareWidth, y+shareBorder))
		y += shareBorder
	}

	footerX := (shareWidth - font.MeasureString(shareValueFace, votingHours).Ceil()) / 2
	text(img, shareValueFace, footerX, y+(shareFooterHeight-shareValueHeight)/2, votingHours)
	y += shareFooterHeight
	fill(img, image.Rect(0, y, shareWidth, y+shareBorder))

	// side borders last so they sit over the poster
	fill(img, image.Rect(0, 0, shareBorder, height))
	fill(img, image.Rect(shareWidth-shareBorder, 0, shareWidth, height))

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to render share image for %s: %w", voter.EpicNo, err)
	}

	return nil
}

// ShareFilename is the download name for a voter's share image.
func ShareFilename(voter *types.Voter) string {
	return fmt.Sprintf("voter-slip-%s.png", voter.EpicNo)
}

func loadPoster(path string) image.Image {
	if _, ok := posterType(path); !ok {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	poster, _, err := image.Decode(f)
	if err != nil {
		return nil
	}
	return poster
}

func wrapRow(row slipRow) [][]string {
	width := shareWidth/len(row) - 2*sharePadding
	lines := make([][]string, len(row))
	for i, cell := range row {
		lines[i] = wrap(shareValueFace, cell.value, width)
	}
	return lines
}

func rowHeight(lines [][]string) int {
	most := 1
	for _, cell := range lines {
		most = max(most, len(cell))
	}
	return 2*sharePadding + shareLabelHeight + most*shareValueHeight
}

// wrap breaks s into lines no wider than width, splitting words that do not
// fit on a line of their own.
func wrap(face font.Face, s string, width int) []string {
	fits := func(line string) bool {
		return font.MeasureString(face, line).Ceil() <= width
	}

	var lines []string
	line := ""
	for _, word := range strings.Fields(s) {
		for !fits(word) {
			cut := len([]rune(word)) - 1
			for cut > 1 && !fits(string([]rune(word)[:cut])) {
				cut--
			}
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			lines = append(lines, string([]rune(word)[:cut]))
			word = string([]rune(word)[cut:])
		}

		switch {
		case line == "":
			line = word
		case fits(line + " " + word):
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" || len(lines) == 0 {
		lines = append(lines, line)
	}
	return lines
}

func text(dst draw.Image, face font.Face, x, top int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(x, top+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

func fill(dst draw.Image, r image.Rectangle) {
	draw.Draw(dst, r, image.Black, image.Point{}, draw.Src)
}
