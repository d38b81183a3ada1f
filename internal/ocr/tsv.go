package ocr

import (
	"image"
	"strconv"
	"strings"
)

// tesseract TSV columns:
// level page_num block_num par_num line_num word_num left top width height conf text
const tsvColumns = 12

// parseTSV folds word-level TSV rows (level 5) into line fragments.
// A fragment's box is the union of its word boxes and its confidence is
// the mean word confidence scaled to 0..1.
func parseTSV(tsv string) []Fragment {
	type lineKey struct {
		page, block, par, line int
	}
	type lineAcc struct {
		words []string
		box   image.Rectangle
		sum   float64
		n     int
	}

	order := make([]lineKey, 0, 16)
	lines := make(map[lineKey]*lineAcc)

	for i, row := range strings.Split(tsv, "\n") {
		if i == 0 || row == "" { // skip header
			continue
		}
		cols := strings.Split(row, "\t")
		if len(cols) < tsvColumns {
			continue
		}
		if cols[0] != "5" { // words only
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		text := strings.TrimSpace(cols[11])
		if text == "" {
			continue
		}

		left, _ := strconv.Atoi(cols[6])
		top, _ := strconv.Atoi(cols[7])
		width, _ := strconv.Atoi(cols[8])
		height, _ := strconv.Atoi(cols[9])
		box := image.Rect(left, top, left+width, top+height)

		key := lineKey{atoi(cols[1]), atoi(cols[2]), atoi(cols[3]), atoi(cols[4])}
		acc, ok := lines[key]
		if !ok {
			acc = &lineAcc{box: box}
			lines[key] = acc
			order = append(order, key)
		}
		acc.words = append(acc.words, text)
		acc.box = acc.box.Union(box)
		acc.sum += conf
		acc.n++
	}

	frags := make([]Fragment, 0, len(order))
	for _, key := range order {
		acc := lines[key]
		frags = append(frags, Fragment{
			Text:       strings.Join(acc.words, " "),
			Confidence: float32(acc.sum / float64(acc.n) / 100.0),
			Box:        acc.box,
		})
	}
	return frags
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
