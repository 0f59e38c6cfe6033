package extraction

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxPageText bounds the text kept per page for AI context
const maxPageText = 4000

// pageTexts extracts plain text per page. Pages that fail to decode get an
// empty string; the reader panics on some malformed content streams.
func pageTexts(data []byte, numPages int, debug bool) []string {
	texts := make([]string, numPages)

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if debug {
			log.Printf("text extraction unavailable: %v", err)
		}
		return texts
	}

	for i := 1; i <= numPages && i <= r.NumPage(); i++ {
		text, err := pagePlainText(r, i)
		if err != nil {
			if debug {
				log.Printf("failed to extract text from page %d: %v", i, err)
			}
			continue
		}
		text = strings.TrimSpace(text)
		if len(text) > maxPageText {
			text = text[:maxPageText]
		}
		texts[i-1] = text
	}
	return texts
}

func pagePlainText(r *pdf.Reader, pageNum int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic reading page %d: %v", pageNum, rec)
		}
	}()

	page := r.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
