// Package testsupport builds fixtures shared by package tests.
package testsupport

import (
	"bytes"
	"fmt"
)

// FormPDF returns a one-page PDF carrying an AcroForm with:
//   - text field "owner_name" (required, value "Jane")
//   - text field "address.line1" (child of "address") and "address.line2"
//   - checkboxes "has_pool" (checked) and "has_garage"
//   - radio group "tenure" with widgets "Own" and "Rent"
//   - signature field "signature"
func FormPDF() []byte {
	objects := []string{
		// 1 catalog
		"<< /Type /Catalog /Pages 2 0 R /AcroForm << /Fields [4 0 R 5 0 R 6 0 R 7 0 R 11 0 R 14 0 R] >> >>",
		// 2 pages
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		// 3 page
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 15 0 R " +
			"/Resources << /Font << /F1 16 0 R >> >> " +
			"/Annots [4 0 R 8 0 R 9 0 R 5 0 R 6 0 R 12 0 R 13 0 R 14 0 R] >>",
		// 4 text, merged field/widget
		"<< /Type /Annot /Subtype /Widget /FT /Tx /T (owner_name) /Ff 2 /V (Jane) /Rect [100 700 300 720] /P 3 0 R >>",
		// 5 checkbox, checked
		"<< /Type /Annot /Subtype /Widget /FT /Btn /T (has_pool) /V /Yes /AS /Yes " +
			"/Rect [100 650 112 662] /AP << /N << /Yes 10 0 R /Off 10 0 R >> >> /P 3 0 R >>",
		// 6 checkbox
		"<< /Type /Annot /Subtype /Widget /FT /Btn /T (has_garage) /V /Off /AS /Off " +
			"/Rect [100 630 112 642] /AP << /N << /Yes 10 0 R /Off 10 0 R >> >> /P 3 0 R >>",
		// 7 non-terminal text field "address"
		"<< /FT /Tx /T (address) /Kids [8 0 R 9 0 R] >>",
		// 8 address.line1
		"<< /Type /Annot /Subtype /Widget /Parent 7 0 R /T (line1) /Rect [100 560 400 580] /P 3 0 R >>",
		// 9 address.line2
		"<< /Type /Annot /Subtype /Widget /Parent 7 0 R /T (line2) /Rect [100 535 400 555] /P 3 0 R >>",
		// 10 appearance stream
		"<< /Type /XObject /Subtype /Form /BBox [0 0 12 12] /Length 0 >>\nstream\n\nendstream",
		// 11 radio group
		"<< /FT /Btn /Ff 32768 /T (tenure) /V /Own /Kids [12 0 R 13 0 R] >>",
		// 12 radio widget Own
		"<< /Type /Annot /Subtype /Widget /Parent 11 0 R /AS /Own " +
			"/Rect [100 600 112 612] /AP << /N << /Own 10 0 R /Off 10 0 R >> >> /P 3 0 R >>",
		// 13 radio widget Rent
		"<< /Type /Annot /Subtype /Widget /Parent 11 0 R /AS /Off " +
			"/Rect [150 600 162 612] /AP << /N << /Rent 10 0 R /Off 10 0 R >> >> /P 3 0 R >>",
		// 14 signature
		"<< /Type /Annot /Subtype /Widget /FT /Sig /T (signature) /Rect [100 100 300 140] /P 3 0 R >>",
		// 15 content stream
		stream("BT /F1 12 Tf 72 740 Td (Owner name) Tj ET"),
		// 16 font
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	return assemble(objects)
}

// BlankPDF returns a valid two-page PDF without any form fields
func BlankPDF() []byte {
	return assemble([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 842 595] >>",
	})
}

func stream(content string) string {
	return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)
}

// assemble numbers objects from 1 and writes a classic xref table
func assemble(objects []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}
