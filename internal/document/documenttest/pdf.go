// Package documenttest builds small PDF fixtures for tests.
package documenttest

import (
	"bytes"
	"encoding/base64"
	"fmt"
)

// Page 1 of every fixture is a landscape 200x100pt page filled black. Every
// other page is a blank portrait 100x300pt page, so a renderer that picks the
// wrong page is detectable by both shape and color.
const (
	FirstPageWidth  = 200
	FirstPageHeight = 100
)

// PDF returns a well-formed PDF document with the given number of pages.
func PDF(pages int) []byte {
	if pages < 1 {
		pages = 1
	}

	// Object layout: 1 catalog, 2 page tree, then a page/content pair per page.
	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := new(bytes.Buffer)
	for i := 0; i < pages; i++ {
		fmt.Fprintf(kids, "%d 0 R ", 3+i*2)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", bytes.TrimSpace(kids.Bytes()), pages))

	for i := 0; i < pages; i++ {
		width, height := 100, 300
		content := ""
		if i == 0 {
			width, height = FirstPageWidth, FirstPageHeight
			content = fmt.Sprintf("0 0 0 rg\n0 0 %d %d re\nf\n", width, height)
		}

		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << >> /Contents %d 0 R >>", width, height, 4+i*2),
			fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content),
		)
	}

	return assemble(objects)
}

// EmptyPDF returns a well-formed PDF whose page tree has no pages.
func EmptyPDF() []byte {
	return assemble([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [] /Count 0 >>",
	})
}

// SizedPDF returns a single blank page with a width x height point MediaBox.
func SizedPDF(width, height int) []byte {
	return assemble([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << >> /Contents 4 0 R >>", width, height),
		"<< /Length 0 >>\nstream\nendstream",
	})
}

// assemble numbers objects from 1 and writes them with a matching xref table.
func assemble(objects []string) []byte {
	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(objects)+1)
	out.WriteString("0000000000 65535 f \n")
	for _, offset := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return out.Bytes()
}

// Base64PDF is PDF encoded the way the resume field carries it.
func Base64PDF(pages int) string {
	return base64.StdEncoding.EncodeToString(PDF(pages))
}
