// Package docgen writes .docx files: fresh documents built from paragraphs
// and templates whose {PLACEHOLDER} tokens are substituted.
package docgen

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"html"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	paragraphRe   = regexp.MustCompile(`(?s)<w:p(?:\s(?:[^>]*[^/>])?)?>.*?</w:p>`)
	textRunRe     = regexp.MustCompile(`(?s)(<w:t(?:\s(?:[^>]*[^/>])?)?>)(.*?)</w:t>`)
	plainRe       = regexp.MustCompile(`(?s)<w:t(?:\s(?:[^>]*[^/>])?)?>(.*?)</w:t>|<w:(tab|br|cr)/>`)
	tableOpenRe   = regexp.MustCompile(`<w:tbl[\s>]`)
	tableCloseRe  = regexp.MustCompile(`</w:tbl>`)
	placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)
	textPartRe    = regexp.MustCompile(`^word/(document|header\d*|footer\d*)\.xml$`)
)

// Fill returns a copy of the docx template with every {KEY} found in
// values replaced. Unknown placeholders are left as they are.
func Fill(template []byte, values map[string]string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, errors.Wrap(err, "read docx")
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, f := range zr.File {
		if !textPartRe.MatchString(f.Name) {
			if err := zw.Copy(f); err != nil {
				return nil, errors.Wrapf(err, "copy %s", f.Name)
			}
			continue
		}

		part, err := readPart(f)
		if err != nil {
			return nil, err
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate, Modified: f.Modified})
		if err != nil {
			return nil, errors.Wrapf(err, "create %s", f.Name)
		}
		if _, err := w.Write(fillPart(part, values)); err != nil {
			return nil, errors.Wrapf(err, "write %s", f.Name)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "close docx")
	}
	return out.Bytes(), nil
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", f.Name)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	return data, errors.Wrapf(err, "read %s", f.Name)
}

type span struct {
	start, end int
}

type edit struct {
	span
	text string
}

// fillPart substitutes body paragraphs and table-cell paragraphs of one
// WordprocessingML part.
func fillPart(part []byte, values map[string]string) []byte {
	doc := string(part)
	body, cells := splitParagraphs(doc)

	edits := fillStream(doc, body, values)
	edits = append(edits, fillStream(doc, cells, values)...)
	if len(edits) == 0 {
		return part
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var b strings.Builder
	last := 0
	for _, e := range edits {
		b.WriteString(doc[last:e.start])
		b.WriteString(e.text)
		last = e.end
	}
	b.WriteString(doc[last:])
	return []byte(b.String())
}

// splitParagraphs separates paragraphs outside tables from those inside.
func splitParagraphs(doc string) (body, cells []span) {
	opens := tableOpenRe.FindAllStringIndex(doc, -1)
	closes := tableCloseRe.FindAllStringIndex(doc, -1)

	depthAt := func(pos int) int {
		depth := 0
		for _, o := range opens {
			if o[0] < pos {
				depth++
			}
		}
		for _, c := range closes {
			if c[0] < pos {
				depth--
			}
		}
		return depth
	}

	for _, m := range paragraphRe.FindAllStringIndex(doc, -1) {
		p := span{m[0], m[1]}
		if depthAt(p.start) > 0 {
			cells = append(cells, p)
		} else {
			body = append(body, p)
		}
	}
	return body, cells
}

func fillStream(doc string, paragraphs []span, values map[string]string) []edit {
	var edits []edit
	for _, p := range paragraphs {
		if text, ok := fillParagraph(doc[p.start:p.end], values); ok {
			edits = append(edits, edit{p, text})
		}
	}
	return edits
}

// fillParagraph substitutes placeholders in the joined text of a paragraph's
// runs. Only runs a placeholder touches are rewritten: the value goes into
// the run where the placeholder starts and the rest of the token is cut from
// the following runs. Other runs, tabs and breaks are left alone.
func fillParagraph(p string, values map[string]string) (string, bool) {
	runs := textRunRe.FindAllStringSubmatchIndex(p, -1)
	if len(runs) == 0 {
		return p, false
	}

	var joined strings.Builder
	bounds := make([]span, len(runs))
	for i, r := range runs {
		start := joined.Len()
		joined.WriteString(html.UnescapeString(p[r[4]:r[5]]))
		bounds[i] = span{start, joined.Len()}
	}
	text := joined.String()
	matches := placeholders(text, values)
	if len(matches) == 0 {
		return p, false
	}

	var b strings.Builder
	last := 0
	for i, r := range runs {
		content, changed := runText(text, bounds[i], matches)
		if !changed {
			continue
		}
		b.WriteString(p[last:r[0]])
		b.WriteString(`<w:t xml:space="preserve">`)
		b.WriteString(escape(content))
		b.WriteString("</w:t>")
		last = r[1]
	}
	b.WriteString(p[last:])
	return b.String(), true
}

// placeholders returns the spans of known placeholders in text, each carrying
// its replacement value.
func placeholders(text string, values map[string]string) []edit {
	var out []edit
	for _, m := range placeholderRe.FindAllStringSubmatchIndex(text, -1) {
		if v, ok := values[text[m[2]:m[3]]]; ok {
			out = append(out, edit{span{m[0], m[1]}, v})
		}
	}
	return out
}

// runText rebuilds the text of one run given the placeholder edits of its
// paragraph.
func runText(text string, run span, matches []edit) (string, bool) {
	var b strings.Builder
	pos := run.start
	changed := false
	for _, m := range matches {
		if m.end <= run.start || m.start >= run.end {
			continue
		}
		changed = true
		if m.start > pos {
			b.WriteString(text[pos:m.start])
		}
		if m.start >= run.start {
			b.WriteString(m.text)
		}
		pos = min(m.end, run.end)
	}
	if !changed {
		return "", false
	}
	b.WriteString(text[pos:run.end])
	return b.String(), true
}

func escape(s string) string {
	var b bytes.Buffer
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

// PlainText returns the text of a docx body, one line per paragraph.
func PlainText(docx []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	if err != nil {
		return "", errors.Wrap(err, "read docx")
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		part, err := readPart(f)
		if err != nil {
			return "", err
		}
		var lines []string
		for _, p := range paragraphRe.FindAllString(string(part), -1) {
			var line strings.Builder
			for _, m := range plainRe.FindAllStringSubmatch(p, -1) {
				switch m[2] {
				case "tab":
					line.WriteByte('\t')
				case "br", "cr":
					line.WriteByte('\n')
				default:
					line.WriteString(html.UnescapeString(m[1]))
				}
			}
			lines = append(lines, line.String())
		}
		return strings.Join(lines, "\n"), nil
	}
	return "", errors.New("docx has no word/document.xml")
}
