package ingestion

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"

	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
	"github.com/yourusername/lesson-api/internal/storage"
)

const (
	docxDocumentPart = "word/document.xml"
	docxRelsPart     = "word/_rels/document.xml.rels"
	docxNumbering    = "word/numbering.xml"
	docxContentTypes = "[Content_Types].xml"

	// maxDocxPart ограничивает размер одной распакованной части архива
	maxDocxPart = 64 << 20
)

var headingStyle = regexp.MustCompile(`^heading\s*([1-6])$`)

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

type relationships struct {
	Items []relationship `xml:"Relationship"`
}

type contentTypes struct {
	Defaults []struct {
		Extension   string `xml:"Extension,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Default"`
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

type numberingPart struct {
	Abstract []struct {
		ID     string `xml:"abstractNumId,attr"`
		Levels []struct {
			Ilvl   string `xml:"ilvl,attr"`
			NumFmt struct {
				Val string `xml:"val,attr"`
			} `xml:"numFmt"`
		} `xml:"lvl"`
	} `xml:"abstractNum"`
	Nums []struct {
		ID       string `xml:"numId,attr"`
		Abstract struct {
			Val string `xml:"val,attr"`
		} `xml:"abstractNumId"`
	} `xml:"num"`
}

type docxParagraph struct {
	style string
	numID string
	ilvl  string
	buf   strings.Builder
}

type docxRun struct {
	bold, italic, underline, strike bool
	buf                             strings.Builder
}

// docxConverter переводит тело документа Word в HTML, сохраняя изображения в хранилище ресурсов
type docxConverter struct {
	ctx    context.Context
	assets storage.AssetStore

	files    map[string]*zip.File
	rels     map[string]relationship
	types    contentTypes
	listFmts map[string]map[string]string // numId -> ilvl -> numFmt
	stored   map[string]string            // rId -> ссылка на ресурс

	out      strings.Builder
	paras    []*docxParagraph
	runs     []*docxRun
	links    []bool
	openList string
	inPPr    bool
	inRPr    bool
	altText  string
}

func (p *Pipeline) convertDOCX(ctx context.Context, data []byte) (string, error) {
	if p.assets == nil {
		return "", &apperrors.ConversionError{Format: SourceDOCX, Err: errors.New("asset store is not configured")}
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &apperrors.ConversionError{Format: SourceDOCX, Err: fmt.Errorf("open archive: %w", err)}
	}

	c := &docxConverter{
		ctx:      ctx,
		assets:   p.assets,
		files:    make(map[string]*zip.File, len(zr.File)),
		rels:     map[string]relationship{},
		listFmts: map[string]map[string]string{},
		stored:   map[string]string{},
	}
	for _, f := range zr.File {
		c.files[f.Name] = f
	}

	text, err := c.convert()
	if err != nil {
		if errors.Is(err, apperrors.ErrConversion) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", &apperrors.ConversionError{Format: SourceDOCX, Err: err}
	}
	return text, nil
}

func (c *docxConverter) convert() (string, error) {
	if _, ok := c.files[docxDocumentPart]; !ok {
		return "", fmt.Errorf("archive has no %s", docxDocumentPart)
	}
	if err := c.loadParts(); err != nil {
		return "", err
	}

	body, err := c.readPart(docxDocumentPart)
	if err != nil {
		return "", err
	}

	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", docxDocumentPart, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := c.start(dec, t); err != nil {
				return "", err
			}
		case xml.EndElement:
			if err := c.end(t); err != nil {
				return "", err
			}
		}
	}
	c.closeList()
	return strings.TrimSpace(c.out.String()), nil
}

// loadParts читает связи, типы содержимого и нумерацию; отсутствие необязательных частей не ошибка
func (c *docxConverter) loadParts() error {
	if _, ok := c.files[docxRelsPart]; ok {
		var rels relationships
		if err := c.unmarshalPart(docxRelsPart, &rels); err != nil {
			return err
		}
		for _, r := range rels.Items {
			c.rels[r.ID] = r
		}
	}
	if _, ok := c.files[docxContentTypes]; ok {
		if err := c.unmarshalPart(docxContentTypes, &c.types); err != nil {
			return err
		}
	}
	if _, ok := c.files[docxNumbering]; ok {
		var num numberingPart
		if err := c.unmarshalPart(docxNumbering, &num); err != nil {
			return err
		}
		abstract := make(map[string]map[string]string, len(num.Abstract))
		for _, a := range num.Abstract {
			levels := make(map[string]string, len(a.Levels))
			for _, l := range a.Levels {
				levels[l.Ilvl] = l.NumFmt.Val
			}
			abstract[a.ID] = levels
		}
		for _, n := range num.Nums {
			if levels, ok := abstract[n.Abstract.Val]; ok {
				c.listFmts[n.ID] = levels
			}
		}
	}
	return nil
}

func (c *docxConverter) readPart(name string) ([]byte, error) {
	f, ok := c.files[name]
	if !ok {
		return nil, fmt.Errorf("archive has no %s", name)
	}
	if f.UncompressedSize64 > maxDocxPart {
		return nil, fmt.Errorf("part %s is too large", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxDocxPart+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > maxDocxPart {
		return nil, fmt.Errorf("part %s is too large", name)
	}
	return data, nil
}

func (c *docxConverter) unmarshalPart(name string, v interface{}) error {
	data, err := c.readPart(name)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (c *docxConverter) start(dec *xml.Decoder, el xml.StartElement) error {
	switch el.Name.Local {
	case "Fallback":
		// mc:Fallback дублирует содержимое mc:Choice
		return dec.Skip()
	case "tbl":
		if len(c.paras) == 0 {
			c.closeList()
			c.out.WriteString("<table>")
		}
	case "tr":
		if len(c.paras) == 0 {
			c.out.WriteString("<tr>")
		}
	case "tc":
		if len(c.paras) == 0 {
			c.out.WriteString("<td>")
		}
	case "p":
		c.paras = append(c.paras, &docxParagraph{})
	case "pPr":
		c.inPPr = true
	case "rPr":
		c.inRPr = true
	case "pStyle":
		if p := c.paragraph(); p != nil && c.inPPr {
			p.style = attr(el, "val")
		}
	case "numId":
		if p := c.paragraph(); p != nil && c.inPPr {
			p.numID = attr(el, "val")
		}
	case "ilvl":
		if p := c.paragraph(); p != nil && c.inPPr {
			p.ilvl = attr(el, "val")
		}
	case "r":
		c.runs = append(c.runs, &docxRun{})
	case "b", "i", "u", "strike":
		if r := c.run(); r != nil && c.inRPr && !c.inPPr {
			on := toggle(el)
			switch el.Name.Local {
			case "b":
				r.bold = on
			case "i":
				r.italic = on
			case "u":
				r.underline = on
			case "strike":
				r.strike = on
			}
		}
	case "t":
		var text string
		if err := dec.DecodeElement(&text, &el); err != nil {
			return fmt.Errorf("parse text run: %w", err)
		}
		c.write(html.EscapeString(text))
	case "tab":
		if c.run() != nil && !c.inPPr {
			c.write(" ")
		}
	case "br", "cr":
		if c.run() != nil && attr(el, "type") != "page" {
			c.write("<br>")
		}
	case "noBreakHyphen":
		c.write("-")
	case "hyperlink":
		href := c.hyperlinkTarget(el)
		if href != "" {
			c.writeParagraph(`<a href="` + html.EscapeString(href) + `">`)
		}
		c.links = append(c.links, href != "")
	case "docPr":
		c.altText = attr(el, "descr")
	case "blip":
		if id := attr(el, "embed"); id != "" {
			return c.image(id)
		}
	case "imagedata":
		if id := attr(el, "id"); id != "" {
			return c.image(id)
		}
	}
	return nil
}

func (c *docxConverter) end(el xml.EndElement) error {
	switch el.Name.Local {
	case "tbl":
		if len(c.paras) == 0 {
			c.closeList()
			c.out.WriteString("</table>")
		}
	case "tr":
		if len(c.paras) == 0 {
			c.out.WriteString("</tr>")
		}
	case "tc":
		if len(c.paras) == 0 {
			c.closeList()
			c.out.WriteString("</td>")
		}
	case "pPr":
		c.inPPr = false
	case "rPr":
		c.inRPr = false
	case "r":
		if len(c.runs) == 0 {
			return nil
		}
		r := c.runs[len(c.runs)-1]
		c.runs = c.runs[:len(c.runs)-1]
		c.writeParagraph(r.render())
	case "hyperlink":
		if n := len(c.links); n > 0 {
			if c.links[n-1] {
				c.writeParagraph("</a>")
			}
			c.links = c.links[:n-1]
		}
	case "p":
		if len(c.paras) == 0 {
			return nil
		}
		p := c.paras[len(c.paras)-1]
		c.paras = c.paras[:len(c.paras)-1]
		if parent := c.paragraph(); parent != nil {
			// Абзац текстового поля встраивается в охватывающий абзац
			if content := strings.TrimSpace(p.buf.String()); content != "" {
				parent.buf.WriteString(" " + content)
			}
			return nil
		}
		c.emitParagraph(p)
		return c.ctx.Err()
	}
	return nil
}

func (c *docxConverter) paragraph() *docxParagraph {
	if len(c.paras) == 0 {
		return nil
	}
	return c.paras[len(c.paras)-1]
}

func (c *docxConverter) run() *docxRun {
	if len(c.runs) == 0 {
		return nil
	}
	return c.runs[len(c.runs)-1]
}

// write добавляет фрагмент в текущий run, а вне run в текущий абзац
func (c *docxConverter) write(s string) {
	if r := c.run(); r != nil {
		r.buf.WriteString(s)
		return
	}
	c.writeParagraph(s)
}

func (c *docxConverter) writeParagraph(s string) {
	if p := c.paragraph(); p != nil {
		p.buf.WriteString(s)
	}
}

func (c *docxConverter) emitParagraph(p *docxParagraph) {
	content := strings.TrimSpace(p.buf.String())

	if p.numID != "" && p.numID != "0" {
		tag := c.listTag(p.numID, p.ilvl)
		if c.openList != tag {
			c.closeList()
			c.out.WriteString("<" + tag + ">")
			c.openList = tag
		}
		c.out.WriteString("<li>" + content + "</li>")
		return
	}

	c.closeList()
	if content == "" {
		return
	}
	if level := headingLevel(p.style); level > 0 {
		fmt.Fprintf(&c.out, "<h%d>%s</h%d>", level, content, level)
		return
	}
	c.out.WriteString("<p>" + content + "</p>")
}

func (c *docxConverter) closeList() {
	if c.openList != "" {
		c.out.WriteString("</" + c.openList + ">")
		c.openList = ""
	}
}

func (c *docxConverter) listTag(numID, ilvl string) string {
	if ilvl == "" {
		ilvl = "0"
	}
	levels, ok := c.listFmts[numID]
	if !ok || levels[ilvl] == "bullet" || levels[ilvl] == "" {
		return "ul"
	}
	return "ol"
}

func (c *docxConverter) hyperlinkTarget(el xml.StartElement) string {
	if id := attr(el, "id"); id != "" {
		if rel, ok := c.rels[id]; ok && strings.EqualFold(rel.TargetMode, "External") {
			return safeLinkTarget(rel.Target)
		}
	}
	if anchor := attr(el, "anchor"); anchor != "" {
		return "#" + anchor
	}
	return ""
}

// linkSchemes: схемы внешних ссылок, которые попадают в href
var linkSchemes = map[string]bool{"http": true, "https": true, "mailto": true}

// safeLinkTarget возвращает внешнюю ссылку, если ее схема разрешена; иначе пустую строку,
// и гиперссылка выводится как обычный текст
func safeLinkTarget(target string) string {
	target = strings.TrimSpace(target)
	u, err := url.Parse(target)
	if err != nil || !linkSchemes[strings.ToLower(u.Scheme)] {
		return ""
	}
	return target
}

// image сохраняет встроенное изображение и вставляет ссылку на него
func (c *docxConverter) image(relID string) error {
	alt := c.altText
	c.altText = ""

	ref, ok := c.stored[relID]
	if !ok {
		rel, found := c.rels[relID]
		if !found {
			return fmt.Errorf("image relationship %s is missing", relID)
		}
		if strings.EqualFold(rel.TargetMode, "External") {
			// Связанное, а не встроенное изображение
			ref = rel.Target
		} else {
			partName := resolvePart(rel.Target)
			data, err := c.readPart(partName)
			if err != nil {
				return err
			}
			contentType, ext := c.imageType(partName)
			ref, err = c.assets.Put(c.ctx, storage.ContentName(SourceDOCX, data, ext), contentType, data)
			if err != nil {
				return fmt.Errorf("store image %s: %w", partName, err)
			}
		}
		c.stored[relID] = ref
	}

	c.write(`<img src="` + html.EscapeString(ref) + `" alt="` + html.EscapeString(alt) + `">`)
	return nil
}

// imageType определяет MIME-тип по [Content_Types].xml, а расширение выводит из него
func (c *docxConverter) imageType(partName string) (contentType, ext string) {
	fileExt := strings.TrimPrefix(strings.ToLower(path.Ext(partName)), ".")
	for _, o := range c.types.Overrides {
		if strings.TrimPrefix(o.PartName, "/") == partName {
			contentType = o.ContentType
		}
	}
	if contentType == "" {
		for _, d := range c.types.Defaults {
			if strings.EqualFold(d.Extension, fileExt) {
				contentType = d.ContentType
			}
		}
	}
	if contentType == "" {
		contentType = storage.ImageContentType(fileExt)
	}
	if ext = storage.ExtensionForContentType(contentType); ext == "" {
		ext = storage.ImageExtension(fileExt)
	}
	return contentType, ext
}

func resolvePart(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join("word", target))
}

func headingLevel(style string) int {
	s := strings.ToLower(strings.TrimSpace(style))
	switch s {
	case "title":
		return 1
	case "subtitle":
		return 2
	}
	if m := headingStyle.FindStringSubmatch(s); m != nil {
		return int(m[1][0] - '0')
	}
	return 0
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// toggle читает булево свойство run: отсутствие val означает включено
func toggle(el xml.StartElement) bool {
	switch strings.ToLower(attr(el, "val")) {
	case "0", "false", "off", "none":
		return false
	}
	return true
}

func (r *docxRun) render() string {
	s := r.buf.String()
	if strings.TrimSpace(s) == "" {
		return s
	}
	if r.strike {
		s = "<s>" + s + "</s>"
	}
	if r.underline {
		s = "<u>" + s + "</u>"
	}
	if r.italic {
		s = "<em>" + s + "</em>"
	}
	if r.bold {
		s = "<strong>" + s + "</strong>"
	}
	return s
}
