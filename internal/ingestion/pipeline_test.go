package ingestion

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/lesson-api/internal/domain/entity"
	apperrors "github.com/yourusername/lesson-api/internal/pkg/errors"
)

// memoryStore запоминает сохраненные ресурсы
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memoryStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = data
	s.types[name] = contentType
	return "/uploads/" + name, nil
}

func TestPipeline_MarkdownPassthrough(t *testing.T) {
	p := NewPipeline(newMemoryStore(), time.Second, nil)

	doc, err := p.Ingest(context.Background(), "ignored", &Upload{Name: "notes.MD", Data: []byte("# Title\n\nBody")})
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody", doc.Text)
	assert.Equal(t, entity.BodyFormatMarkdown, doc.Format)
	assert.Equal(t, SourceMD, doc.Source)
}

func TestPipeline_TextPassthroughKeepsWhitespace(t *testing.T) {
	p := NewPipeline(newMemoryStore(), time.Second, nil)

	doc, err := p.Ingest(context.Background(), "", &Upload{Name: "a.txt", Data: []byte("  line one\r\nline two\n")})
	require.NoError(t, err)
	assert.Equal(t, "  line one\r\nline two\n", doc.Text)
	assert.Equal(t, SourceTXT, doc.Source)
}

func TestPipeline_InvalidUTF8IsConversionError(t *testing.T) {
	p := NewPipeline(newMemoryStore(), time.Second, nil)

	_, err := p.Ingest(context.Background(), "", &Upload{Name: "a.txt", Data: []byte{0xff, 0xfe, 0x00}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConversion))
}

func TestPipeline_FallbackToRawText(t *testing.T) {
	p := NewPipeline(newMemoryStore(), time.Second, nil)

	tests := []struct {
		name string
		file *Upload
	}{
		{"no file", nil},
		{"unsupported extension", &Upload{Name: "slides.pptx", Data: []byte("PK")}},
		{"no extension", &Upload{Name: "README", Data: []byte("readme")}},
		{"zero-byte file", &Upload{Name: "empty.pdf", Data: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := p.Ingest(context.Background(), "typed text", tt.file)
			require.NoError(t, err)
			assert.Equal(t, "typed text", doc.Text)
			assert.Equal(t, SourceText, doc.Source)
		})
	}
}

func TestPipeline_EmptyResultUsesPlaceholder(t *testing.T) {
	p := NewPipeline(newMemoryStore(), time.Second, nil)

	doc, err := p.Ingest(context.Background(), "   \n\t", nil)
	require.NoError(t, err)
	assert.Equal(t, NoContentPlaceholder, doc.Text)

	doc, err = p.Ingest(context.Background(), "raw", &Upload{Name: "blank.md", Data: []byte("\n\n")})
	require.NoError(t, err)
	assert.Equal(t, NoContentPlaceholder, doc.Text, "a supported file overrides raw text even when blank")
}

func TestPipeline_CorruptPDF(t *testing.T) {
	p := NewPipeline(newMemoryStore(), time.Second, nil)

	_, err := p.Ingest(context.Background(), "fallback", &Upload{Name: "broken.pdf", Data: []byte("not a pdf at all")})
	require.Error(t, err)
	var convErr *apperrors.ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, SourcePDF, convErr.Format)
}

func TestPipeline_Timeout(t *testing.T) {
	p := NewPipeline(newMemoryStore(), 20*time.Millisecond, nil)
	release := make(chan struct{})
	defer close(release)

	slow := func(ctx context.Context, data []byte) (string, error) {
		<-release
		return "late", nil
	}

	_, err := p.run(context.Background(), SourcePDF, slow, []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConversion))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestPipeline_ConverterPanicIsConversionError(t *testing.T) {
	p := NewPipeline(newMemoryStore(), time.Second, nil)

	boom := func(ctx context.Context, data []byte) (string, error) {
		panic("malformed xref table")
	}

	_, err := p.run(context.Background(), SourcePDF, boom, []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConversion))
}

func TestReflow(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"collapses blank runs", "Para one.\n\n\nPara two.", "Para one.\n\nPara two."},
		{"windows line endings", "Para one.\r\n\r\n\r\nPara two.\r\n", "Para one.\n\nPara two."},
		{"whitespace-only separator lines", "A\n  \t\nB", "A\n\nB"},
		{"trims paragraphs", "   A   \n\n  B  ", "A\n\nB"},
		{"keeps single newlines", "line 1\nline 2\n\nnext", "line 1\nline 2\n\nnext"},
		{"only blank", "\n\n \n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reflow(tt.raw))
		})
	}
}

// buildDocx собирает минимальный .docx из переданных частей
func buildDocx(t *testing.T, parts map[string]string, binary map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	for name, content := range binary {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const docxNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" ` +
	`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"`

func documentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document ` + docxNS + `><w:body>` + body + `</w:body></w:document>`
}

func TestPipeline_DOCX(t *testing.T) {
	image := []byte("\x89PNG fake image bytes")
	body := `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Intro &amp; Setup</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve">Plain </w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>bold</w:t></w:r>` +
		`<w:r><w:rPr><w:i w:val="0"/></w:rPr><w:t xml:space="preserve"> text</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>first</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>second</w:t></w:r></w:p>` +
		`<w:p/>` +
		`<w:p><w:hyperlink r:id="rId9"><w:r><w:t>site</w:t></w:r></w:hyperlink></w:p>` +
		`<w:p><w:r><w:drawing><wp:inline><wp:docPr id="1" name="Picture 1" descr="diagram"/><a:graphic><a:graphicData>` +
		`<a:blip r:embed="rId5"/></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`

	rels := `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId5" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/image1.png"/>` +
		`<Relationship Id="rId9" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com/?a=1&amp;b=2" TargetMode="External"/>` +
		`</Relationships>`
	types := `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="png" ContentType="image/png"/></Types>`
	numbering := `<?xml version="1.0" encoding="UTF-8"?><w:numbering ` + docxNS + `>` +
		`<w:abstractNum w:abstractNumId="0"><w:lvl w:ilvl="0"><w:numFmt w:val="decimal"/></w:lvl></w:abstractNum>` +
		`<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num></w:numbering>`

	data := buildDocx(t, map[string]string{
		"word/document.xml":            documentXML(body),
		"word/_rels/document.xml.rels": rels,
		"word/numbering.xml":           numbering,
		"[Content_Types].xml":          types,
	}, map[string][]byte{"word/media/image1.png": image})

	store := newMemoryStore()
	p := NewPipeline(store, time.Second, nil)

	doc, err := p.Ingest(context.Background(), "ignored", &Upload{Name: "Lesson.DOCX", Data: data})
	require.NoError(t, err)
	assert.Equal(t, entity.BodyFormatHTML, doc.Format)
	assert.Equal(t, SourceDOCX, doc.Source)

	require.Len(t, store.objects, 1)
	var name string
	for n := range store.objects {
		name = n
	}
	assert.True(t, strings.HasPrefix(name, "docx-"))
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.Equal(t, image, store.objects[name])
	assert.Equal(t, "image/png", store.types[name])

	want := `<h1>Intro &amp; Setup</h1>` +
		`<p>Plain <strong>bold</strong> text</p>` +
		`<ol><li>first</li><li>second</li></ol>` +
		`<p><a href="https://example.com/?a=1&amp;b=2">site</a></p>` +
		`<p><img src="/uploads/` + name + `" alt="diagram"></p>` +
		`<table><tr><td><p>cell</p></td></tr></table>`
	assert.Equal(t, want, doc.Text)
}

func TestPipeline_DOCXSameImageStoredUnderSameName(t *testing.T) {
	body := `<w:p><w:r><w:drawing><a:blip r:embed="rId1"/></w:drawing></w:r>` +
		`<w:r><w:drawing><a:blip r:embed="rId2"/></w:drawing></w:r></w:p>`
	rels := `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="image" Target="media/a.jpeg"/>` +
		`<Relationship Id="rId2" Type="image" Target="/word/media/b.jpeg"/></Relationships>`

	data := buildDocx(t, map[string]string{
		"word/document.xml":            documentXML(body),
		"word/_rels/document.xml.rels": rels,
	}, map[string][]byte{"word/media/a.jpeg": []byte("same"), "word/media/b.jpeg": []byte("same")})

	store := newMemoryStore()
	doc, err := NewPipeline(store, time.Second, nil).Ingest(context.Background(), "", &Upload{Name: "x.docx", Data: data})
	require.NoError(t, err)
	require.Len(t, store.objects, 1)
	for name := range store.objects {
		assert.True(t, strings.HasSuffix(name, ".jpg"))
		assert.Equal(t, 2, strings.Count(doc.Text, name))
	}
}

func TestPipeline_DOCXFailures(t *testing.T) {
	missingImage := buildDocx(t, map[string]string{
		"word/document.xml": documentXML(`<w:p><w:r><w:drawing><a:blip r:embed="rId1"/></w:drawing></w:r></w:p>`),
		"word/_rels/document.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="image" Target="media/gone.png"/></Relationships>`,
	}, nil)

	tests := []struct {
		name  string
		data  []byte
		store *memoryStore
	}{
		{"not a zip archive", []byte("definitely not zip"), newMemoryStore()},
		{"no document part", buildDocx(t, map[string]string{"word/styles.xml": "<x/>"}, nil), newMemoryStore()},
		{"malformed xml", buildDocx(t, map[string]string{"word/document.xml": "<w:document><w:body>"}, nil), newMemoryStore()},
		{"missing image part", missingImage, newMemoryStore()},
		{"asset store failure", buildDocx(t, map[string]string{
			"word/document.xml": documentXML(`<w:p><w:r><w:drawing><a:blip r:embed="rId1"/></w:drawing></w:r></w:p>`),
			"word/_rels/document.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
				`<Relationship Id="rId1" Type="image" Target="media/a.png"/></Relationships>`,
		}, map[string][]byte{"word/media/a.png": []byte("img")}), &memoryStore{err: errors.New("disk full")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPipeline(tt.store, time.Second, nil).Ingest(context.Background(), "fallback", &Upload{Name: "doc.docx", Data: tt.data})
			require.Error(t, err)
			var convErr *apperrors.ConversionError
			require.True(t, errors.As(err, &convErr), "got %v", err)
			assert.Equal(t, SourceDOCX, convErr.Format)
		})
	}
}

func TestPipeline_DOCXLinkSchemes(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"https", "https://example.com/", `<p><a href="https://example.com/">site</a></p>`},
		{"http", "http://example.com/", `<p><a href="http://example.com/">site</a></p>`},
		{"mailto", "mailto:team@example.com", `<p><a href="mailto:team@example.com">site</a></p>`},
		{"javascript", "javascript:alert(1)", `<p>site</p>`},
		{"javascript upper case with spaces", "  JavaScript:alert(1)", `<p>site</p>`},
		{"data", "data:text/html;base64,PHNjcmlwdD4=", `<p>site</p>`},
		{"vbscript", "vbscript:msgbox", `<p>site</p>`},
		{"relative", "page.html", `<p>site</p>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var target bytes.Buffer
			require.NoError(t, xml.EscapeText(&target, []byte(tt.target)))
			data := buildDocx(t, map[string]string{
				"word/document.xml": documentXML(`<w:p><w:hyperlink r:id="rId1"><w:r><w:t>site</w:t></w:r></w:hyperlink></w:p>`),
				"word/_rels/document.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
					`<Relationship Id="rId1" Type="hyperlink" Target="` + target.String() + `" TargetMode="External"/></Relationships>`,
			}, nil)

			doc, err := NewPipeline(newMemoryStore(), time.Second, nil).Ingest(context.Background(), "", &Upload{Name: "links.docx", Data: data})
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Text)
		})
	}
}

func TestHeadingLevel(t *testing.T) {
	assert.Equal(t, 1, headingLevel("Title"))
	assert.Equal(t, 2, headingLevel("Subtitle"))
	assert.Equal(t, 3, headingLevel("heading3"))
	assert.Equal(t, 6, headingLevel("Heading 6"))
	assert.Equal(t, 0, headingLevel("Normal"))
	assert.Equal(t, 0, headingLevel("Heading7"))
}
