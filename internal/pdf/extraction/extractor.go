// Package extraction parses interactive form fields out of PDF bytes and
// provides the page/zoom geometry used to place hit-targets over them.
package extraction

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
)

// Extractor parses documents once per distinct content and caches them
type Extractor struct {
	debug bool
	cache *Cache
}

// NewExtractor creates an extractor with an LRU of cacheSize documents
func NewExtractor(cacheSize int, debug bool) *Extractor {
	return &Extractor{debug: debug, cache: NewCache(cacheSize)}
}

// Extract returns the parsed document. Parse failures are logged and yield a
// document with no fields rather than an error.
func (e *Extractor) Extract(data []byte) *Document {
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])

	if doc, ok := e.cache.Get(key); ok {
		return doc
	}

	doc, err := e.parse(data)
	if err != nil {
		log.Printf("form field extraction failed: %v", err)
		return &Document{Hash: key, Fields: []Field{}}
	}
	doc.Hash = key
	e.cache.Put(key, doc)
	return doc
}

// Cache exposes the document cache
func (e *Extractor) Cache() *Cache {
	return e.cache
}

func (e *Extractor) parse(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	ctx, err := readContext(data)
	if err != nil {
		return nil, err
	}

	fr := &formReader{ctx: ctx, debug: e.debug}
	doc := &Document{
		NumPages: ctx.PageCount,
		Pages:    fr.pages(),
		Fields:   fr.fields(),
	}
	if doc.Fields == nil {
		doc.Fields = []Field{}
	}

	for i, text := range pageTexts(data, doc.NumPages, e.debug) {
		doc.Pages[i].Text = text
	}

	if e.debug {
		log.Printf("extracted %d fields from %d pages", len(doc.Fields), doc.NumPages)
	}
	return doc, nil
}

// Context describes where the given fields sit in the document: their page,
// position and the surrounding page text. It feeds AI prompts.
func (d *Document) Context(fields []Field) string {
	if d == nil || len(fields) == 0 {
		return ""
	}

	var b strings.Builder
	pages := make(map[int]bool)
	var order []int
	for _, f := range fields {
		fmt.Fprintf(&b, "Field %q (%s) on page %d at [%.1f %.1f %.1f %.1f]\n",
			f.Name, f.Type, f.Page, f.Rect[0], f.Rect[1], f.Rect[2], f.Rect[3])
		if !pages[f.Page] {
			pages[f.Page] = true
			order = append(order, f.Page)
		}
	}
	for _, n := range order {
		if p, ok := d.Page(n); ok && p.Text != "" {
			fmt.Fprintf(&b, "\nPage %d text:\n%s\n", n, p.Text)
		}
	}
	return b.String()
}
