package metadata

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
)

// The tokenizer decodes every HTML entity it sees, but only the fixed set in
// DecodeEntities may be decoded. '&' is hidden behind a private-use pair while
// tokenizing; a private-use marker already in the page gets its own pair so
// it survives the round trip.
const (
	escMarker = "\uE000"
	escAmp    = escMarker + "\uE001"
	escLit    = escMarker + "\uE002"
)

var (
	ampEscaper  = strings.NewReplacer("&", escAmp, escMarker, escLit)
	ampRestorer = strings.NewReplacer(escAmp, "&", escLit, escMarker)
	entityOrder = [][2]string{
		{"&amp;", "&"},
		{"&lt;", "<"},
		{"&gt;", ">"},
		{"&quot;", `"`},
		{"&#39;", "'"},
		{"&#x27;", "'"},
		{"&#x2F;", "/"},
	}
)

// DecodeEntities decodes &amp; &lt; &gt; &quot; &#39; &#x27; and &#x2F;, one
// after another in that order, so "&amp;lt;" ends up as "<". Any other
// entity is left as is.
func DecodeEntities(s string) string {
	for _, e := range entityOrder {
		s = strings.ReplaceAll(s, e[0], e[1])
	}
	return s
}

var (
	titleKeys       = []string{"og:title", "twitter:title"}
	descriptionKeys = []string{"og:description", "twitter:description", "description"}
	imageKeys       = []string{"og:image", "twitter:image"}
)

// scan holds what the tokenizer found. Meta values keyed by property win
// over those keyed by name.
type scan struct {
	property  map[string]string
	name      map[string]string
	title     string
	icon      string
	appleIcon string
}

// Extract tokenizes an HTML document and resolves metadata against the
// origin of pageURL.
func Extract(r io.Reader, pageURL *url.URL) (*domain.Metadata, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s, err := tokenize(strings.NewReader(ampEscaper.Replace(string(raw))))
	if err != nil {
		return nil, err
	}

	origin := &url.URL{Scheme: pageURL.Scheme, Host: pageURL.Host, Path: "/"}
	md := &domain.Metadata{}

	if v := s.first(titleKeys); v != "" {
		md.Title = ptr(DecodeEntities(v))
	} else if v := strings.TrimSpace(restore(s.title)); v != "" {
		md.Title = ptr(DecodeEntities(v))
	}
	if v := s.first(descriptionKeys); v != "" {
		md.Description = ptr(DecodeEntities(v))
	}
	if v := s.first(imageKeys); v != "" {
		md.Image = ptr(resolve(origin, v))
	}

	switch {
	case s.icon != "":
		md.Favicon = ptr(resolve(origin, restore(s.icon)))
	case s.appleIcon != "":
		md.Favicon = ptr(resolve(origin, restore(s.appleIcon)))
	default:
		md.Favicon = ptr(origin.Scheme + "://" + origin.Host + "/favicon.ico")
	}
	return md, nil
}

func tokenize(r io.Reader) (*scan, error) {
	s := &scan{property: map[string]string{}, name: map[string]string{}}
	z := html.NewTokenizer(r)
	inTitle, titleDone := false, false

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return s, nil
			}
			return nil, z.Err()

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if tag == "title" && !titleDone && tt == html.StartTagToken {
				inTitle = true
				continue
			}
			if !hasAttr || (tag != "meta" && tag != "link") {
				continue
			}
			attrs := readAttrs(z)
			if tag == "meta" {
				s.addMeta(attrs)
			} else {
				s.addLink(attrs)
			}

		case html.TextToken:
			if inTitle {
				s.title += string(z.Text())
			}

		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "title" && inTitle {
				inTitle, titleDone = false, true
			}
		}
	}
}

// readAttrs keeps the first occurrence of each attribute. Keys arrive
// lower-cased from the tokenizer.
func readAttrs(z *html.Tokenizer) map[string]string {
	attrs := map[string]string{}
	for {
		key, val, more := z.TagAttr()
		k := string(key)
		if _, seen := attrs[k]; !seen {
			attrs[k] = string(val)
		}
		if !more {
			return attrs
		}
	}
}

func (s *scan) addMeta(attrs map[string]string) {
	content := attrs["content"]
	if content == "" {
		return
	}
	for attr, found := range map[string]map[string]string{"property": s.property, "name": s.name} {
		key := strings.ToLower(strings.TrimSpace(attrs[attr]))
		if key == "" {
			continue
		}
		if _, ok := found[key]; !ok {
			found[key] = content
		}
	}
}

func (s *scan) addLink(attrs map[string]string) {
	href := strings.TrimSpace(attrs["href"])
	if href == "" {
		return
	}
	switch strings.ToLower(strings.TrimSpace(attrs["rel"])) {
	case "icon", "shortcut icon":
		if s.icon == "" {
			s.icon = href
		}
	case "apple-touch-icon":
		if s.appleIcon == "" {
			s.appleIcon = href
		}
	}
}

func (s *scan) first(keys []string) string {
	for _, k := range keys {
		if v, ok := s.property[k]; ok {
			return restore(v)
		}
		if v, ok := s.name[k]; ok {
			return restore(v)
		}
	}
	return ""
}

func restore(s string) string {
	return ampRestorer.Replace(s)
}

// resolve turns a relative reference into an absolute URL on origin. Values
// that do not parse are returned unchanged.
func resolve(origin *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return ref
	}
	return origin.ResolveReference(u).String()
}

func ptr(s string) *string { return &s }
