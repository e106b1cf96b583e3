package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func extract(t *testing.T, page string) *domain.Metadata {
	t.Helper()
	md, err := Extract(strings.NewReader(page), mustParse(t, "https://example.com/blog/post"))
	require.NoError(t, err)
	return md
}

func TestExtractTitlePriority(t *testing.T) {
	tests := []struct {
		name string
		page string
		want *string
	}{
		{
			name: "og beats title element",
			page: `<html><head><title>B</title><meta property="og:title" content="A"></head></html>`,
			want: ptr("A"),
		},
		{
			name: "twitter beats title element",
			page: `<head><title>B</title><meta name="twitter:title" content="T"></head>`,
			want: ptr("T"),
		},
		{
			name: "og beats twitter regardless of order",
			page: `<meta name="twitter:title" content="T"><meta property="og:title" content="A">`,
			want: ptr("A"),
		},
		{
			name: "property beats name for the same key",
			page: `<meta name="og:title" content="FromName"><meta property="og:title" content="FromProperty">`,
			want: ptr("FromProperty"),
		},
		{
			name: "name used when no property matches",
			page: `<meta name="og:title" content="FromName"><meta property="twitter:title" content="Tw">`,
			want: ptr("FromName"),
		},
		{
			name: "title element trimmed",
			page: "<head><title>\n  Plain Title  \n</title></head>",
			want: ptr("Plain Title"),
		},
		{
			name: "content before property",
			page: `<meta content="Reversed" property="og:title"/>`,
			want: ptr("Reversed"),
		},
		{
			name: "nothing",
			page: `<html><body><p>hi</p></body></html>`,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := extract(t, tt.page)
			assert.Equal(t, tt.want, md.Title)
		})
	}
}

func TestExtractDescriptionPriority(t *testing.T) {
	md := extract(t, `<meta name="description" content="generic"><meta name="twitter:description" content="tw">`)
	require.NotNil(t, md.Description)
	assert.Equal(t, "tw", *md.Description)

	md = extract(t, `<meta name="description" content="generic">`)
	require.NotNil(t, md.Description)
	assert.Equal(t, "generic", *md.Description)

	md = extract(t, `<meta property="OG:Description" content="og">`)
	require.NotNil(t, md.Description)
	assert.Equal(t, "og", *md.Description)

	md = extract(t, `<meta name="description" content="">`)
	assert.Nil(t, md.Description)
}

func TestExtractImageResolution(t *testing.T) {
	md := extract(t, `<meta property="og:image" content="/img/cover.png">`)
	require.NotNil(t, md.Image)
	assert.Equal(t, "https://example.com/img/cover.png", *md.Image)

	md = extract(t, `<meta name="twitter:image" content="https://cdn.example.org/a.jpg?x=1&y=2">`)
	require.NotNil(t, md.Image)
	assert.Equal(t, "https://cdn.example.org/a.jpg?x=1&y=2", *md.Image)

	md = extract(t, `<p>no image</p>`)
	assert.Nil(t, md.Image)
}

func TestExtractFavicon(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{"fallback", `<head></head>`, "https://example.com/favicon.ico"},
		{"icon relative", `<link rel="icon" href="/static/icon.png">`, "https://example.com/static/icon.png"},
		{"href before rel", `<link href="fav.ico" rel="shortcut icon">`, "https://example.com/fav.ico"},
		{
			"icon beats apple-touch-icon",
			`<link rel="apple-touch-icon" href="/apple.png"><link rel="icon" href="/icon.png">`,
			"https://example.com/icon.png",
		},
		{"apple-touch-icon only", `<link rel='apple-touch-icon' href='/apple.png'>`, "https://example.com/apple.png"},
		{"absolute kept", `<link rel="icon" href="https://cdn.example.net/i.ico">`, "https://cdn.example.net/i.ico"},
		{"stylesheet ignored", `<link rel="stylesheet" href="/s.css">`, "https://example.com/favicon.ico"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := extract(t, tt.page)
			require.NotNil(t, md.Favicon)
			assert.Equal(t, tt.want, *md.Favicon)
		})
	}
}

func TestDecodeEntities(t *testing.T) {
	assert.Equal(t, "Tom & Jerry", DecodeEntities("Tom &amp; Jerry"))
	assert.Equal(t, "&copy; 2024", DecodeEntities("&copy; 2024"))
	assert.Equal(t, `<a> "b" 'c' 'd' /e`, DecodeEntities("&lt;a&gt; &quot;b&quot; &#39;c&#39; &#x27;d&#x27; &#x2F;e"))
	assert.Equal(t, "<", DecodeEntities("&amp;lt;"))
	assert.Equal(t, "a & b", DecodeEntities("a &amp;amp; b"))
}

func TestExtractOnlyDecodesFixedEntities(t *testing.T) {
	md := extract(t, `<title>Tom &amp; Jerry &copy; MGM</title>`)
	require.NotNil(t, md.Title)
	assert.Equal(t, "Tom & Jerry &copy; MGM", *md.Title)

	md = extract(t, `<meta property="og:description" content="Fish &amp; Chips &hellip;">`)
	require.NotNil(t, md.Description)
	assert.Equal(t, "Fish & Chips &hellip;", *md.Description)

	md = extract(t, `<title>Tom &amp;lt; Jerry</title>`)
	require.NotNil(t, md.Title)
	assert.Equal(t, "Tom < Jerry", *md.Title)
}

func TestExtractKeepsPrivateUseText(t *testing.T) {
	md := extract(t, "<title>a\uE000b &amp; c\uE000\uE001d</title>"+
		"<meta property=\"og:description\" content=\"x\uE000&amp;y\">")
	require.NotNil(t, md.Title)
	assert.Equal(t, "a\uE000b & c\uE000\uE001d", *md.Title)
	require.NotNil(t, md.Description)
	assert.Equal(t, "x\uE000&y", *md.Description)
}

func TestValidateURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "ftp://example.com", "/relative", "https://"} {
		_, err := ValidateURL(raw)
		assert.ErrorIs(t, err, domain.ErrInvalidURL, raw)
	}
	u, err := ValidateURL(" https://example.com/x ")
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Host)
}

func TestFetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		fmt.Fprint(w, `<html><head>
			<title>B</title>
			<meta property="og:title" content="A">
			<meta property="og:image" content="/cover.png">
		</head></html>`)
	}))
	defer srv.Close()

	md, err := New().Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, gotUA)
	require.NotNil(t, md.Title)
	assert.Equal(t, "A", *md.Title)
	require.NotNil(t, md.Image)
	assert.Equal(t, srv.URL+"/cover.png", *md.Image)
	require.NotNil(t, md.Favicon)
	assert.Equal(t, srv.URL+"/favicon.ico", *md.Favicon)
}

func TestFetchFailuresCollapse(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `<meta property="og:title" content="partial">`)
		}))
		defer srv.Close()

		md, err := New().Fetch(context.Background(), srv.URL)
		assert.ErrorIs(t, err, domain.ErrMetadataUnavailable)
		assert.Nil(t, md)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		md, err := New(WithTimeout(50*time.Millisecond)).Fetch(context.Background(), srv.URL)
		assert.ErrorIs(t, err, domain.ErrMetadataUnavailable)
		assert.Nil(t, md)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		md, err := New().Fetch(context.Background(), addr)
		assert.ErrorIs(t, err, domain.ErrMetadataUnavailable)
		assert.Nil(t, md)
	})

	t.Run("invalid url never fetched", func(t *testing.T) {
		md, err := New().Fetch(context.Background(), "mailto:someone@example.com")
		assert.ErrorIs(t, err, domain.ErrInvalidURL)
		assert.Nil(t, md)
	})
}
