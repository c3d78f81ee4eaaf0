package lsp

import (
	"net/url"
	"path/filepath"
)

// uriToPath returns the local path of a file URI, or "" for other schemes.
func uriToPath(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" && parsed.Scheme != "file" {
		return ""
	}
	path := parsed.Path
	if parsed.Scheme == "" {
		path = uri
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	path = filepath.FromSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path
}

func pathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// canonicalURI приводит file:// URI к одному виду, чтобы ключи документов
// совпадали независимо от экранирования клиента. Прочие схемы (untitled:)
// остаются как есть.
func canonicalURI(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != "file" {
		return uri
	}
	if path := uriToPath(uri); path != "" {
		return pathToURI(path)
	}
	return uri
}

// documentName is the file name findings of uri are reported under.
func documentName(uri string) string {
	if path := uriToPath(uri); path != "" {
		return path
	}
	return uri
}
