// Package locator finds an image reference inside loosely shaped JSON replies
// from chat-completion and image-generation backends.
//
// A reply is treated as a tagged JSON value (object, array, string, number,
// bool, null) and walked depth-first with a fixed rule order; the first rule
// that yields a reference wins. Absence of an image is a normal outcome.
package locator

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

const maxDepth = 64

var (
	markdownDataURI = regexp.MustCompile(`!\[.*?\]\((data:image/[\w+]+;base64,[^\s)]+)\)`)
	markdownURL     = regexp.MustCompile(`!\[.*?\]\((https?://[^\s)]+)\)`)
	bareDataURI     = regexp.MustCompile(`(data:image/[\w+]+;base64,[A-Za-z0-9+/=]+)`)
)

// Descriptive fields are never searched; they tend to echo prompts back.
var prunedFields = map[string]struct{}{
	"prompt":          {},
	"negative_prompt": {},
	"text":            {},
	"role":            {},
	"type":            {},
}

// LocateBytes parses raw JSON and locates an image reference in it.
// Invalid JSON is reported as not found.
func LocateBytes(raw []byte) (string, bool) {
	if !gjson.ValidBytes(raw) {
		return "", false
	}
	return Locate(gjson.ParseBytes(raw))
}

// Locate returns the first http(s) URL or data:image URI found in v.
func Locate(v gjson.Result) (string, bool) {
	return locate(v, 0)
}

func locate(v gjson.Result, depth int) (string, bool) {
	if depth > maxDepth {
		return "", false
	}

	switch {
	case v.IsArray():
		for _, item := range v.Array() {
			if found, ok := locate(item, depth+1); ok {
				return found, true
			}
		}
		return "", false
	case v.IsObject():
		return locateInObject(v, depth)
	default:
		return "", false
	}
}

func locateInObject(obj gjson.Result, depth int) (string, bool) {
	// image_url.url
	if imageURL := obj.Get("image_url"); imageURL.IsObject() {
		if u := imageURL.Get("url"); u.Type == gjson.String && u.Str != "" {
			return u.Str, true
		}
	}

	if u := obj.Get("url"); u.Type == gjson.String && u.Str != "" {
		if strings.HasPrefix(u.Str, "data:image/") || strings.HasPrefix(u.Str, "http") {
			return u.Str, true
		}
	}

	if found, ok := firstElement(obj.Get("images"), depth); ok {
		return found, true
	}

	if content := obj.Get("content"); content.Type == gjson.String {
		if found, ok := scanContent(content.Str); ok {
			return found, true
		}
	}

	if found, ok := firstElement(obj.Get("data"), depth); ok {
		return found, true
	}

	if b64 := obj.Get("b64_json"); b64.Type == gjson.String && b64.Str != "" {
		return "data:image/png;base64," + b64.Str, true
	}

	var (
		found string
		ok    bool
	)
	obj.ForEach(func(key, value gjson.Result) bool {
		if _, skip := prunedFields[key.Str]; skip {
			return true
		}
		found, ok = locate(value, depth+1)
		return !ok
	})
	return found, ok
}

func firstElement(arr gjson.Result, depth int) (string, bool) {
	if !arr.IsArray() {
		return "", false
	}
	items := arr.Array()
	if len(items) == 0 {
		return "", false
	}
	return locate(items[0], depth+1)
}

// scanContent looks for, in order: a Markdown image around a data URI, a
// Markdown image around an http(s) URL, then any bare data URI.
func scanContent(content string) (string, bool) {
	if m := markdownDataURI.FindStringSubmatch(content); m != nil {
		return m[1], true
	}
	if m := markdownURL.FindStringSubmatch(content); m != nil {
		return m[1], true
	}
	if m := bareDataURI.FindStringSubmatch(content); m != nil {
		return m[1], true
	}
	return "", false
}

// ContentExcerpt returns at most n runes of choices[0].message.content, which
// is what chat backends reply with when they produce text instead of an image.
func ContentExcerpt(raw []byte, n int) string {
	content := gjson.GetBytes(raw, "choices.0.message.content")
	if content.Type != gjson.String {
		return ""
	}
	return Truncate(content.Str, n)
}

// Truncate cuts s to n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
