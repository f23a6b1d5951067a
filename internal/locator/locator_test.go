package locator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestLocateBytes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		found bool
	}{
		{
			name:  "images array with url",
			input: `{"images": [{"url": "http://x/y.png"}]}`,
			want:  "http://x/y.png",
			found: true,
		},
		{
			name:  "chat markdown data uri",
			input: `{"choices": [{"message": {"content": "![img](data:image/png;base64,AAA)"}}]}`,
			want:  "data:image/png;base64,AAA",
			found: true,
		},
		{
			name:  "data b64_json",
			input: `{"data": [{"b64_json": "ZZZ"}]}`,
			want:  "data:image/png;base64,ZZZ",
			found: true,
		},
		{
			name:  "descriptive fields only",
			input: `{"prompt": "a cat", "text": "no image here"}`,
			found: false,
		},
		{
			name:  "image_url object",
			input: `{"choices":[{"message":{"content":[{"type":"image_url","image_url":{"url":"https://cdn/img.webp"}}]}}]}`,
			want:  "https://cdn/img.webp",
			found: true,
		},
		{
			name:  "markdown http url",
			input: `{"choices":[{"message":{"role":"assistant","content":"Here you go ![result](https://img.example/a.png) enjoy"}}]}`,
			want:  "https://img.example/a.png",
			found: true,
		},
		{
			name:  "bare data uri in content",
			input: `{"content": "prefix data:image/jpeg;base64,/9j/4AAQ== suffix"}`,
			want:  "data:image/jpeg;base64,/9j/4AAQ==",
			found: true,
		},
		{
			name:  "markdown data uri preferred over markdown url",
			input: `{"content": "![a](https://x/a.png) ![b](data:image/png;base64,QUJD)"}`,
			want:  "data:image/png;base64,QUJD",
			found: true,
		},
		{
			name:  "url without image scheme is ignored",
			input: `{"url": "ftp://host/file.png"}`,
			found: false,
		},
		{
			name:  "data url field",
			input: `{"data":[{"url":"https://files/1.png","revised_prompt":"cat"}]}`,
			want:  "https://files/1.png",
			found: true,
		},
		{
			name:  "url beats b64_json in same object",
			input: `{"b64_json":"QQ==","url":"http://u/1.png"}`,
			want:  "http://u/1.png",
			found: true,
		},
		{
			name:  "pruned field holding a data uri",
			input: `{"text": {"content": "data:image/png;base64,AAAA"}}`,
			found: false,
		},
		{
			name:  "nested unknown field",
			input: `{"result": {"output": [{"note": "x"}, {"b64_json": "TkVTVA=="}]}}`,
			want:  "data:image/png;base64,TkVTVA==",
			found: true,
		},
		{
			name:  "unrelated nested content still matches",
			input: `{"id": "x", "meta": {"content": "cached from data:image/png;base64,QUJD earlier"}}`,
			want:  "data:image/png;base64,QUJD",
			found: true,
		},
		{
			name:  "duplicate key uses first occurrence",
			input: `{"url":"ftp://a","url":"http://b.png"}`,
			found: false,
		},
		{
			name:  "top level array",
			input: `[{"foo": 1}, {"url": "https://a/b.png"}]`,
			want:  "https://a/b.png",
			found: true,
		},
		{
			name:  "top level string",
			input: `"data:image/png;base64,AAA"`,
			found: false,
		},
		{
			name:  "empty images array falls through to data",
			input: `{"images": [], "data": [{"url": "http://d/1.png"}]}`,
			want:  "http://d/1.png",
			found: true,
		},
		{
			name:  "first images element without image falls through",
			input: `{"images": [{"id": 1}], "b64_json": "Qg=="}`,
			want:  "data:image/png;base64,Qg==",
			found: true,
		},
		{
			name:  "invalid json",
			input: `{"images": [`,
			found: false,
		},
		{
			name:  "null",
			input: `null`,
			found: false,
		},
		{
			name:  "error envelope",
			input: `{"error": {"message": "quota exceeded", "type": "insufficient_quota"}}`,
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LocateBytes([]byte(tt.input))
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocate_FollowsDocumentOrder(t *testing.T) {
	v := gjson.Parse(`{"zeta": {"url": "http://first"}, "alpha": {"url": "http://second"}}`)
	got, ok := Locate(v)
	assert.True(t, ok)
	assert.Equal(t, "http://first", got)
}

func TestLocate_DeepNestingTerminates(t *testing.T) {
	input := strings.Repeat(`{"a":`, 500) + `{"url":"http://deep"}` + strings.Repeat(`}`, 500)
	_, ok := LocateBytes([]byte(input))
	assert.False(t, ok)

	shallow := strings.Repeat(`{"a":`, 10) + `{"url":"http://deep"}` + strings.Repeat(`}`, 10)
	got, ok := LocateBytes([]byte(shallow))
	assert.True(t, ok)
	assert.Equal(t, "http://deep", got)
}

func TestContentExcerpt(t *testing.T) {
	raw := []byte(`{"choices":[{"message":{"content":"` + strings.Repeat("好", 150) + `"}}]}`)
	excerpt := ContentExcerpt(raw, 100)
	assert.Equal(t, 100, len([]rune(excerpt)))

	assert.Equal(t, "", ContentExcerpt([]byte(`{"data":[]}`), 100))
	assert.Equal(t, "short", ContentExcerpt([]byte(`{"choices":[{"message":{"content":"short"}}]}`), 100))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "ab", Truncate("ab", 3))
	assert.Equal(t, "", Truncate("ab", 0))
}
