package vfs

import (
	"bytes"
	"encoding/base64"
	"mime"
	"strings"
	"unicode/utf8"
)

// DataURI encodes binary data as a base64 data URI, the form binary files
// take inside the tree.
func DataURI(mime string, data []byte) string {
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsDataURI reports whether content is a data URI.
func IsDataURI(content string) bool {
	return strings.HasPrefix(content, "data:")
}

// DataURIMediaType returns the media type of a data URI, or "".
func DataURIMediaType(content string) string {
	if !IsDataURI(content) {
		return ""
	}
	rest := content[len("data:"):]
	if i := strings.IndexAny(rest, ";,"); i >= 0 {
		return rest[:i]
	}
	return ""
}

// DecodeDataURI returns the payload of a base64 data URI.
func DecodeDataURI(content string) ([]byte, bool) {
	if !IsDataURI(content) {
		return nil, false
	}
	i := strings.Index(content, ",")
	if i < 0 || !strings.HasSuffix(content[:i], ";base64") {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(content[i+1:])
	if err != nil {
		return nil, false
	}
	return data, true
}

// EncodeContent turns uploaded bytes into file content. Valid UTF-8 text is
// stored as is; anything else becomes a data URI typed by the extension of
// name.
func EncodeContent(name string, data []byte) string {
	if utf8.Valid(data) && bytes.IndexByte(data, 0) < 0 {
		return string(data)
	}
	typ := ""
	if ext := Ext(name); ext != "" {
		typ = mime.TypeByExtension("." + ext)
		if i := strings.IndexByte(typ, ';'); i >= 0 {
			typ = typ[:i]
		}
	}
	return DataURI(typ, data)
}
