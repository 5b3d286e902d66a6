package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ImageInput is one entry of a gallery's incoming images list. It is a closed
// set: ImageByID, ImageByURL, ImageByIDWithFlag and ImageByURLWithFlag.
type ImageInput interface {
	Position() int
	// TitleFlag returns the explicit titleImage value, if the entry carried one.
	TitleFlag() (value bool, explicit bool)
	imageInput()
}

// ImageByID is a bare string id of an existing GalleryImage.
type ImageByID struct {
	Index int
	ID    uuid.UUID
}

// ImageByURL is a bare blob-store URL that becomes a new GalleryImage.
type ImageByURL struct {
	Index int
	URL   string
}

// ImageByIDWithFlag is {"id"|"image": ..., "titleImage"?: bool}.
type ImageByIDWithFlag struct {
	Index      int
	ID         uuid.UUID
	TitleImage *bool
}

// ImageByURLWithFlag is {"url": ..., "caption"?: string, "titleImage"?: bool}.
type ImageByURLWithFlag struct {
	Index      int
	URL        string
	Caption    string
	TitleImage *bool
}

func (i ImageByID) Position() int          { return i.Index }
func (i ImageByURL) Position() int         { return i.Index }
func (i ImageByIDWithFlag) Position() int  { return i.Index }
func (i ImageByURLWithFlag) Position() int { return i.Index }

func (ImageByID) TitleFlag() (bool, bool)  { return false, false }
func (ImageByURL) TitleFlag() (bool, bool) { return false, false }

func (i ImageByIDWithFlag) TitleFlag() (bool, bool) {
	if i.TitleImage == nil {
		return false, false
	}
	return *i.TitleImage, true
}

func (i ImageByURLWithFlag) TitleFlag() (bool, bool) {
	if i.TitleImage == nil {
		return false, false
	}
	return *i.TitleImage, true
}

func (ImageByID) imageInput()          {}
func (ImageByURL) imageInput()         {}
func (ImageByIDWithFlag) imageInput()  {}
func (ImageByURLWithFlag) imageInput() {}

type imageObject struct {
	ID         *string `json:"id"`
	Image      *string `json:"image"`
	URL        *string `json:"url"`
	Caption    *string `json:"caption"`
	TitleImage *bool   `json:"titleImage"`
}

// ParseImageInput classifies a raw images[index] entry.
func ParseImageInput(raw json.RawMessage, index int) (ImageInput, error) {
	field := fmt.Sprintf("images[%d]", index)
	trimmed := bytes.TrimSpace(raw)

	if len(trimmed) == 0 {
		return nil, NewValidationError(field, "empty entry")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, NewValidationError(field, "malformed string")
		}
		s = strings.TrimSpace(s)

		if id, err := uuid.Parse(s); err == nil {
			return ImageByID{Index: index, ID: id}, nil
		}
		if isHTTPURL(s) {
			return ImageByURL{Index: index, URL: s}, nil
		}

		return nil, NewValidationError(field, "%q is neither an image id nor an http(s) URL", s)

	case '{':
		var obj imageObject
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, NewValidationError(field, "malformed object: %v", err)
		}

		idStr := obj.ID
		if idStr == nil {
			idStr = obj.Image
		}

		if idStr != nil {
			id, err := uuid.Parse(strings.TrimSpace(*idStr))
			if err != nil {
				return nil, NewValidationError(field, "invalid image id %q", *idStr)
			}
			return ImageByIDWithFlag{Index: index, ID: id, TitleImage: obj.TitleImage}, nil
		}

		if obj.URL != nil {
			u := strings.TrimSpace(*obj.URL)
			if !isHTTPURL(u) {
				return nil, NewValidationError(field, "url %q is not an http(s) URL", u)
			}

			in := ImageByURLWithFlag{Index: index, URL: u, TitleImage: obj.TitleImage}
			if obj.Caption != nil {
				in.Caption = strings.TrimSpace(*obj.Caption)
			}
			return in, nil
		}

		return nil, NewValidationError(field, "object needs one of id, image or url")
	}

	return nil, NewValidationError(field, "expected a string or an object")
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// blobIDForbidden are pattern characters a blob store may expand.
const blobIDForbidden = "*?[]\\"

// BlobIDFromURL derives a blob identifier from a hosted image URL:
// the path after the "upload" segment, without a v<digits> version segment
// and without the extension. Without an "upload" segment the last path
// segment minus extension is used.
func BlobIDFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", NewValidationError("url", "cannot parse %q", rawURL)
	}

	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })

	var rest []string
	for i, s := range segments {
		if s == "upload" {
			rest = segments[i+1:]
			break
		}
	}

	if rest == nil {
		if len(segments) == 0 {
			return "", NewValidationError("url", "no blob identifier in %q", rawURL)
		}
		rest = segments[len(segments)-1:]
	} else if len(rest) > 1 && isVersionSegment(rest[0]) {
		rest = rest[1:]
	}

	id := strings.Join(rest, "/")
	id = strings.TrimSuffix(id, path.Ext(id))

	if id == "" {
		return "", NewValidationError("url", "no blob identifier in %q", rawURL)
	}

	if strings.ContainsAny(id, blobIDForbidden) {
		return "", NewValidationError("url", "blob identifier %q contains forbidden characters", id)
	}

	for _, s := range strings.Split(id, "/") {
		if s == "." || s == ".." {
			return "", NewValidationError("url", "blob identifier %q contains a relative segment", id)
		}
	}

	return id, nil
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}

	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
