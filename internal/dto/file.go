package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"studio-storefront/internal/model"
)

// FileRef accepts a file either as a bare URL string or as an object with a
// url. Everything past the request boundary sees the object form.
type FileRef struct {
	URL          string `json:"url"`
	Name         string `json:"name,omitempty"`
	Type         string `json:"type,omitempty"`
	Size         int64  `json:"size,omitempty"`
	SectionIndex int    `json:"sectionIndex"`
}

func (f *FileRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var url string
		if err := json.Unmarshal(data, &url); err != nil {
			return err
		}
		*f = FileRef{URL: strings.TrimSpace(url), Name: path.Base(url)}
		return nil
	}

	type plain FileRef
	var p struct {
		plain
		// older clients sent originalName instead of name
		OriginalName string `json:"originalName"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("file must be a url string or an object: %w", err)
	}
	*f = FileRef(p.plain)
	f.URL = strings.TrimSpace(f.URL)
	if f.Name == "" {
		f.Name = p.OriginalName
	}
	return nil
}

func (f FileRef) UploadedFile() model.UploadedFile {
	return model.UploadedFile{
		URL:          f.URL,
		Name:         f.Name,
		Type:         f.Type,
		Size:         f.Size,
		SectionIndex: f.SectionIndex,
	}
}

// FileList accepts an array of FileRef or a single comma separated string
// of URLs.
type FileList []FileRef

func (l *FileList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		var out FileList
		for _, url := range strings.Split(joined, ",") {
			if url = strings.TrimSpace(url); url != "" {
				out = append(out, FileRef{URL: url, Name: path.Base(url)})
			}
		}
		*l = out
		return nil
	}

	var refs []FileRef
	if err := json.Unmarshal(data, &refs); err != nil {
		return err
	}
	*l = refs
	return nil
}

// UploadedFiles drops entries without a usable url.
func (l FileList) UploadedFiles() []model.UploadedFile {
	out := make([]model.UploadedFile, 0, len(l))
	for _, f := range l {
		if f.URL == "" || f.URL == "undefined" || f.URL == "null" {
			continue
		}
		out = append(out, f.UploadedFile())
	}
	return out
}
