package model

import (
	"strconv"
	"time"
)

const (
	MinQuantity     = 1
	MaxQuantity     = 100
	FilesPerSection = 5
)

// Design preference fields recorded per section.
const (
	PrefColorScheme  = "colorScheme"
	PrefCustomColor1 = "customColor1"
	PrefCustomColor2 = "customColor2"
	PrefComments     = "comments"

	ColorSchemeCustom = "custom"
)

// SectionFields lists the preference fields in their canonical order.
var SectionFields = []string{PrefColorScheme, PrefCustomColor1, PrefCustomColor2, PrefComments}

// PreferenceKey returns the designPreferences key of field for a section,
// e.g. colorScheme_2.
func PreferenceKey(field string, section int) string {
	return field + "_" + strconv.Itoa(section)
}

// UploadedFile is a reference to a stored customer file, tagged with the
// section of its line item.
type UploadedFile struct {
	URL          string `json:"url"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Size         int64  `json:"size,omitempty"`
	SectionIndex int    `json:"sectionIndex"`
}

type CartLineItem struct {
	ID                string            `json:"id"`
	ServiceID         string            `json:"serviceId"`
	Service           ServiceOffering   `json:"service"`
	Quantity          int               `json:"quantity"`
	DesignPreferences map[string]string `json:"designPreferences"`
	UploadedFiles     []UploadedFile    `json:"uploadedFiles"`
	AddedAt           time.Time         `json:"addedAt"`
}

// SectionFiles returns the files tagged with the given section, in order.
func (i CartLineItem) SectionFiles(section int) []UploadedFile {
	var out []UploadedFile
	for _, f := range i.UploadedFiles {
		if f.SectionIndex == section {
			out = append(out, f)
		}
	}
	return out
}

// Clone returns a deep copy so callers can mutate maps and slices freely.
func (i CartLineItem) Clone() CartLineItem {
	c := i
	if i.DesignPreferences != nil {
		c.DesignPreferences = make(map[string]string, len(i.DesignPreferences))
		for k, v := range i.DesignPreferences {
			c.DesignPreferences[k] = v
		}
	}
	if i.UploadedFiles != nil {
		c.UploadedFiles = make([]UploadedFile, len(i.UploadedFiles))
		copy(c.UploadedFiles, i.UploadedFiles)
	}
	return c
}
