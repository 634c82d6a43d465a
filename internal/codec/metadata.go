// Package codec flattens a cart into the payment provider's string-keyed
// metadata and rebuilds the order from it after payment.
//
// Key layout:
//
//	customerName, socialPlatform, socialUsername, totalItems, totalAmount
//	item_<i>_serviceId, item_<i>_quantity, item_<i>_filesCount
//	item_<i>_section_<s>_{colorScheme,customColor1,customColor2,comments}
//	item_<i>_file_<f> = {"url":..,"name":..,"type":..,"sectionIndex":..}
package codec

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"unicode/utf8"

	"studio-storefront/internal/model"
	"studio-storefront/internal/storage"
)

const (
	// MaxKeys is the provider's metadata key ceiling.
	MaxKeys = 50
	// WarnKeys is the count above which Encode reports a warning.
	WarnKeys = 45
	// MaxValueLength is the provider's per-value character limit.
	MaxValueLength = 500
)

const (
	KeyCustomerName   = "customerName"
	KeySocialPlatform = "socialPlatform"
	KeySocialUsername = "socialUsername"
	KeyTotalItems     = "totalItems"
	KeyTotalAmount    = "totalAmount"
)

type Metadata map[string]string

type Customer struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	SocialPlatform string `json:"socialPlatform"`
	SocialUsername string `json:"socialUsername"`
}

type Encoded struct {
	Metadata Metadata
	Total    int64
	KeyCount int
	// DroppedFiles counts files left out by the per-section cap or because
	// their record cannot fit a metadata value.
	DroppedFiles int
	Warnings     []string
}

// Anomaly describes a metadata record Decode had to skip.
type Anomaly struct {
	Key    string
	Reason string
}

type ServiceLookup interface {
	GetByID(id string) (model.ServiceOffering, bool)
}

type Codec struct {
	services ServiceLookup
	log      *slog.Logger
}

func New(services ServiceLookup, log *slog.Logger) *Codec {
	if log == nil {
		log = slog.Default()
	}
	return &Codec{services: services, log: log}
}

// fileRecord is the packed form of one file; four fields share a single key.
type fileRecord struct {
	URL          string `json:"url"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	SectionIndex int    `json:"sectionIndex"`
}

func itemKey(i int, field string) string {
	return "item_" + strconv.Itoa(i) + "_" + field
}

func sectionKey(i, s int, field string) string {
	return itemKey(i, "section_"+strconv.Itoa(s)+"_"+field)
}

func fileKey(i, f int) string {
	return itemKey(i, "file_"+strconv.Itoa(f))
}

// MaxFilesForItem is the number of files an item may carry into metadata.
func MaxFilesForItem(quantity int) int {
	return model.FilesPerSection * quantity
}

func (c *Codec) Encode(items []model.CartLineItem, customer Customer) Encoded {
	out := Encoded{Metadata: Metadata{}}
	md := out.Metadata

	var totalQuantity int
	for _, item := range items {
		out.Total += item.Service.Price * int64(item.Quantity)
		totalQuantity += item.Quantity
	}

	md[KeyCustomerName] = c.clip(KeyCustomerName, customer.Name)
	md[KeySocialPlatform] = c.clip(KeySocialPlatform, customer.SocialPlatform)
	md[KeySocialUsername] = c.clip(KeySocialUsername, customer.SocialUsername)
	md[KeyTotalItems] = strconv.Itoa(len(items))
	md[KeyTotalAmount] = strconv.FormatInt(out.Total, 10)

	for i, item := range items {
		md[itemKey(i, "serviceId")] = item.ServiceID
		md[itemKey(i, "quantity")] = strconv.Itoa(item.Quantity)

		for s := 0; s < item.Quantity; s++ {
			for _, field := range model.SectionFields {
				key := sectionKey(i, s, field)
				md[key] = c.clip(key, item.DesignPreferences[model.PreferenceKey(field, s)])
			}
		}

		capped := min(len(item.UploadedFiles), MaxFilesForItem(item.Quantity))
		kept := 0
		for _, file := range item.UploadedFiles[:capped] {
			v, ok := packFile(file)
			if !ok {
				out.DroppedFiles++
				out.Warnings = append(out.Warnings, fmt.Sprintf("file %q left out of checkout metadata: url too long", file.Name))
				c.log.Warn("file record exceeds metadata value limit", "item", i, "url_length", utf8.RuneCountInString(file.URL))
				continue
			}
			md[fileKey(i, kept)] = v
			kept++
		}
		md[itemKey(i, "filesCount")] = strconv.Itoa(kept)

		if dropped := len(item.UploadedFiles) - capped; dropped > 0 {
			out.DroppedFiles += dropped
			c.log.Info("files beyond per-section cap left out of checkout metadata",
				"item", i, "service_id", item.ServiceID, "dropped", dropped, "kept", capped)
		}
	}

	out.KeyCount = len(md)
	if out.KeyCount > WarnKeys {
		msg := fmt.Sprintf("checkout metadata uses %d of %d keys", out.KeyCount, MaxKeys)
		out.Warnings = append(out.Warnings, msg)
		c.log.Warn("checkout metadata near key limit", "keys", out.KeyCount, "limit", MaxKeys)
	}

	return out
}

// packFile encodes one file record within MaxValueLength, shortening the
// name as needed. The url is never cut since a partial url is a dead link;
// a record whose url alone is too long does not fit.
func packFile(file model.UploadedFile) (string, bool) {
	rec := fileRecord{
		URL:          file.URL,
		Name:         file.Name,
		Type:         file.Type,
		SectionIndex: file.SectionIndex,
	}
	for {
		raw, err := json.Marshal(rec)
		if err != nil {
			return "", false
		}
		n := utf8.RuneCount(raw)
		if n <= MaxValueLength {
			return string(raw), true
		}
		name := utf8.RuneCountInString(rec.Name)
		if name == 0 {
			return "", false
		}
		rec.Name = storage.TruncateFilename(rec.Name, name-(n-MaxValueLength))
	}
}

// clip truncates free text to the provider's value limit.
func (c *Codec) clip(key, v string) string {
	if utf8.RuneCountInString(v) <= MaxValueLength {
		return v
	}
	c.log.Warn("metadata value truncated", "key", key, "length", utf8.RuneCountInString(v))
	return string([]rune(v)[:MaxValueLength])
}

// Decode rebuilds the order from metadata. Broken file records are skipped
// and reported; they never stop the rest of the order from decoding.
func (c *Codec) Decode(md Metadata) (*model.DecodedOrder, []Anomaly) {
	var anomalies []Anomaly

	totalItems, ok := parseCount(md[KeyTotalItems])
	if !ok {
		anomalies = append(anomalies, Anomaly{Key: KeyTotalItems, Reason: "missing or not a count"})
	}
	// every item needs several keys, so more items than keys is impossible
	if totalItems > MaxKeys {
		anomalies = append(anomalies, Anomaly{Key: KeyTotalItems, Reason: "above key ceiling, clamped"})
		totalItems = MaxKeys
	}
	totalAmount, _ := strconv.ParseInt(md[KeyTotalAmount], 10, 64)

	order := &model.DecodedOrder{
		CustomerName:   md[KeyCustomerName],
		SocialPlatform: md[KeySocialPlatform],
		SocialUsername: md[KeySocialUsername],
		TotalItems:     totalItems,
		TotalAmount:    totalAmount,
		Items:          make([]model.DecodedLineItem, 0, totalItems),
	}

	for i := 0; i < totalItems; i++ {
		item, itemAnomalies := c.decodeItem(md, i)
		anomalies = append(anomalies, itemAnomalies...)
		order.Items = append(order.Items, item)
	}

	for _, a := range anomalies {
		c.log.Warn("checkout metadata anomaly", "key", a.Key, "reason", a.Reason)
	}

	return order, anomalies
}

func (c *Codec) decodeItem(md Metadata, i int) (model.DecodedLineItem, []Anomaly) {
	var anomalies []Anomaly

	serviceID := md[itemKey(i, "serviceId")]
	quantity, err := strconv.Atoi(md[itemKey(i, "quantity")])
	if err != nil || quantity < model.MinQuantity {
		anomalies = append(anomalies, Anomaly{Key: itemKey(i, "quantity"), Reason: "missing or invalid, using 1"})
		quantity = model.MinQuantity
	}
	if quantity > model.MaxQuantity {
		anomalies = append(anomalies, Anomaly{Key: itemKey(i, "quantity"), Reason: "above maximum, clamped"})
		quantity = model.MaxQuantity
	}

	item := model.DecodedLineItem{
		ServiceID:   serviceID,
		ServiceName: serviceID,
		Quantity:    quantity,
		Sections:    make([]model.DecodedSection, quantity),
		Files:       []model.UploadedFile{},
	}
	if svc, ok := c.services.GetByID(serviceID); ok {
		item.ServiceName = svc.Name
	}

	for s := 0; s < quantity; s++ {
		item.Sections[s] = model.DecodedSection{
			Index:        s,
			ColorScheme:  md[sectionKey(i, s, model.PrefColorScheme)],
			CustomColor1: md[sectionKey(i, s, model.PrefCustomColor1)],
			CustomColor2: md[sectionKey(i, s, model.PrefCustomColor2)],
			Comments:     md[sectionKey(i, s, model.PrefComments)],
			Files:        []model.UploadedFile{},
		}
	}

	filesCount, ok := parseCount(md[itemKey(i, "filesCount")])
	if !ok && md[itemKey(i, "filesCount")] != "" {
		anomalies = append(anomalies, Anomaly{Key: itemKey(i, "filesCount"), Reason: "not a count"})
	}
	filesCount = min(filesCount, MaxFilesForItem(quantity))

	for f := 0; f < filesCount; f++ {
		key := fileKey(i, f)
		raw, present := md[key]
		if !present {
			anomalies = append(anomalies, Anomaly{Key: key, Reason: "missing"})
			continue
		}
		var rec fileRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			anomalies = append(anomalies, Anomaly{Key: key, Reason: "malformed file record: " + err.Error()})
			continue
		}
		if rec.URL == "" {
			anomalies = append(anomalies, Anomaly{Key: key, Reason: "file record without url"})
			continue
		}

		file := model.UploadedFile{
			URL:          rec.URL,
			Name:         rec.Name,
			Type:         rec.Type,
			SectionIndex: rec.SectionIndex,
		}
		item.Files = append(item.Files, file)
		if file.SectionIndex >= 0 && file.SectionIndex < quantity {
			item.Sections[file.SectionIndex].Files = append(item.Sections[file.SectionIndex].Files, file)
		}
	}

	return item, anomalies
}

func parseCount(v string) (int, bool) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
