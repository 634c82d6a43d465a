package cart

import (
	"fmt"
	"strings"
	"time"

	"studio-storefront/internal/catalog"
	"studio-storefront/internal/model"

	"github.com/google/uuid"
)

// Cart is an immutable value: every function in this file returns a new
// Cart and leaves its input untouched.
type Cart struct {
	Items []model.CartLineItem `json:"items"`
}

// Total is the sum of price*quantity over all items, in minor units.
func (c Cart) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Service.Price * int64(item.Quantity)
	}
	return total
}

func (c Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) Find(itemID string) (model.CartLineItem, bool) {
	for _, item := range c.Items {
		if item.ID == itemID {
			return item.Clone(), true
		}
	}
	return model.CartLineItem{}, false
}

func (c Cart) clone() Cart {
	if c.Items == nil {
		return Cart{}
	}
	items := make([]model.CartLineItem, len(c.Items))
	for i, item := range c.Items {
		items[i] = item.Clone()
	}
	return Cart{Items: items}
}

// AddItem merges into the existing line for service.ID when there is one,
// otherwise appends a new line.
func AddItem(c Cart, service model.ServiceOffering, quantity int, now time.Time) (Cart, error) {
	if !catalog.Validate(service) {
		return c, ErrInvalidService
	}
	if quantity < model.MinQuantity {
		return c, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}

	next := c.clone()
	for i, item := range next.Items {
		if item.ServiceID != service.ID {
			continue
		}
		merged := item.Quantity + quantity
		if merged > model.MaxQuantity {
			return c, fmt.Errorf("%w: %s would reach %d", ErrQuantityLimit, service.ID, merged)
		}
		next.Items[i].Quantity = merged
		return next, nil
	}

	if quantity > model.MaxQuantity {
		return c, fmt.Errorf("%w: %s would reach %d", ErrQuantityLimit, service.ID, quantity)
	}
	next.Items = append(next.Items, newLineItem(service, quantity, now))
	return next, nil
}

func UpdateQuantity(c Cart, itemID string, quantity int) (Cart, error) {
	if quantity < model.MinQuantity || quantity > model.MaxQuantity {
		return c, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}

	return mapItem(c, itemID, func(item *model.CartLineItem) {
		item.Quantity = quantity
	}), nil
}

func RemoveItem(c Cart, itemID string) Cart {
	next := c.clone()
	if next.Items == nil {
		return next
	}
	kept := next.Items[:0]
	for _, item := range next.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	next.Items = kept
	return next
}

// SetPreferences shallow-merges partial into the item's preferences.
func SetPreferences(c Cart, itemID string, partial map[string]string) Cart {
	return mapItem(c, itemID, func(item *model.CartLineItem) {
		if item.DesignPreferences == nil {
			item.DesignPreferences = make(map[string]string, len(partial))
		}
		for k, v := range partial {
			item.DesignPreferences[k] = v
		}
	})
}

// SetFiles replaces the item's whole file list. Callers that touch one
// section must carry the other sections' files over themselves.
func SetFiles(c Cart, itemID string, files []model.UploadedFile) Cart {
	return mapItem(c, itemID, func(item *model.CartLineItem) {
		item.UploadedFiles = append([]model.UploadedFile(nil), files...)
	})
}

// AddSectionFiles appends files to one section of an item, keeping every
// other section's files in place.
func AddSectionFiles(c Cart, itemID string, section int, files []model.UploadedFile) (Cart, error) {
	item, ok := c.Find(itemID)
	if !ok {
		return c, ErrItemNotFound
	}
	if section < 0 || section >= item.Quantity {
		return c, fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidSection, section, item.Quantity)
	}

	current := len(item.SectionFiles(section))
	if current+len(files) > model.FilesPerSection {
		return c, fmt.Errorf("%w: section has %d files, adding %d", ErrFileLimit, current, len(files))
	}

	combined := append([]model.UploadedFile(nil), item.UploadedFiles...)
	for _, f := range files {
		f.SectionIndex = section
		combined = append(combined, f)
	}
	return SetFiles(c, itemID, combined), nil
}

// RemoveSectionFile drops the fileIndex-th file of a section. An index out
// of range leaves the cart unchanged.
func RemoveSectionFile(c Cart, itemID string, section, fileIndex int) (Cart, error) {
	item, ok := c.Find(itemID)
	if !ok {
		return c, ErrItemNotFound
	}

	kept := make([]model.UploadedFile, 0, len(item.UploadedFiles))
	seen := 0
	for _, f := range item.UploadedFiles {
		if f.SectionIndex == section {
			seen++
			if seen-1 == fileIndex {
				continue
			}
		}
		kept = append(kept, f)
	}
	if len(kept) == len(item.UploadedFiles) {
		return c, nil
	}
	return SetFiles(c, itemID, kept), nil
}

func mapItem(c Cart, itemID string, fn func(item *model.CartLineItem)) Cart {
	next := c.clone()
	for i := range next.Items {
		if next.Items[i].ID == itemID {
			fn(&next.Items[i])
		}
	}
	return next
}

func newLineItem(service model.ServiceOffering, quantity int, now time.Time) model.CartLineItem {
	return model.CartLineItem{
		ID:                newItemID(service.ID, now),
		ServiceID:         service.ID,
		Service:           service,
		Quantity:          quantity,
		DesignPreferences: map[string]string{},
		UploadedFiles:     []model.UploadedFile{},
		AddedAt:           now.UTC(),
	}
}

func newItemID(serviceID string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s_%d_%s", serviceID, now.UnixMilli(), suffix)
}
