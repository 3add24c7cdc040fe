package feed

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"catalogfeed/internal/models"
	"catalogfeed/internal/stores"
)

// UploadMethod tags rows with the channel that produced them.
type UploadMethod string

const (
	UploadMethodFeedAPI         UploadMethod = "feed_api"
	UploadMethodCatalogBatchAPI UploadMethod = "catalog_batch_api"
)

const (
	maxTitleLength       = 150
	maxDescriptionLength = 5000
	maxAdditionalImages  = 20
)

// RowBuilder turns a product into a feed row aligned with HeaderFields.
type RowBuilder interface {
	HeaderFields() []string
	BuildRow(p *models.Product) []string
}

var headerFields = []string{
	"id",
	"title",
	"description",
	"availability",
	"inventory",
	"condition",
	"price",
	"sale_price",
	"link",
	"image_link",
	"additional_image_link",
	"brand",
	"product_type",
	"item_group_id",
	"color",
	"size",
	"material",
	"internal_label",
}

// Builder renders products for one store. Its store and upload method are
// fixed at construction.
type Builder struct {
	store  stores.Store
	method UploadMethod
}

func NewBuilder(store stores.Store, method UploadMethod) *Builder {
	return &Builder{store: store, method: method}
}

func (b *Builder) UploadMethod() UploadMethod {
	return b.method
}

func (b *Builder) HeaderFields() []string {
	out := make([]string, len(headerFields))
	copy(out, headerFields)
	return out
}

func (b *Builder) BuildRow(p *models.Product) []string {
	parent := p.Parent
	if parent == nil {
		parent = &models.Product{}
	}

	description := cleanText(firstNonEmpty(p.Description, parent.Description))
	if description == "" {
		description = p.Title
	}

	var itemGroupID string
	if p.ParentID != nil {
		itemGroupID = *p.ParentID
	}

	row := []string{
		p.ID,
		truncate(p.Title, maxTitleLength),
		truncate(description, maxDescriptionLength),
		string(p.Availability()),
		strconv.Itoa(p.Quantity),
		firstNonEmpty(p.Condition, "new"),
		b.price(p.Price),
		b.salePrice(p),
		b.link(firstNonEmpty(p.URLKey, parent.URLKey)),
		firstNonEmpty(p.ImageURL, parent.ImageURL),
		b.additionalImages(p, parent),
		firstNonEmpty(p.Brand, parent.Brand, b.store.Name),
		firstNonEmpty(p.Category, parent.Category),
		itemGroupID,
		p.Color,
		p.Size,
		firstNonEmpty(p.Material, parent.Material),
		fmt.Sprintf("['%s']", b.method),
	}
	return row
}

func (b *Builder) price(amount float64) string {
	return fmt.Sprintf("%.2f %s", amount, b.store.Currency)
}

func (b *Builder) salePrice(p *models.Product) string {
	if p.SalePrice == nil || *p.SalePrice <= 0 || *p.SalePrice >= p.Price {
		return ""
	}
	return b.price(*p.SalePrice)
}

func (b *Builder) link(urlKey string) string {
	if urlKey == "" || b.store.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(b.store.BaseURL, "/") + "/" + strings.TrimLeft(urlKey, "/")
}

func (b *Builder) additionalImages(p, parent *models.Product) string {
	images := []string(p.AdditionalImages)
	if len(images) == 0 {
		images = parent.AdditionalImages
	}
	if len(images) > maxAdditionalImages {
		images = images[:maxAdditionalImages]
	}
	return strings.Join(images, ",")
}

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

func cleanText(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
