package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/variant"
)

// ProductSaver runs the admin save pipeline. The product service implements it.
type ProductSaver interface {
	Save(ctx context.Context, p domain.Product) (*domain.Product, error)
}

// Option row kinds.
const (
	KindLength       = "length"
	KindLace         = "lace"
	KindDensity      = "density"
	KindDensityPrice = "density-price"
)

// CSVImporter reads product rows, each followed by option continuation rows, and saves every product through
// the same rules the admin editor uses.
//
// Columns: id,key,name,description,price,originalPrice,inStock,rating,images, then option.kind,option.value,
// option.label,option.price,option.originalPrice,option.length,option.laceSize. A row with a key starts a product;
// a row without one continues it. images is a ';' separated list.
type CSVImporter struct {
	reader *csv.Reader
	saver  ProductSaver
	logger *zap.Logger
}

func NewCSVImporter(r io.Reader, saver ProductSaver, logger *zap.Logger) *CSVImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader: csvr,
		saver:  saver,
		logger: logger,
	}
}

// Run parses CSV rows and saves products in file order. It stops at the first row or product that fails.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["key"]; !ok {
		return 0, errors.New("read headers: key column required")
	}

	var (
		current  *domain.Product
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		if key := pick(record, index, "key"); key != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			p, err := parseProduct(record, index)
			if err != nil {
				return imported, fmt.Errorf("line %d: %w", line, err)
			}
			current = p
			continue
		}

		if current == nil {
			if rowIsBlank(record) {
				continue
			}
			return imported, fmt.Errorf("line %d: option row before any product", line)
		}
		if err := applyContinuation(current, record, index); err != nil {
			return imported, fmt.Errorf("line %d (%s): %w", line, current.Key, err)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, p *domain.Product) error {
	saved, err := i.saver.Save(ctx, *p)
	if err != nil {
		return fmt.Errorf("save product %q: %w", p.Key, err)
	}
	i.logger.Info("product imported",
		zap.String("key", saved.Key),
		zap.String("product_id", saved.ID),
		zap.Int("lengths", len(saved.Lengths)),
		zap.Int("densities", len(saved.Densities)),
	)
	return nil
}

func parseProduct(record []string, index map[string]int) (*domain.Product, error) {
	p := &domain.Product{
		ID:          pick(record, index, "id"),
		Key:         pick(record, index, "key"),
		Name:        pick(record, index, "name"),
		Description: pick(record, index, "description"),
		InStock:     true,
		Images:      splitList(pick(record, index, "images")),
	}
	var err error
	if p.Price, err = parseAmount(pick(record, index, "price")); err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}
	if p.OriginalPrice, err = parseOptionalAmount(pick(record, index, "originalPrice")); err != nil {
		return nil, fmt.Errorf("originalPrice: %w", err)
	}
	if raw := pick(record, index, "inStock"); raw != "" {
		if p.InStock, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("inStock: %w", err)
		}
	}
	if raw := pick(record, index, "rating"); raw != "" {
		if p.Rating, err = strconv.ParseFloat(raw, 64); err != nil {
			return nil, fmt.Errorf("rating: %w", err)
		}
	}
	return p, nil
}

// applyContinuation adds one option, or more images, to p.
func applyContinuation(p *domain.Product, record []string, index map[string]int) error {
	p.Images = append(p.Images, splitList(pick(record, index, "images"))...)

	kind := strings.ToLower(pick(record, index, "option.kind"))
	if kind == "" {
		return nil
	}
	value := pick(record, index, "option.value")
	if value == "" {
		return fmt.Errorf("%s option without value", kind)
	}
	label := pick(record, index, "option.label")
	price, err := parseAmount(pick(record, index, "option.price"))
	if err != nil {
		return fmt.Errorf("option.price: %w", err)
	}

	switch kind {
	case KindLength:
		original, err := parseOptionalAmount(pick(record, index, "option.originalPrice"))
		if err != nil {
			return fmt.Errorf("option.originalPrice: %w", err)
		}
		value = variant.NormalizeLengthValue(value)
		if label == "" {
			label = value + " inches"
		}
		p.Lengths = append(p.Lengths, domain.LengthOption{
			ID:            variant.MakeLengthID(value),
			Value:         value,
			Label:         label,
			Price:         price,
			OriginalPrice: original,
			LaceSize:      pick(record, index, "option.laceSize"),
		})
	case KindLace:
		if label == "" {
			label = value
		}
		p.LaceSizes = append(p.LaceSizes, domain.LaceSizeOption{Value: value, Label: label, PriceMultiplier: price})
	case KindDensity:
		if label == "" {
			label = value
		}
		p.Densities = append(p.Densities, domain.DensityOption{Value: value, Label: label, AdditionalPrice: price})
	case KindDensityPrice:
		length := variant.NormalizeLengthValue(pick(record, index, "option.length"))
		if length == "" {
			return errors.New("density-price option without length")
		}
		di := variant.FindDensity(p.Densities, value)
		if di < 0 {
			return fmt.Errorf("density-price for unknown density %q", value)
		}
		d := &p.Densities[di]
		d.Prices = append(d.Prices, domain.DensityPrice{
			LengthID:    variant.MakeLengthID(length),
			LengthValue: length,
			Price:       price,
		})
	default:
		return fmt.Errorf("unknown option kind %q", kind)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func rowIsBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseAmount(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func parseOptionalAmount(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
