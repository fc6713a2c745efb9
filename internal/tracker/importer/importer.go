// Package importer loads the hand-curated shop item tables from CSV into
// tracker storage. Every validation error names the file line it came from
// so curators can fix the sheet directly.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/deadlock-tools/tracker/internal/platform/errors"
	"github.com/deadlock-tools/tracker/internal/tracker/domain"
	"github.com/deadlock-tools/tracker/internal/tracker/storage"
)

var (
	itemsHeader    = []string{"item_id", "name", "icon_key", "imbue", "type", "cost"}
	upgradesHeader = []string{"from_item", "to_item"}
)

// Options controls one import run.
type Options struct {
	ItemsPath    string
	UpgradesPath string
	// DryRun performs every validation without writing to storage.
	DryRun bool
}

// Result summarizes one import run.
type Result struct {
	Items    int
	Upgrades int
	DryRun   bool
}

// Run parses, validates, and imports both curated CSV files. The upgrade
// edge set is validated against the items file itself, not the database, so
// a fresh store imports cleanly.
func Run(ctx context.Context, store storage.Store, opts Options, logger *log.Logger) (Result, error) {
	if logger == nil {
		logger = log.Default()
	}

	items, err := parseItemsFile(opts.ItemsPath)
	if err != nil {
		return Result{}, err
	}
	edges, err := parseUpgradesFile(opts.UpgradesPath, items)
	if err != nil {
		return Result{}, err
	}

	result := Result{Items: len(items), Upgrades: len(edges), DryRun: opts.DryRun}
	if opts.DryRun {
		logger.Printf("dry run: %d items and %d upgrade edges are valid", len(items), len(edges))
		return result, nil
	}

	if err := store.UpsertShopItems(ctx, items); err != nil {
		return result, err
	}
	if err := store.ReplaceUpgradeEdges(ctx, edges); err != nil {
		return result, err
	}
	logger.Printf("imported %d items and %d upgrade edges", len(items), len(edges))
	return result, nil
}

func parseItemsFile(path string) ([]domain.ShopItem, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open items csv: %w", err)
	}
	defer file.Close()
	return ParseItems(file)
}

func parseUpgradesFile(path string, items []domain.ShopItem) ([]domain.UpgradeEdge, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upgrades csv: %w", err)
	}
	defer file.Close()
	return ParseUpgrades(file, items)
}

// ParseItems reads and validates the curated items table. Duplicate ids are
// rejected with both line numbers so the curator can pick the canonical row.
func ParseItems(r io.Reader) ([]domain.ShopItem, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCSVInvalidHeader, "read items header", err)
	}
	if err := checkHeader(header, itemsHeader); err != nil {
		return nil, err
	}

	var items []domain.ShopItem
	seen := make(map[int64]int)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, rowError(line, "malformed row", err)
		}
		item, err := parseItemRow(record, line)
		if err != nil {
			return nil, err
		}
		if firstLine, dup := seen[item.ID]; dup {
			return nil, apperrors.WithMetadata(apperrors.CodeItemDuplicateID,
				fmt.Sprintf("line %d: item id %d already defined on line %d", line, item.ID, firstLine),
				map[string]string{"item_id": strconv.FormatInt(item.ID, 10)})
		}
		seen[item.ID] = line
		items = append(items, item)
	}
	return items, nil
}

func parseItemRow(record []string, line int) (domain.ShopItem, error) {
	if len(record) != len(itemsHeader) {
		return domain.ShopItem{}, rowError(line,
			fmt.Sprintf("expected %d columns, got %d", len(itemsHeader), len(record)), nil)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return domain.ShopItem{}, rowError(line, fmt.Sprintf("invalid item_id %q", record[0]), nil)
	}
	imbue, err := parseBool(record[3])
	if err != nil {
		return domain.ShopItem{}, apperrors.New(apperrors.CodeCSVInvalidBoolean,
			fmt.Sprintf("line %d: invalid imbue value %q", line, record[3]))
	}
	cost, err := strconv.Atoi(strings.TrimSpace(record[5]))
	if err != nil {
		return domain.ShopItem{}, rowError(line, fmt.Sprintf("invalid cost %q", record[5]), nil)
	}
	item := domain.ShopItem{
		ID:      id,
		Name:    strings.TrimSpace(record[1]),
		IconKey: strings.TrimSpace(record[2]),
		Imbue:   imbue,
		Type:    domain.ItemType(strings.TrimSpace(record[4])),
		Cost:    cost,
	}
	if err := item.Validate(); err != nil {
		return domain.ShopItem{}, fmt.Errorf("line %d: %w", line, err)
	}
	return item, nil
}

// ParseUpgrades reads and validates the curated upgrade relation against
// the item set from the same import.
func ParseUpgrades(r io.Reader, items []domain.ShopItem) ([]domain.UpgradeEdge, error) {
	known := make(map[int64]struct{}, len(items))
	for _, item := range items {
		known[item.ID] = struct{}{}
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCSVInvalidHeader, "read upgrades header", err)
	}
	if err := checkHeader(header, upgradesHeader); err != nil {
		return nil, err
	}

	var edges []domain.UpgradeEdge
	seen := make(map[domain.UpgradeEdge]int)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, rowError(line, "malformed row", err)
		}
		if len(record) != len(upgradesHeader) {
			return nil, rowError(line,
				fmt.Sprintf("expected %d columns, got %d", len(upgradesHeader), len(record)), nil)
		}
		from, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			return nil, rowError(line, fmt.Sprintf("invalid from_item %q", record[0]), nil)
		}
		to, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
		if err != nil {
			return nil, rowError(line, fmt.Sprintf("invalid to_item %q", record[1]), nil)
		}
		edge := domain.UpgradeEdge{FromItem: from, ToItem: to}
		if err := edge.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		for _, id := range []int64{from, to} {
			if _, ok := known[id]; !ok {
				return nil, apperrors.WithMetadata(apperrors.CodeUpgradeUnknownItem,
					fmt.Sprintf("line %d: item %d is not in the items table", line, id),
					map[string]string{"item_id": strconv.FormatInt(id, 10)})
			}
		}
		if firstLine, dup := seen[edge]; dup {
			return nil, apperrors.New(apperrors.CodeUpgradeDuplicate,
				fmt.Sprintf("line %d: edge %d -> %d already defined on line %d", line, from, to, firstLine))
		}
		seen[edge] = line
		edges = append(edges, edge)
	}
	return edges, nil
}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return apperrors.New(apperrors.CodeCSVInvalidHeader,
			fmt.Sprintf("header %v does not match %v", got, want))
	}
	for i := range want {
		if strings.TrimSpace(strings.ToLower(got[i])) != want[i] {
			return apperrors.New(apperrors.CodeCSVInvalidHeader,
				fmt.Sprintf("header column %d is %q, want %q", i+1, got[i], want[i]))
		}
	}
	return nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "false", "f", "no", "n", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", raw)
	}
}

func rowError(line int, message string, cause error) error {
	full := fmt.Sprintf("line %d: %s", line, message)
	if cause != nil {
		return apperrors.Wrap(apperrors.CodeCSVInvalidRow, full, cause)
	}
	return apperrors.New(apperrors.CodeCSVInvalidRow, full)
}
