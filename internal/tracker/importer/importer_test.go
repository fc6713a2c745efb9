package importer

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/deadlock-tools/tracker/internal/platform/errors"
	"github.com/deadlock-tools/tracker/internal/tracker/domain"
	"github.com/deadlock-tools/tracker/internal/tracker/storage/sqlite"
)

const validItems = `item_id,name,icon_key,imbue,type,cost
10,Basic Magazine,basic_magazine,false,weapon,500
11,Titanic Magazine,titanic_magazine,false,weapon,3000
20,Extra Spirit,extra_spirit,true,spirit,500
`

const validUpgrades = `from_item,to_item
10,11
`

func quietLogger() *log.Logger {
	return log.New(discard{}, "", 0)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestParseItems(t *testing.T) {
	items, err := ParseItems(strings.NewReader(validItems))
	if err != nil {
		t.Fatalf("parse items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	if items[2].ID != 20 || !items[2].Imbue || items[2].Type != domain.ItemTypeSpirit {
		t.Fatalf("items[2] = %+v", items[2])
	}
}

func TestParseItemsErrors(t *testing.T) {
	cases := []struct {
		name string
		csv  string
		code apperrors.Code
		want string
	}{
		{
			name: "bad header",
			csv:  "id,name,icon,imbue,type,cost\n",
			code: apperrors.CodeCSVInvalidHeader,
			want: `"id"`,
		},
		{
			name: "duplicate id",
			csv: "item_id,name,icon_key,imbue,type,cost\n" +
				"10,Silencer,silencer,false,weapon,4000\n" +
				"10,Silencer,silencer_dup,false,weapon,4000\n",
			code: apperrors.CodeItemDuplicateID,
			want: "line 3: item id 10 already defined on line 2",
		},
		{
			name: "bad boolean",
			csv:  "item_id,name,icon_key,imbue,type,cost\n10,X,x,maybe,weapon,500\n",
			code: apperrors.CodeCSVInvalidBoolean,
			want: "line 2",
		},
		{
			name: "bad type",
			csv:  "item_id,name,icon_key,imbue,type,cost\n10,X,x,false,armor,500\n",
			code: apperrors.CodeItemInvalidType,
			want: "line 2",
		},
		{
			name: "negative cost",
			csv:  "item_id,name,icon_key,imbue,type,cost\n10,X,x,false,weapon,-5\n",
			code: apperrors.CodeItemNegativeCost,
			want: "line 2",
		},
		{
			name: "empty name",
			csv:  "item_id,name,icon_key,imbue,type,cost\n10,,x,false,weapon,500\n",
			code: apperrors.CodeItemEmptyName,
			want: "line 2",
		},
		{
			name: "bad id",
			csv:  "item_id,name,icon_key,imbue,type,cost\nten,X,x,false,weapon,500\n",
			code: apperrors.CodeCSVInvalidRow,
			want: "line 2",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseItems(strings.NewReader(tc.csv))
			if apperrors.CodeOf(err) != tc.code {
				t.Fatalf("code = %q (%v), want %q", apperrors.CodeOf(err), err, tc.code)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestParseUpgradesErrors(t *testing.T) {
	items, err := ParseItems(strings.NewReader(validItems))
	if err != nil {
		t.Fatalf("parse items: %v", err)
	}

	cases := []struct {
		name string
		csv  string
		code apperrors.Code
		want string
	}{
		{
			name: "unknown item",
			csv:  "from_item,to_item\n10,999\n",
			code: apperrors.CodeUpgradeUnknownItem,
			want: "line 2: item 999",
		},
		{
			name: "self edge",
			csv:  "from_item,to_item\n10,10\n",
			code: apperrors.CodeUpgradeSelfEdge,
			want: "line 2",
		},
		{
			name: "duplicate edge",
			csv:  "from_item,to_item\n10,11\n10,11\n",
			code: apperrors.CodeUpgradeDuplicate,
			want: "line 3",
		},
		{
			name: "bad header",
			csv:  "from,to\n",
			code: apperrors.CodeCSVInvalidHeader,
			want: `"from"`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseUpgrades(strings.NewReader(tc.csv), items)
			if apperrors.CodeOf(err) != tc.code {
				t.Fatalf("code = %q (%v), want %q", apperrors.CodeOf(err), err, tc.code)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func writeFixtures(t *testing.T, items, upgrades string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	itemsPath := filepath.Join(dir, "shop_items.csv")
	upgradesPath := filepath.Join(dir, "shop_items_upgrades.csv")
	if err := os.WriteFile(itemsPath, []byte(items), 0o644); err != nil {
		t.Fatalf("write items fixture: %v", err)
	}
	if err := os.WriteFile(upgradesPath, []byte(upgrades), 0o644); err != nil {
		t.Fatalf("write upgrades fixture: %v", err)
	}
	return itemsPath, upgradesPath
}

func TestRunImportsAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	itemsPath, upgradesPath := writeFixtures(t, validItems, validUpgrades)
	opts := Options{ItemsPath: itemsPath, UpgradesPath: upgradesPath}

	result, err := Run(ctx, store, opts, quietLogger())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Items != 3 || result.Upgrades != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	// Re-running converges to the same state.
	if _, err := Run(ctx, store, opts, quietLogger()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	items, err := store.ListShopItems(ctx)
	if err != nil {
		t.Fatalf("list shop items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	upgrades, err := store.ListUpgradesFrom(ctx, 10)
	if err != nil {
		t.Fatalf("list upgrades: %v", err)
	}
	if len(upgrades) != 1 || upgrades[0].ID != 11 {
		t.Fatalf("upgrades = %+v", upgrades)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	itemsPath, upgradesPath := writeFixtures(t, validItems, validUpgrades)
	result, err := Run(ctx, store, Options{ItemsPath: itemsPath, UpgradesPath: upgradesPath, DryRun: true}, quietLogger())
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !result.DryRun || result.Items != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}

	items, err := store.ListShopItems(ctx)
	if err != nil {
		t.Fatalf("list shop items: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("dry run wrote %d items", len(items))
	}
}

func TestRunRejectsBadUpgrades(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	itemsPath, upgradesPath := writeFixtures(t, validItems, "from_item,to_item\n10,404\n")
	_, err = Run(ctx, store, Options{ItemsPath: itemsPath, UpgradesPath: upgradesPath}, quietLogger())
	if apperrors.CodeOf(err) != apperrors.CodeUpgradeUnknownItem {
		t.Fatalf("expected CodeUpgradeUnknownItem, got %v", err)
	}

	// Validation failures must leave the store untouched.
	items, err := store.ListShopItems(ctx)
	if err != nil {
		t.Fatalf("list shop items: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("failed import wrote %d items", len(items))
	}
}
