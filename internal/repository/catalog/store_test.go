package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	domcat "github.com/jewelux/gemdex/internal/domain/catalog"
)

func writeCatalog(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoad_HappyPath(t *testing.T) {
	path := writeCatalog(t,
		"path,category,description,material\n"+
			"img/0.jpg,ring,gold diamond ring,gold\n"+
			"img/1.jpg,necklace,silver chain,silver\n",
	)

	table, err := Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Size() != 2 {
		t.Fatalf("expected 2 items, got %d", table.Size())
	}
	if table.Skipped() != 0 {
		t.Errorf("expected 0 skipped, got %d", table.Skipped())
	}

	item, ok := table.Item(1)
	if !ok {
		t.Fatal("expected item 1")
	}
	if item.Category() != "necklace" {
		t.Errorf("expected necklace, got %q", item.Category())
	}
	if item.Attribute(domcat.AttrMaterial) != "silver" {
		t.Errorf("expected material silver, got %q", item.Attribute(domcat.AttrMaterial))
	}
}

func TestLoad_SkipsBadRowsAndCounts(t *testing.T) {
	path := writeCatalog(t,
		"path,category,description\n"+
			"img/0.jpg,ring,gold ring\n"+
			",necklace,missing path\n"+
			"img/2.jpg,,missing category\n"+
			"img/3.jpg,bracelet,silver bangle\n",
	)

	table, err := Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Size() != 2 {
		t.Fatalf("expected 2 items, got %d", table.Size())
	}
	if table.Skipped() != 2 {
		t.Errorf("expected 2 skipped, got %d", table.Skipped())
	}

	// Identifiers stay dense after skips — position in the loaded table.
	item, _ := table.Item(1)
	if item.Category() != "bracelet" {
		t.Errorf("expected bracelet at id 1, got %q", item.Category())
	}
}

func TestLoad_UnknownColumnFails(t *testing.T) {
	path := writeCatalog(t, "path,category,description,weight\nimg/0.jpg,ring,gold,12\n")
	if _, err := Load(path, zap.NewNop()); err == nil {
		t.Fatal("expected schema error for unknown column")
	}
}

func TestLoad_MissingRequiredColumnFails(t *testing.T) {
	path := writeCatalog(t, "path,description\nimg/0.jpg,gold ring\n")
	if _, err := Load(path, zap.NewNop()); err == nil {
		t.Fatal("expected schema error for missing category column")
	}
}

func TestLoad_EmptyCatalogFails(t *testing.T) {
	path := writeCatalog(t, "path,category,description\n")
	if _, err := Load(path, zap.NewNop()); err == nil {
		t.Fatal("expected error for catalog with no rows")
	}
}

func TestDescriptions_MatchIdentifierOrder(t *testing.T) {
	path := writeCatalog(t,
		"path,category,description\n"+
			"a.jpg,ring,first\n"+
			"b.jpg,ring,second\n",
	)
	table, err := Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	descs := table.Descriptions()
	if descs[0] != "first" || descs[1] != "second" {
		t.Errorf("descriptions out of order: %v", descs)
	}
}
