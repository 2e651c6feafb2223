package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wolfman30/htx-dental-leads/pkg/logging"
)

const twoProviders = `{"providers":[
 {"slug":"a","name":"Dr. A","practice":"A Dental","phone":"+17135550001","tracking_phone":"+13465550001","rating":4.9,"procedures":["All-on-4"],"service_areas":["katy"],"featured":true},
 {"slug":"b","name":"Dr. B","practice":"B Dental","phone":"+17135550002","rating":4.5,"procedures":["Single Tooth Implants"],"service_areas":["pearland"]}
]}`

const threeProviders = `{"providers":[
 {"slug":"a","name":"Dr. A","rating":4.9},
 {"slug":"b","name":"Dr. B","rating":4.5},
 {"slug":"c","name":"Dr. C","rating":4.1}
]}`

func writeCatalog(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
}

func TestProviderHelpers(t *testing.T) {
	p := Provider{Phone: "+1", TrackingPhone: "+2", Procedures: []string{"All-on-4 Dental Implants"}, ServiceAreas: []string{"Katy"}}
	if p.ContactPhone() != "+2" {
		t.Errorf("expected tracking phone")
	}
	p.TrackingPhone = " "
	if p.ContactPhone() != "+1" {
		t.Errorf("expected practice phone when tracking is blank")
	}
	if !p.OffersTerm("ALL") || p.OffersTerm("bone") || p.OffersTerm("") {
		t.Errorf("unexpected OffersTerm results")
	}
	if !p.Serves("katy") || p.Serves("pearland") {
		t.Errorf("unexpected Serves results")
	}
	if got := Summaries(nil); got == nil || len(got) != 0 {
		t.Errorf("summaries of nothing must be an empty slice")
	}
}

func TestStaticCatalogReturnsCopies(t *testing.T) {
	c := NewStatic([]Provider{{Slug: "a", Rating: 4}})
	ps, err := c.Providers(context.Background())
	if err != nil {
		t.Fatalf("providers: %v", err)
	}
	ps[0].Rating = 1
	again, _ := c.Providers(context.Background())
	if again[0].Rating != 4 {
		t.Fatal("catalog must not be mutated through returned slices")
	}
	if _, err := NewStatic(nil).Providers(context.Background()); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestFileCatalogLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.json")
	writeCatalog(t, path, twoProviders)

	c, err := NewFileCatalog(path, logging.Discard())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	defer c.Close()

	ps, err := c.Providers(context.Background())
	if err != nil || len(ps) != 2 {
		t.Fatalf("expected 2 providers, got %d (%v)", len(ps), err)
	}
	if ps[0].Summary().Phone != "+13465550001" {
		t.Errorf("summary should use tracking phone, got %s", ps[0].Summary().Phone)
	}
}

func TestFileCatalogRejectsBadInitialFile(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"missing":   "",
		"garbage":   "{nope",
		"empty":     `{"providers":[]}`,
		"duplicate": `{"providers":[{"slug":"a"},{"slug":"a"}]}`,
		"no-slug":   `{"providers":[{"name":"x"}]}`,
	}
	for name, body := range cases {
		path := filepath.Join(dir, name+".json")
		if body != "" {
			writeCatalog(t, path, body)
		}
		if _, err := NewFileCatalog(path, logging.Discard()); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestFileCatalogReloadsAfterChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.json")
	writeCatalog(t, path, twoProviders)

	c, err := NewFileCatalog(path, logging.Discard())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Watch(ctx)

	writeCatalog(t, path, threeProviders)

	deadline := time.Now().Add(5 * time.Second)
	for {
		ps, err := c.Providers(context.Background())
		if err != nil {
			t.Fatalf("providers: %v", err)
		}
		if len(ps) == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("catalog change not observed, still %d providers", len(ps))
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestFileCatalogKeepsSnapshotOnBadReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.json")
	writeCatalog(t, path, twoProviders)

	c, err := NewFileCatalog(path, logging.Discard())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	defer c.Close()

	writeCatalog(t, path, "{broken")
	c.dirty.Store(true)

	ps, err := c.Providers(context.Background())
	if err != nil || len(ps) != 2 {
		t.Fatalf("expected previous snapshot, got %d (%v)", len(ps), err)
	}
}

func TestBundledCatalogIsValid(t *testing.T) {
	c, err := NewFileCatalog(filepath.Join("..", "..", "data", "providers.json"), logging.Discard())
	if err != nil {
		t.Fatalf("bundled catalog: %v", err)
	}
	defer c.Close()
	ps, _ := c.Providers(context.Background())
	if len(ps) < 3 {
		t.Fatalf("expected at least 3 bundled providers, got %d", len(ps))
	}
}
