package bench

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	ccerrors "github.com/wippyai/chaincall/errors"
)

func TestPolicyRoundTrip(t *testing.T) {
	for _, name := range Policies() {
		p, err := ParsePolicy(name)
		if err != nil {
			t.Fatalf("ParsePolicy(%q): %v", name, err)
		}
		if p.String() != name {
			t.Errorf("round trip: %q -> %v -> %q", name, p, p.String())
		}
	}
	if _, err := ParsePolicy("chain-spec"); !ccerrors.IsKind(err, ccerrors.KindInvalidInput) {
		t.Fatalf("expected invalid_input, got %v", err)
	}
}

func testListing() Listing {
	return Listing{
		"pallet_timestamp": {"on_finalize", "set"},
		"pallet_sudo":      {"remove_key", "set_key", "sudo", "sudo_as"},
		"pallet_balances":  {"transfer_allow_death", "force_transfer"},
	}
}

func TestSearchPallets(t *testing.T) {
	listing := testListing()

	empty := SearchPallets(listing, "", 2)
	if len(empty) != 2 {
		t.Errorf("empty input should apply limit: %v", empty)
	}
	if empty[0] != "pallet_balances" { // sorted order
		t.Errorf("empty input order: %v", empty)
	}

	got := SearchPallets(listing, "timestamp", 5)
	if len(got) == 0 || got[0] != "pallet_timestamp" {
		t.Errorf("timestamp search: %v", got)
	}

	// Comma-separated queries are unioned and deduplicated.
	got = SearchPallets(listing, "sudo,sudo", 5)
	count := 0
	for _, name := range got {
		if name == "pallet_sudo" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("dedup failed: %v", got)
	}
}

func TestSearchExtrinsics(t *testing.T) {
	listing := testListing()

	got := SearchExtrinsics(listing, []string{"pallet_sudo"}, "set_key", 5)
	if len(got) == 0 || got[0] != "set_key" {
		t.Errorf("set_key search: %v", got)
	}

	// Extrinsics of unselected pallets never appear.
	got = SearchExtrinsics(listing, []string{"pallet_timestamp"}, "", 10)
	for _, name := range got {
		if name == "sudo" || name == "force_transfer" {
			t.Errorf("leaked extrinsic %q from unselected pallet", name)
		}
	}
}

func TestCollectArguments(t *testing.T) {
	cfg := &Config{
		Runtime:        "runtime.wasm",
		Pallet:         "pallet_timestamp",
		Extrinsic:      "set",
		GenesisBuilder: PolicyRuntime,
		NoVerify:       true,
	}
	cfg.Normalize()
	args := strings.Join(cfg.CollectArguments(), " ")

	for _, want := range []string{
		"v1 benchmark pallet",
		"--runtime=runtime.wasm",
		"--pallet=pallet_timestamp",
		"--extrinsic=set",
		"--steps=50",
		"--repeat=20",
		"--genesis-builder=runtime",
		"--genesis-builder-preset=development",
		"--no-verify",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("arguments missing %q: %s", want, args)
		}
	}

	// The preset flag only applies to the runtime policy.
	cfg.GenesisBuilder = PolicyNone
	args = strings.Join(cfg.CollectArguments(), " ")
	if strings.Contains(args, "--genesis-builder-preset") {
		t.Errorf("preset flag leaked for policy none: %s", args)
	}
}

func TestParseListing(t *testing.T) {
	csvData := `pallet, benchmark
pallet_timestamp, on_finalize
pallet_timestamp, set
pallet_sudo, sudo
a single-field row that should be skipped
`
	listing, err := parseListing(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("parseListing: %v", err)
	}
	ts := listing["pallet_timestamp"]
	if len(ts) != 2 || ts[0] != "on_finalize" || ts[1] != "set" {
		t.Errorf("pallet_timestamp: %v", ts)
	}
	if len(listing["pallet_sudo"]) != 1 {
		t.Errorf("pallet_sudo: %v", listing["pallet_sudo"])
	}
	if _, ok := listing["pallet"]; ok {
		t.Error("header row leaked into listing")
	}
}

// fakeBencher writes a script that prints a fixed CSV listing.
func fakeBencher(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("script fixture requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "frame-omni-bencher")
	script := `#!/bin/sh
echo "pallet, benchmark"
echo "pallet_timestamp, on_finalize"
echo "pallet_timestamp, set"
`
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestListPalletExtrinsics(t *testing.T) {
	r := &Runner{BinaryPath: fakeBencher(t), Stderr: &bytes.Buffer{}}
	listing, err := r.ListPalletExtrinsics(context.Background(), "runtime.wasm")
	if err != nil {
		t.Fatalf("ListPalletExtrinsics: %v", err)
	}
	ts := listing["pallet_timestamp"]
	if len(ts) != 2 || ts[0] != "on_finalize" || ts[1] != "set" {
		t.Errorf("listing: %v", listing)
	}
}

func TestRun_MissingBinary(t *testing.T) {
	r := &Runner{
		BinaryPath: filepath.Join(t.TempDir(), "does-not-exist"),
		Stdout:     &bytes.Buffer{},
		Stderr:     &bytes.Buffer{},
	}
	err := r.Run(context.Background(), &Config{Runtime: "runtime.wasm"})
	if !ccerrors.IsKind(err, ccerrors.KindInvalidData) {
		t.Fatalf("expected invalid_data, got %v", err)
	}
}

func TestCache(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, ok, err := cache.Get("absent"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	listing := testListing()
	if err := cache.Put("key1", listing); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := cache.Get("key1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(got["pallet_sudo"]) != 4 {
		t.Errorf("cached listing: %v", got)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok, _ := cache.Get("key1"); ok {
		t.Error("entry survived DropAll")
	}
}

func TestCache_SchemaMismatchIsMiss(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := cache.Put("key1", testListing()); err != nil {
		t.Fatal(err)
	}

	// Corrupt the schema by rewriting the file with a bumped version.
	other := &Cache{dir: dir}
	path := other.pathFor("key1")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// msgpack encodes struct field Schema=1 deterministically; flip the byte.
	found := false
	for i := range data {
		if data[i] == 0x01 {
			data[i] = 0x63
			found = true
			break
		}
	}
	if !found {
		t.Skip("schema byte not found in payload encoding")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := cache.Get("key1"); err != nil || ok {
		t.Fatalf("schema mismatch should read as miss: ok=%v err=%v", ok, err)
	}
}

func TestHashRuntime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime.wasm")
	if err := os.WriteFile(path, []byte("wasm bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	key1, err := HashRuntime(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(key1) != 64 {
		t.Errorf("key length = %d", len(key1))
	}
	if err := os.WriteFile(path, []byte("different bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	key2, err := HashRuntime(path)
	if err != nil {
		t.Fatal(err)
	}
	if key1 == key2 {
		t.Error("content change did not change the key")
	}
	if _, err := HashRuntime(filepath.Join(t.TempDir(), "missing")); !ccerrors.IsKind(err, ccerrors.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}
