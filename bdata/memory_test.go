package bdata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"git.thinkinpower.net/cardbin/mod"
)

const testBinData = binDataHeader + `
1,4,,VISA,Visa,,,,,,,,
2,552266,552266,MASTERCARD,Debit Mastercard,debit,N,AU,Bank of Melbourne,AUD,World,,PAN
3,552266,,EFTPOS,eftpos Savings,debit,N,AU,Bank of Melbourne,AUD,,AU,PAN
4,40117800,40117801,VISA,Visa Classic,credit,N,BR,Banco do Brasil,BRL,,,
`

func writeBinData(t *testing.T, dir, name, content string) string {
	t.Helper()
	fp := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fp, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return fp
}

func useMemory(t *testing.T, cfg BinDataConfig) {
	t.Helper()
	if err := SetBinDatabaseMode(BinDatabaseModeMemory, cfg); err != nil {
		t.Fatalf("SetBinDatabaseMode: %v", err)
	}
	t.Cleanup(func() { Close() })
}

func networksOf(lookup *mod.BinLookup) string {
	values := make([]string, 0, len(lookup.Networks))
	for _, n := range lookup.Networks {
		values = append(values, n.Value)
	}
	return strings.Join(values, ",")
}

func TestMemoryQuery(t *testing.T) {
	dir := t.TempDir()
	writeBinData(t, dir, "base.bd", testBinData)
	writeBinData(t, dir, "ignored.txt", "1,6,,DISCOVER,,,,,,,,,\n")
	useMemory(t, BinDataConfig{DataDir: dir})

	tests := []struct {
		bin         string
		firstDigits string
		networks    string
	}{
		{"552266", "552266", "MASTERCARD,EFTPOS"},
		{"5522661234567890", "55226612", "MASTERCARD,EFTPOS"},
		{"40117801", "40117801", "VISA"},
		{"411111", "411111", "VISA"},
	}
	for _, tt := range tests {
		lookup, err := Query(tt.bin)
		if err != nil {
			t.Fatalf("Query(%s): %v", tt.bin, err)
		}
		if lookup.FirstDigits != tt.firstDigits {
			t.Errorf("Query(%s) first digits %s, want %s", tt.bin, lookup.FirstDigits, tt.firstDigits)
		}
		if got := networksOf(lookup); got != tt.networks {
			t.Errorf("Query(%s) networks %s, want %s", tt.bin, got, tt.networks)
		}
	}

	lookup, _ := Query("552266")
	eftpos := lookup.Networks[1]
	if eftpos.IssuerName != "Bank of Melbourne" || eftpos.AccountFundingType != "debit" || eftpos.RegionalRestriction != "AU" {
		t.Fatalf("unexpected eftpos record %+v", eftpos)
	}
}

func TestMemoryQueryErrors(t *testing.T) {
	useMemory(t, BinDataConfig{DataDir: t.TempDir()})

	if _, err := Query("601100"); errors.Cause(err) != ErrNotFound {
		t.Fatalf("Query unknown bin err = %v, want ErrNotFound", err)
	}
	for _, bin := range []string{"", "55x266"} {
		if _, err := Query(bin); errors.Cause(err) != ErrInvalidBin {
			t.Fatalf("Query(%q) err = %v, want ErrInvalidBin", bin, err)
		}
	}
}

func TestQueryWithoutDatabase(t *testing.T) {
	Close()
	if _, err := Query("552266"); errors.Cause(err) != ErrNotAvailable {
		t.Fatalf("err = %v, want ErrNotAvailable", err)
	}
}

func TestCreateBinDataPersists(t *testing.T) {
	dir := t.TempDir()
	useMemory(t, BinDataConfig{DataDir: dir})

	record := mod.BinRecord{BaseBinData: mod.BaseBinData{Schema: "DISCOVER", CardType: "credit", BankName: "Discover Bank"}}
	if err := CreateBinData("601100", record); err != nil {
		t.Fatalf("CreateBinData: %v", err)
	}
	//same network again is ignored
	if err := CreateBinData("601100", record); err != nil {
		t.Fatalf("CreateBinData: %v", err)
	}
	lookup, err := Query("60110012")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if networksOf(lookup) != "DISCOVER" || lookup.Networks[0].IssuerName != "Discover Bank" {
		t.Fatalf("unexpected lookup %+v", lookup)
	}

	fp := filepath.Join(dir, time.Now().Format("20060102"), binDataFileName)
	content, err := os.ReadFile(fp)
	if err != nil {
		t.Fatalf("read data file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 || lines[0] != binDataHeader || !strings.Contains(lines[1], ",601100,601100,DISCOVER,") {
		t.Fatalf("unexpected data file:\n%s", content)
	}

	//a fresh database loads what was written
	Close()
	useMemory(t, BinDataConfig{DataDir: dir})
	if _, err = Query("601100"); err != nil {
		t.Fatalf("Query after reload: %v", err)
	}
}

func TestCreateBinDataInvalid(t *testing.T) {
	useMemory(t, BinDataConfig{})
	if err := CreateBinData("abc", mod.BinRecord{}); errors.Cause(err) != ErrInvalidBin {
		t.Fatalf("err = %v, want ErrInvalidBin", err)
	}
}

func TestCreateBinDataRejectsFullCardNumber(t *testing.T) {
	dir := t.TempDir()
	useMemory(t, BinDataConfig{DataDir: dir, MaxBinLength: 8})

	visa := mod.BinRecord{BaseBinData: mod.BaseBinData{Schema: "VISA"}}
	if err := CreateBinData("4000123456789010", visa); errors.Cause(err) != ErrInvalidBin {
		t.Fatalf("err = %v, want ErrInvalidBin", err)
	}
	if _, err := Query("4000123456789010"); errors.Cause(err) != ErrNotFound {
		t.Fatalf("Query err = %v, want ErrNotFound", err)
	}
	if _, err := os.Stat(filepath.Join(dir, time.Now().Format("20060102"))); !os.IsNotExist(err) {
		t.Fatalf("card number written to data dir, stat err %v", err)
	}

	//a BIN within the limit is stored and served
	if err := CreateBinData("40001234", visa); err != nil {
		t.Fatalf("CreateBinData: %v", err)
	}
	if lookup, err := Query("4000123456789010"); err != nil || networksOf(lookup) != "VISA" {
		t.Fatalf("lookup %+v, err %v", lookup, err)
	}
}

func TestMemoryWatchReloads(t *testing.T) {
	dir := t.TempDir()
	fp := writeBinData(t, dir, "base.bd", testBinData)
	useMemory(t, BinDataConfig{DataDir: dir, Watch: true})

	f, err := os.OpenFile(fp, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = f.WriteString("5,3530,3580,JCB,,,,,,,,,\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()
	writeBinData(t, dir, "extra.bd", "6,2200,2204,MIR,,,,,,,,,\n")

	deadline := time.Now().Add(3 * time.Second)
	for {
		_, jcbErr := Query("353012")
		_, mirErr := Query("220312")
		if jcbErr == nil && mirErr == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("watched files not reloaded: jcb %v, mir %v", jcbErr, mirErr)
		}
		time.Sleep(20 * time.Millisecond)
	}
	//existing data is not duplicated by the reload
	lookup, err := Query("552266")
	if err != nil || len(lookup.Networks) != 2 {
		t.Fatalf("lookup after reload %+v, err %v", lookup, err)
	}
}
