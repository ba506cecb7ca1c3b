package catalog

import "testing"

func TestLookupCanonicalAndAlias(t *testing.T) {
	cat := Default()

	entry, canonical, seenAs, ok := cat.Lookup("atan")
	if !ok || canonical != "atan" || seenAs != "" {
		t.Fatalf("Lookup(atan) = %v, %q, %q, %v", entry, canonical, seenAs, ok)
	}

	entry, canonical, seenAs, ok = cat.Lookup("ArcTan")
	if !ok {
		t.Fatal("Lookup(ArcTan) failed, want alias hit")
	}
	if canonical != "atan" {
		t.Errorf("got canonical %q, want atan", canonical)
	}
	if seenAs != "ArcTan" {
		t.Errorf("got seenAs %q, want ArcTan", seenAs)
	}
	if entry.Token != "atan" {
		t.Errorf("entry.Token = %q, want atan", entry.Token)
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, _, _, ok := Default().Lookup("not_a_real_function"); ok {
		t.Fatal("Lookup of a nonexistent name reported a hit")
	}
}

func TestIsReservedCoversAliases(t *testing.T) {
	cat := Default()
	if !cat.IsReserved("atan") {
		t.Error("atan should be reserved")
	}
	if !cat.IsReserved("ArcTan") {
		t.Error("the ArcTan alias should be reserved too")
	}
	if cat.IsReserved("my_variable") {
		t.Error("an ordinary identifier should not be reserved")
	}
}

func TestEntriesAreSortedByToken(t *testing.T) {
	entries := Default().Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Token > entries[i].Token {
			t.Fatalf("Entries() not sorted: %q before %q", entries[i-1].Token, entries[i].Token)
		}
	}
}
