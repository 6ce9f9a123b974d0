package greyfilter

import (
	"testing"
)

func TestNewFingerprint(t *testing.T) {
	var tests = []struct {
		sender    string
		recipient string
		expect    Fingerprint
	}{
		{
			sender:    "sender@example.com",
			recipient: "recipient@example.com",
			expect:    "8pEP2H2RlNT9c8kmLDeYC4cbCZxyfQbX7cpRhskDpgM",
		},
		{
			sender:    "",
			recipient: "",
			expect:    "AbpHGcgLb-kRsJGnwFEktk7uzpZOCcBY74-YBdrKVGs",
		},
	}

	for _, v := range tests {
		got := NewFingerprint([]byte(v.sender), []byte(v.recipient))
		if got != v.expect {
			t.Errorf("expected %s, got %s", v.expect, got)
		}
		if len(got) != 43 {
			t.Errorf("expected 43 characters, got %d", len(got))
		}
	}
}

func TestNewFingerprintIsDeterministic(t *testing.T) {
	a := NewFingerprint([]byte("alice@example.local"), []byte("bob@example.test"))
	b := NewFingerprint([]byte("alice@example.local"), []byte("bob@example.test"))
	if a != b {
		t.Errorf("expected %s, got %s", a, b)
	}
}

func TestNewFingerprintSeparatesFields(t *testing.T) {
	var tests = []struct {
		a [2]string
		b [2]string
	}{
		{a: [2]string{"ab", "c"}, b: [2]string{"a", "bc"}},
		{a: [2]string{"Alice@example.local", "bob@example.test"}, b: [2]string{"alice@example.local", "bob@example.test"}},
		{a: [2]string{"alice@example.local", "bob@example.test"}, b: [2]string{"bob@example.test", "alice@example.local"}},
		{a: [2]string{"alice@example.local", "bob@example.test"}, b: [2]string{"alice@example.local", "bob@example.test "}},
	}

	for _, v := range tests {
		fa := NewFingerprint([]byte(v.a[0]), []byte(v.a[1]))
		fb := NewFingerprint([]byte(v.b[0]), []byte(v.b[1]))
		if fa == fb {
			t.Errorf("expected %q and %q to differ, both got %s", v.a, v.b, fa)
		}
	}
}

func TestFingerprintKeys(t *testing.T) {
	f := Fingerprint("8pEP2H2RlNT9c8kmLDeYC4cbCZxyfQbX7cpRhskDpgM")
	got := f.Keys()

	expect := "opensmtpd-filter-qdgrey{8pEP2H2RlNT9c8kmLDeYC4cbCZxyfQbX7cpRhskDpgM}grey"
	if got.Grey != expect {
		t.Errorf("expected %s, got %s", expect, got.Grey)
	}

	expect = "opensmtpd-filter-qdgrey{8pEP2H2RlNT9c8kmLDeYC4cbCZxyfQbX7cpRhskDpgM}white"
	if got.White != expect {
		t.Errorf("expected %s, got %s", expect, got.White)
	}
}
