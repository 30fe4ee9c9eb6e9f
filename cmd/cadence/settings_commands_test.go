package main

import (
	"testing"
)

func TestSettingsShowAndSet(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "settings", "set", "storefront=GB", "limit-max=300", "embed-lrc=false")
	if err != nil {
		t.Fatalf("settings set: %v", err)
	}
	requireContains(t, out, "Updated 3 setting(s)")

	out, _, err = env.run(t, "settings", "show")
	if err != nil {
		t.Fatalf("settings show: %v", err)
	}
	requireContains(t, out, "storefront")
	requireContains(t, out, "GB")
	requireContains(t, out, "300")
}

func TestParseAssignments(t *testing.T) {
	changes, err := parseAssignments([]string{"a=1", "b=true", "c=hello world", "d=", "e=[1, 2]"})
	if err != nil {
		t.Fatalf("parseAssignments: %v", err)
	}
	if v, ok := changes["a"].(int64); !ok || v != 1 {
		t.Fatalf("a = %#v", changes["a"])
	}
	if changes["b"] != true {
		t.Fatalf("b = %#v", changes["b"])
	}
	if changes["c"] != "hello world" {
		t.Fatalf("c = %#v", changes["c"])
	}
	if changes["d"] != "" {
		t.Fatalf("d = %#v", changes["d"])
	}
	if changes["e"] != "[1, 2]" {
		t.Fatalf("e = %#v", changes["e"])
	}

	for _, bad := range []string{"novalue", "=x"} {
		if _, err := parseAssignments([]string{bad}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
