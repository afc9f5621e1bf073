package dimension

import "testing"

func TestPowersetIncludesEmptySet(t *testing.T) {
	bot := NewSingle(map[string]string{"OS": "Linux"})
	sets := Powerset(bot)
	foundEmpty := false
	for _, s := range sets {
		if len(s) == 0 {
			foundEmpty = true
		}
	}
	if !foundEmpty {
		t.Fatalf("powerset must include the empty set")
	}
}

func TestPowersetExplodesListValues(t *testing.T) {
	bot := Set{
		"OS":       Value{"Windows", "Windows-3.1.1"},
		"hostname": Value{"localhost"},
	}
	sets := Powerset(bot)
	count := 0
	for _, s := range sets {
		if len(s) == 2 {
			count++
		}
	}
	// Two choices for OS, one for hostname: 2 full-size combinations.
	if count != 2 {
		t.Fatalf("expected 2 full-size exploded sets, got %d", count)
	}
}

func TestAllowSetDetectsMatchingHash(t *testing.T) {
	bot := Set{
		"OS":       Value{"Windows", "Windows-3.1.1"},
		"hostname": Value{"localhost"},
		"foo":      Value{"bar"},
	}
	req := NewSingle(map[string]string{"OS": "Windows-3.1.1", "foo": "bar"})
	allow := AllowSet(bot)
	if _, ok := allow[HashSet(req)]; !ok {
		t.Fatalf("expected request hash to be in bot's allow-set")
	}
}
