package praise

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type seqPicker struct {
	picks []int
	calls int
}

func (p *seqPicker) Pick(n int) int {
	i := p.picks[p.calls%len(p.picks)]
	p.calls++
	return i % n
}

func TestCompose_PicksOneFromEachSet(t *testing.T) {
	tpl := Static{
		Start: []string{"すごい！", "やった！"},
		Count: []string{"3回目", "三回目"},
		End:   []string{"ヒヒーン", "ブルル"},
	}
	picker := &seqPicker{picks: []int{1, 0, 1}}
	got, err := NewComposer(tpl, picker).Compose()
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if got != "やった！3回目ブルル" {
		t.Fatalf("unexpected text: %q", got)
	}
	if picker.calls != 3 {
		t.Fatalf("want 3 picks, got %d", picker.calls)
	}
}

func TestCompose_EmptySetIsConfigError(t *testing.T) {
	for _, tpl := range []Static{
		{Start: nil, Count: []string{"c"}, End: []string{"e"}},
		{Start: []string{"s"}, Count: []string{}, End: []string{"e"}},
		{Start: []string{"s"}, Count: []string{"c"}},
	} {
		_, err := NewComposer(tpl, &seqPicker{picks: []int{0}}).Compose()
		if !errors.Is(err, ErrConfig) {
			t.Fatalf("want ErrConfig for %+v, got %v", tpl, err)
		}
	}
}

func TestCompose_DefaultPickerStaysInRange(t *testing.T) {
	tpl := Static{Start: []string{"a", "b"}, Count: []string{"c"}, End: []string{"d", "e", "f"}}
	c := NewComposer(tpl, nil)
	for i := 0; i < 50; i++ {
		got, err := c.Compose()
		if err != nil {
			t.Fatalf("compose: %v", err)
		}
		if len(got) != 3 || !strings.Contains(got, "c") {
			t.Fatalf("unexpected text: %q", got)
		}
	}
}

func TestFileProvider_JSON(t *testing.T) {
	p := filepath.Join(t.TempDir(), "praise.json")
	body := `{"start":["s1"],"count":["c1","c2"],"end":["e1"]}`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tpl, err := NewFileProvider(p).Templates()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tpl.Start) != 1 || len(tpl.Count) != 2 || tpl.End[0] != "e1" {
		t.Fatalf("unexpected templates: %+v", tpl)
	}
}

func TestFileProvider_YAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "praise.yaml")
	body := "start: [s1]\ncount:\n  - c1\nend:\n  - e1\n  - e2\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tpl, err := NewFileProvider(p).Templates()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tpl.End) != 2 || tpl.Count[0] != "c1" {
		t.Fatalf("unexpected templates: %+v", tpl)
	}
}

func TestFileProvider_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewFileProvider(filepath.Join(dir, "missing.json")).Templates(); !errors.Is(err, ErrConfig) {
		t.Fatalf("missing file: want ErrConfig, got %v", err)
	}
	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte("{not json"), 0o644)
	if _, err := NewFileProvider(bad).Templates(); !errors.Is(err, ErrConfig) {
		t.Fatalf("malformed file: want ErrConfig, got %v", err)
	}
}
