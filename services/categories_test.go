package services

import (
	"strings"
	"testing"
)

func TestParseCategoryList(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"[{'id':1,'name':'Action'}]", "Action", true},
		{"[{'id': 28, 'name': 'Action'}, {'id': 12, 'name': 'Adventure'}]", "Action|Adventure", true},
		{`[{"id": 18, "name": "Drama"}]`, "Drama", true},
		{`[{"iso_3166_1": "FR", "name": "France"}, {"iso_3166_1": "US", "name": "United States of America"}]`, "France|United States of America", true},
		{`[{'name': "Côte d'Ivoire", 'id': None}]`, "Côte d'Ivoire", true},
		{`[{'name': 'It\'s', 'extra': [1, 2.5, True, {'k': -3e2}]}]`, "It's", true},
		{`[{"name": "Émile"},]`, "Émile", true},
		{"[]", "", true},
		{"", "", false},
		{"nan", "", false},
		{"[{'id': 1, 'name': 'Action'}", "", false},
		{"[{'id': 1}]", "", false},
		{"['Action']", "", false},
		{"[{'name': 42}]", "", false},
		{"__import__('os').system('ls')", "", false},
		{"[{'name': 'A'}] trailing", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseCategoryList(tt.raw)
		if ok != tt.wantOK {
			t.Errorf("ParseCategoryList(%q) ok = %v; want %v", tt.raw, ok, tt.wantOK)
		}
		if got == nil {
			t.Errorf("ParseCategoryList(%q) returned nil, want empty slice", tt.raw)
		}
		if strings.Join(got, "|") != tt.want {
			t.Errorf("ParseCategoryList(%q) = %v; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestParseLiteralTypes(t *testing.T) {
	v, err := ParseLiteral(`{'id': 7, 'adult': False, 'video': true, 'home': None, 'tags': ['a', "b"]}`)
	if err != nil {
		t.Fatalf("ParseLiteral: %v", err)
	}
	if v.Kind != LitDict || len(v.Dict) != 5 {
		t.Fatalf("expected dict of 5 entries, got %+v", v)
	}

	checks := []struct {
		key  string
		kind LiteralKind
	}{
		{"id", LitNumber}, {"adult", LitBool}, {"video", LitBool}, {"home", LitNull}, {"tags", LitList},
	}
	for i, c := range checks {
		if v.Dict[i].Key != c.key || v.Dict[i].Value.Kind != c.kind {
			t.Errorf("entry %d: got %s/%v, want %s/%v", i, v.Dict[i].Key, v.Dict[i].Value.Kind, c.key, c.kind)
		}
	}
	if id, _ := v.Lookup("id"); id.Num != 7 {
		t.Errorf("id: got %v", id.Num)
	}
	if video, _ := v.Lookup("video"); !video.Bool {
		t.Error("video should be true")
	}
}
