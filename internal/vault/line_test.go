package vault

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		line  string
		kind  LineKind
		title string
	}{
		{"- [ ] Design API", KindTask, "Design API"},
		{"- [ ] Design API  \r", KindTask, "Design API"},
		{"  - [ ] Write spec", KindSubtask, "Write spec"},
		{"\t* [ ] Review", KindSubtask, "Review"},
		{"- [x] Done already", KindOther, ""},
		{"* [ ] star at top level", KindOther, ""},
		{"- [ ]  ", KindBlankTask, ""},
		{"  - [ ]  ", KindOther, ""},
		{"Some free-form note", KindOther, ""},
		{"", KindOther, ""},
	}
	for _, tc := range cases {
		kind, title := Classify(tc.line)
		require.Equal(t, tc.kind, kind, "line %q", tc.line)
		require.Equal(t, tc.title, title, "line %q", tc.line)
	}
}

func TestParse_SubtasksAttachToLatestTopLevel(t *testing.T) {
	doc := strings.Join([]string{
		"  - [ ] orphan before any task",
		"# Heading",
		"- [ ] First",
		"  - [ ] First.a",
		"notes in between",
		"    * [ ] First.b",
		"- [ ] Second",
		"  - [ ] Second.a",
	}, "\n")

	var got []Event
	cont, err := Parse(strings.NewReader(doc), func(ev Event) bool {
		got = append(got, ev)
		return true
	})
	require.NoError(t, err)
	require.True(t, cont)

	require.Equal(t, []Event{
		{Kind: KindTask, Title: "First", Line: 3},
		{Kind: KindSubtask, Title: "First.a", Parent: "First", Line: 4},
		{Kind: KindSubtask, Title: "First.b", Parent: "First", Line: 6},
		{Kind: KindTask, Title: "Second", Line: 7},
		{Kind: KindSubtask, Title: "Second.a", Parent: "Second", Line: 8},
	}, got)
}

func TestParse_BlankTopLevelEndsParent(t *testing.T) {
	var got []Event
	_, err := Parse(strings.NewReader("- [ ] Alpha\n- [ ]  \n  - [ ] child\n- [ ] Beta\n  - [ ] Beta.a\n"), func(ev Event) bool {
		got = append(got, ev)
		return true
	})
	require.NoError(t, err)
	require.Equal(t, []Event{
		{Kind: KindTask, Title: "Alpha", Line: 1},
		{Kind: KindTask, Title: "Beta", Line: 4},
		{Kind: KindSubtask, Title: "Beta.a", Parent: "Beta", Line: 5},
	}, got)
}

func TestParse_StopsWhenEmitDeclines(t *testing.T) {
	n := 0
	cont, err := Parse(strings.NewReader("- [ ] a\n- [ ] b\n- [ ] c\n"), func(Event) bool {
		n++
		return n < 2
	})
	require.NoError(t, err)
	require.False(t, cont)
	require.Equal(t, 2, n)
}
