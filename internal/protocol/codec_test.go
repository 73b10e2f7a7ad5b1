package protocol

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

type decoded struct {
	Label   Label
	Content string
}

func decode(msg string) decoded {
	l, c := Decode(msg)
	return decoded{Label: l, Content: c}
}

func TestEncode(t *testing.T) {
	assert.Equal(t, "run-command: show dbs", Encode(LabelRunCommand, "show dbs"))
	assert.Equal(t, "final-answer: done", Encode(LabelFinalAnswer, "done"))
	assert.Equal(t, "command-output: admin 0.000GB", Encode(LabelCommandOutput, "admin 0.000GB"))
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	contents := []string{
		"show dbs",
		"db.inventory.find({ price: { $lt: 50 } })",
		"Found 5 items under 50 in 'inventory'.",
		"multi\nline\ncontent",
		"a: b: c",
	}
	for _, label := range []Label{LabelRunCommand, LabelFinalAnswer} {
		for _, content := range contents {
			got := decode(Encode(label, content))
			want := decoded{Label: label, Content: content}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		}
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want decoded
	}{
		{
			name: "preamble is discarded",
			in:   "some preamble text run-command: db.x.find()",
			want: decoded{LabelRunCommand, "db.x.find()"},
		},
		{
			name: "timestamp prefix",
			in:   "2024-05-01 12:00:00 final-answer: There are 3 databases.",
			want: decoded{LabelFinalAnswer, "There are 3 databases."},
		},
		{
			name: "case insensitive label",
			in:   "Run-Command: show collections",
			want: decoded{LabelRunCommand, "show collections"},
		},
		{
			name: "space before colon",
			in:   "final-answer : ok",
			want: decoded{LabelFinalAnswer, "ok"},
		},
		{
			name: "fenced content",
			in:   "run-command: ```javascript\ndb.users.find()\n```",
			want: decoded{LabelRunCommand, "db.users.find()"},
		},
		{
			name: "fence around the whole turn",
			in:   "```\nrun-command: db.users.countDocuments()\n```",
			want: decoded{LabelRunCommand, "db.users.countDocuments()"},
		},
		{
			name: "second label truncates content",
			in:   "run-command: use shop\ncommand-output: switched\nrun-command: db.items.find()",
			want: decoded{LabelRunCommand, "use shop\ncommand-output: switched"},
		},
		{
			name: "final answer before command keeps only the answer",
			in:   "final-answer: Are you sure? run-command: db.logs.drop()",
			want: decoded{LabelFinalAnswer, "Are you sure?"},
		},
		{
			name: "empty content",
			in:   "final-answer:",
			want: decoded{LabelFinalAnswer, ""},
		},
		{
			name: "no label returns original message",
			in:   "  I am not sure what you mean.  ",
			want: decoded{LabelNone, "  I am not sure what you mean.  "},
		},
		{
			name: "feedback labels are not model labels",
			in:   "command-output: 5",
			want: decoded{LabelNone, "command-output: 5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, decode(tt.in)); diff != "" {
				t.Errorf("Decode(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "db.a.find()", StripFences("```js\ndb.a.find()\n```"))
	assert.Equal(t, "db.a.find()", StripFences("```db.a.find()```"))
	assert.Equal(t, "plain", StripFences("  plain \n"))
}

func TestModelLabel(t *testing.T) {
	assert.True(t, ModelLabel(LabelRunCommand))
	assert.True(t, ModelLabel(LabelFinalAnswer))
	assert.False(t, ModelLabel(LabelCommandOutput))
	assert.False(t, ModelLabel(LabelUserQuery))
	assert.False(t, ModelLabel(LabelNone))
}
