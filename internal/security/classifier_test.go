package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDangerous(t *testing.T) {
	tests := []struct {
		command string
		want    bool
	}{
		{"db.users.DROP()", true},
		{"db.users.drop()", true},
		{"db.dropDatabase()", true},
		{"db.orders.deleteOne({ _id: 1 })", true},
		{"db.orders.deleteMany({})", true},
		{"db.logs.remove({})", true},
		{"db.adminCommand({ shutdown: 1 })", true},
		{"db.killOp(1234)", true},
		{"db.users.find({ status: 'Deleted' })", true},
		{"db.users.find({ removed_at: null })", true},
		{"db.users.find()", false},
		{"show dbs", false},
		{"use inventory", false},
		{"db.inventory.countDocuments({ price: { $lt: 50 } })", false},
		{"db.users.insertOne({ name: 'Alice' })", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDangerous(tt.command))
		})
	}
}

func TestIsDangerous_EveryKeywordAnyCase(t *testing.T) {
	for _, kw := range Keywords() {
		assert.True(t, IsDangerous(kw), kw)
		assert.True(t, IsDangerous("prefix "+strings.ToUpper(kw)+" suffix"), kw)
	}
}

func TestMatchedKeywords(t *testing.T) {
	assert.Equal(t, []string{"drop", "delete"}, MatchedKeywords("db.a.drop(); db.b.deleteMany({})"))
	assert.Nil(t, MatchedKeywords("db.a.find()"))
}

func TestKeywordsReturnsCopy(t *testing.T) {
	kws := Keywords()
	kws[0] = "mutated"
	assert.Equal(t, "drop", Keywords()[0])
}
