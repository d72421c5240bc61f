package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLog_SetMetadata(t *testing.T) {
	log := &AuditLog{}
	log.SetMetadata("rows", 12)
	log.SetMetadata("source", "bank.csv")

	assert.Equal(t, JSONBMap{"rows": 12, "source": "bank.csv"}, log.Metadata)
}

func TestAuditLog_String(t *testing.T) {
	userID := uuid.New()
	log := &AuditLog{UserID: &userID, Action: AuditActionImport, Resource: "transactions", ResourceID: "batch-1"}

	str := log.String()
	assert.Contains(t, str, userID.String())
	assert.Contains(t, str, "transactions_imported")
	assert.Contains(t, str, "transactions/batch-1")

	assert.Contains(t, (&AuditLog{Action: AuditActionLogin}).String(), "anonymous")
}

func TestJSONBMap_ValueScan(t *testing.T) {
	empty, err := JSONBMap{}.Value()
	require.NoError(t, err)
	assert.Nil(t, empty)

	v, err := JSONBMap{"category": "Shopping"}.Value()
	require.NoError(t, err)

	var m JSONBMap
	require.NoError(t, m.Scan(v))
	assert.Equal(t, "Shopping", m["category"])

	require.NoError(t, m.Scan(nil))
	assert.Nil(t, m)

	assert.Error(t, m.Scan(42))
}

func TestStringList_Normalize(t *testing.T) {
	tags := StringList{"#Travel", "food", " FOOD ", "", "#"}

	assert.Equal(t, StringList{"food", "travel"}, tags.Normalize())
	assert.True(t, tags.Normalize().Contains("TRAVEL"))
}

func TestStringList_ValueScan(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var tags StringList
	require.NoError(t, tags.Scan([]byte(`["goa","trip"]`)))
	assert.Equal(t, StringList{"goa", "trip"}, tags)
}
