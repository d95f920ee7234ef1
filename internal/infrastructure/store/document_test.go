package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyDocument = `{
    "users": {
        "admin": {"password": "admin123", "role": "admin"},
        "user": {"password": "user123", "role": "user"}
    },
    "inventory": {
        "ITM-0002": {"name": "Nut", "qty": 5},
        "ITM-0001": {"name": "Bolt", "qty": 100},
        "ITM-0010": {"name": "Bolt", "qty": 7}
    },
    "item_counter": 10,
    "pending_requests": [
        {"user": "user", "item": "Bolt", "qty": 3, "type": "OUT", "timestamp": "2024-01-02 10:00:00", "event": "ProjA"}
    ],
    "history": [
        {"action": "ADD_ITEM", "item": "Bolt", "qty": 100, "stock": 100, "user": "admin", "event": "-", "timestamp": "2024-01-01 09:00:00"}
    ]
}`

// ============================================
// Bootstrap Tests
// ============================================

func TestBootstrap(t *testing.T) {
	doc := Bootstrap()

	assert.Equal(t, User{Password: "admin123", Role: RoleAdmin}, doc.Users["admin"])
	assert.Equal(t, User{Password: "user123", Role: RoleUser}, doc.Users["user"])
	assert.Len(t, doc.Users, 2)
	assert.Empty(t, doc.Inventory)
	assert.Empty(t, doc.PendingRequests)
	assert.Empty(t, doc.History)
	assert.Equal(t, 0, doc.ItemCounter)
}

func TestEncode_BootstrapUsesEmptyCollections(t *testing.T) {
	data, err := Encode(Bootstrap())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.JSONEq(t, `{}`, string(raw["inventory"]))
	assert.JSONEq(t, `[]`, string(raw["pending_requests"]))
	assert.JSONEq(t, `[]`, string(raw["history"]))
	assert.JSONEq(t, `0`, string(raw["item_counter"]))
}

// ============================================
// Inventory Ordering Tests
// ============================================

func TestInventory_DecodeKeepsFileOrder(t *testing.T) {
	doc, err := Decode([]byte(legacyDocument))
	require.NoError(t, err)

	require.Len(t, doc.Inventory, 3)
	assert.Equal(t, "ITM-0002", doc.Inventory[0].Code)
	assert.Equal(t, "ITM-0001", doc.Inventory[1].Code)
	assert.Equal(t, "ITM-0010", doc.Inventory[2].Code)
	assert.Equal(t, Item{Code: "ITM-0001", Name: "Bolt", Qty: 100}, doc.Inventory[1])
}

func TestInventory_EncodeKeepsSliceOrder(t *testing.T) {
	inv := Inventory{
		{Code: "ITM-0003", Name: "C", Qty: 3},
		{Code: "ITM-0001", Name: "A", Qty: 1},
	}

	data, err := json.Marshal(inv)

	require.NoError(t, err)
	assert.Equal(t, `{"ITM-0003":{"name":"C","qty":3},"ITM-0001":{"name":"A","qty":1}}`, string(data))
}

func TestInventory_UnmarshalNull(t *testing.T) {
	var inv Inventory
	require.NoError(t, inv.UnmarshalJSON([]byte("null")))
	assert.NotNil(t, inv)
	assert.Empty(t, inv)
}

func TestInventory_UnmarshalRejectsArray(t *testing.T) {
	var inv Inventory
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &inv))
}

func TestInventory_FindByName_FirstMatchWins(t *testing.T) {
	doc, err := Decode([]byte(legacyDocument))
	require.NoError(t, err)

	idx := doc.Inventory.FindByName("Bolt")

	require.Equal(t, 1, idx)
	assert.Equal(t, "ITM-0001", doc.Inventory[idx].Code)
	assert.Equal(t, -1, doc.Inventory.FindByName("Washer"))
	assert.Equal(t, 2, doc.Inventory.FindByCode("ITM-0010"))
	assert.Equal(t, -1, doc.Inventory.FindByCode("ITM-9999"))
}

// ============================================
// Codec Tests
// ============================================

func TestDecode_AssignsMissingRequestIDs(t *testing.T) {
	doc, err := Decode([]byte(legacyDocument))
	require.NoError(t, err)

	require.Len(t, doc.PendingRequests, 1)
	assert.NotEmpty(t, doc.PendingRequests[0].ID)
	assert.Equal(t, "ProjA", doc.PendingRequests[0].Event)
	assert.Equal(t, RequestOut, doc.PendingRequests[0].Type)
}

func TestDecode_MissingRequestIDsStableAcrossLoads(t *testing.T) {
	first, err := Decode([]byte(legacyDocument))
	require.NoError(t, err)
	second, err := Decode([]byte(legacyDocument))
	require.NoError(t, err)

	assert.Equal(t, first.PendingRequests[0].ID, second.PendingRequests[0].ID)
}

func TestDecode_IdenticalLegacyRequestsGetDistinctIDs(t *testing.T) {
	data := `{"pending_requests": [
		{"user": "user", "item": "Bolt", "qty": 3, "type": "OUT", "timestamp": "2024-01-02 10:00:00", "event": "ProjA"},
		{"user": "user", "item": "Bolt", "qty": 3, "type": "OUT", "timestamp": "2024-01-02 10:00:00", "event": "ProjA"}
	]}`

	doc, err := Decode([]byte(data))
	require.NoError(t, err)

	require.Len(t, doc.PendingRequests, 2)
	assert.NotEqual(t, doc.PendingRequests[0].ID, doc.PendingRequests[1].ID)
}

func TestDecode_DuplicateRequestIDsReassigned(t *testing.T) {
	data := `{"pending_requests": [
		{"id": "x", "user": "user", "item": "Bolt", "qty": 30, "type": "OUT", "timestamp": "2024-01-02 10:00:00", "event": "ProjA"},
		{"id": "x", "user": "user", "item": "Bolt", "qty": 5, "type": "OUT", "timestamp": "2024-01-02 10:05:00", "event": "ProjA"},
		{"id": "y", "user": "user", "item": "Nut", "qty": 1, "type": "IN", "timestamp": "2024-01-02 10:06:00", "event": "-"}
	]}`

	doc, err := Decode([]byte(data))
	require.NoError(t, err)

	require.Len(t, doc.PendingRequests, 3)
	assert.Equal(t, "x", doc.PendingRequests[0].ID)
	assert.NotEqual(t, "x", doc.PendingRequests[1].ID)
	assert.NotEmpty(t, doc.PendingRequests[1].ID)
	assert.Equal(t, "y", doc.PendingRequests[2].ID)

	again, err := Decode([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, doc.PendingRequests[1].ID, again.PendingRequests[1].ID)
}

func TestDecode_FillsMissingCollections(t *testing.T) {
	doc, err := Decode([]byte(`{"item_counter": 4}`))
	require.NoError(t, err)

	assert.NotNil(t, doc.Users)
	assert.NotNil(t, doc.Inventory)
	assert.NotNil(t, doc.PendingRequests)
	assert.NotNil(t, doc.History)
	assert.Equal(t, 4, doc.ItemCounter)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte("   "))
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = Decode([]byte("{not json"))
	assert.Error(t, err)
}

func TestEncode_RoundTripIsStable(t *testing.T) {
	doc, err := Decode([]byte(legacyDocument))
	require.NoError(t, err)

	first, err := Encode(doc)
	require.NoError(t, err)

	reloaded, err := Decode(first)
	require.NoError(t, err)
	second, err := Encode(reloaded)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, doc, reloaded)
}

func TestEncode_UsesFourSpaceIndent(t *testing.T) {
	data, err := Encode(Bootstrap())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"users\": {")
}

func TestEncode_NilDocument(t *testing.T) {
	_, err := Encode(nil)
	assert.Error(t, err)
}

// ============================================
// Clone Tests
// ============================================

func TestDocument_CloneIsDeep(t *testing.T) {
	doc, err := Decode([]byte(legacyDocument))
	require.NoError(t, err)

	clone := doc.Clone()
	clone.Inventory[0].Qty = 999
	clone.PendingRequests[0].Qty = 999
	clone.History = append(clone.History, HistoryEntry{Action: ActionApproveIn})
	clone.Users["eve"] = User{Password: "x", Role: RoleUser}

	assert.Equal(t, 5, doc.Inventory[0].Qty)
	assert.Equal(t, 3, doc.PendingRequests[0].Qty)
	assert.Len(t, doc.History, 1)
	assert.NotContains(t, doc.Users, "eve")
}

func TestRequestType_Valid(t *testing.T) {
	assert.True(t, RequestIn.Valid())
	assert.True(t, RequestOut.Valid())
	assert.False(t, RequestType("in").Valid())
	assert.False(t, RequestType("").Valid())
}
