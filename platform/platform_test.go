package platform

import (
	"encoding/json"
	"testing"
)

func TestAccountIDJSONRoundTrip(t *testing.T) {
	want := NewAccountID(VRChat, "u1")
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got AccountID
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != want {
		t.Fatalf("round trip = %v, want %v", got, want)
	}
}

func TestAccountIDAsMapKeyRoundTrip(t *testing.T) {
	want := map[AccountID]int{
		NewAccountID(ChilloutVR, "u2"): 42,
	}
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got := map[AccountID]int{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got[NewAccountID(ChilloutVR, "u2")] != 42 {
		t.Fatalf("round trip via map key = %v, want %v", got, want)
	}
}

func TestAccountIDUnmarshalTextRejectsMalformed(t *testing.T) {
	var aid AccountID
	if err := aid.UnmarshalText([]byte("not-a-valid-id")); err == nil {
		t.Fatalf("expected an error for a string with no platform separator")
	}
}

func TestDataAndMetadataNewNowStampsUpdatedBy(t *testing.T) {
	as := NewAccountID(Resonite, "owner-1")
	dm := NewDataAndMetadataNow(Account{ID: as, Detail: ResoniteAccountDetail{Username: "owner"}}, as)
	if dm.Metadata.UpdatedBy != as {
		t.Fatalf("UpdatedBy = %v, want %v", dm.Metadata.UpdatedBy, as)
	}
	if dm.Metadata.UpdatedAt.IsZero() {
		t.Fatalf("UpdatedAt was not stamped")
	}
}

func TestEntityPlatformReadsFromID(t *testing.T) {
	f := Friend{ID: NewAccountID(VRChat, "u3"), Detail: VRChatFriendDetail{DisplayName: "Bob"}}
	if f.Platform() != VRChat {
		t.Fatalf("Platform() = %v, want %v", f.Platform(), VRChat)
	}
}
